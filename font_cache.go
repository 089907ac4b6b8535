package msbtfont

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
)

// FontCache keeps decoded font images for long-running applications that
// load the same fonts repeatedly. Entries are keyed by the SHA-256 of the
// image bytes and evicted least recently used first.
//
// Fonts returned from the cache are shared between callers. Treat them as
// read only: CopyToSurface is fine, StoreGlyph and SetAdvance are not.
//
// Cache Implementation Details:
//   - A hash map gives O(1) lookups; a doubly-linked list tracks recency
//   - RWMutex lets lookups proceed in parallel while inserts are exclusive
//   - Statistics are atomic counters read without the lock
type FontCache struct {
	mu        sync.RWMutex
	fonts     map[string]*cacheEntry
	lru       *lruList
	maxSize   int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key     string
	font    *Font
	size    int64 // approximate memory size in bytes
	lruNode *lruNode
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

type lruList struct {
	head *lruNode
	tail *lruNode
	size int
}

// Package-level cache used by ParseFontCached and LoadFontFSCached
var defaultCache = NewFontCache(32)

// NewFontCache creates a new font cache with the specified maximum number of fonts.
// A maxSize of 0 or negative means unlimited cache size.
func NewFontCache(maxSize int) *FontCache {
	return &FontCache{
		fonts:   make(map[string]*cacheEntry),
		lru:     &lruList{},
		maxSize: maxSize,
	}
}

// LoadFontFSCached loads a font image from a filesystem through the default
// cache. This is safe for concurrent use.
func LoadFontFSCached(fsys fs.FS, fontPath string) (*Font, error) {
	return defaultCache.LoadFontFS(fsys, fontPath)
}

// LoadFontFS reads a font image from fsys and decodes it through the cache.
// The file is always read; only decoding is skipped on a hit, so two paths
// holding the same bytes share one entry.
func (c *FontCache) LoadFontFS(fsys fs.FS, fontPath string) (*Font, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}
	clean, err := cleanFSPath(fontPath)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to open font file: %w", err)
	}
	font, err := c.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", clean, err)
	}
	return font, nil
}

// ParseFontCached decodes a font image through the default cache.
// This function is safe for concurrent use.
func ParseFontCached(data []byte) (*Font, error) {
	return defaultCache.ParseFont(data)
}

// ParseFont decodes a font image, returning the cached font when the same
// bytes were decoded before. Images that fail to decode are not cached.
// This method is safe for concurrent use.
func (c *FontCache) ParseFont(data []byte) (*Font, error) {
	key := contentKey(data)

	if font := c.get(key); font != nil {
		return font, nil
	}

	font, err := ParseFontBytes(data)
	if err != nil {
		return nil, err
	}

	c.put(key, font)
	return font, nil
}

func contentKey(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// get looks key up under the read lock and takes the write lock only to
// move a hit to the front of the LRU list. A miss is counted here.
func (c *FontCache) get(key string) *Font {
	c.mu.RLock()
	entry, exists := c.fonts[key]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		return nil
	}

	c.mu.Lock()
	// The entry may have been evicted between the two locks.
	if current, ok := c.fonts[key]; ok && current == entry {
		c.lru.moveToFront(entry.lruNode)
	}
	c.mu.Unlock()

	c.hits.Add(1)
	return entry.font
}

// put inserts font under key, evicting the least recently used entry when
// the cache is full. An existing entry for key is kept.
func (c *FontCache) put(key string, font *Font) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.fonts[key]; exists {
		return
	}

	if c.maxSize > 0 && len(c.fonts) >= c.maxSize {
		c.evictLRU()
	}

	node := c.lru.pushFront(key)
	c.fonts[key] = &cacheEntry{
		key:     key,
		font:    font,
		size:    estimateFontSize(font),
		lruNode: node,
	}
}

// evictLRU removes the least recently used font from the cache
func (c *FontCache) evictLRU() {
	if c.lru.tail == nil {
		return
	}

	key := c.lru.tail.key
	delete(c.fonts, key)
	c.lru.remove(c.lru.tail)
	c.evictions.Add(1)
}

// Clear removes all fonts from the cache.
// This method is safe for concurrent use.
func (c *FontCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fonts = make(map[string]*cacheEntry)
	c.lru = &lruList{}
}

// Stats returns cache statistics.
// This method is safe for concurrent use.
func (c *FontCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.fonts)
	var bytes int64
	for _, e := range c.fonts {
		bytes += e.size
	}
	c.mu.RUnlock()

	return CacheStats{
		Size:      size,
		Bytes:     bytes,
		MaxSize:   c.maxSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// CacheStats contains cache performance statistics
type CacheStats struct {
	Size      int    // Current number of cached fonts
	Bytes     int64  // Approximate memory held by cached fonts
	MaxSize   int    // Maximum cache size, 0 for unlimited
	Hits      uint64 // Number of cache hits
	Misses    uint64 // Number of cache misses
	Evictions uint64 // Number of evictions
}

// HitRate returns the cache hit rate as a percentage (0-100)
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) * 100 / float64(total)
}

// estimateFontSize approximates the memory a cached font holds: the header
// record, the file data allocation and the struct overhead. Slice headers
// and allocator rounding are ignored.
func estimateFontSize(f *Font) int64 {
	if f == nil {
		return 0
	}
	size := int64(64) // Font, FileData and cacheEntry structs
	if f.Header != nil {
		size += HeaderSize
	}
	if f.Data != nil {
		size += int64(cap(f.Data.Data))
	}
	return size
}

// LRU list operations
func (l *lruList) pushFront(key string) *lruNode {
	node := &lruNode{key: key}

	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}

	l.size++
	return node
}

func (l *lruList) moveToFront(node *lruNode) {
	if node == l.head {
		return
	}

	// Remove from current position
	if node.prev != nil {
		node.prev.next = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	if node == l.tail {
		l.tail = node.prev
	}

	// Move to front
	node.prev = nil
	node.next = l.head
	l.head.prev = node
	l.head = node
}

func (l *lruList) remove(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	l.size--
}

// SetDefaultCacheSize sets the maximum size of the default cache.
// This should be called once at application startup.
func SetDefaultCacheSize(maxSize int) {
	defaultCache = NewFontCache(maxSize)
}

// ClearDefaultCache clears the default font cache.
func ClearDefaultCache() {
	defaultCache.Clear()
}

// DefaultCacheStats returns statistics for the default cache.
func DefaultCacheStats() CacheStats {
	return defaultCache.Stats()
}
