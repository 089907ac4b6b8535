package msbtfont

import (
	"fmt"
	"testing"
)

func benchImages(b *testing.B, n int) [][]byte {
	b.Helper()
	images := make([][]byte, n)
	for i := range images {
		images[i] = testImage(b, fmt.Sprintf("Font %d", i))
	}
	return images
}

// BenchmarkFontCache compares decoding with and without the cache
func BenchmarkFontCache(b *testing.B) {
	img := testImage(b, "bench")

	b.Run("ParseWithoutCache", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := ParseFontBytes(img); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ParseWithCache", func(b *testing.B) {
		cache := NewFontCache(10)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := cache.ParseFont(img); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkCacheHitRate benchmarks cache performance with different hit rates
func BenchmarkCacheHitRate(b *testing.B) {
	cache := NewFontCache(5)
	images := benchImages(b, 10)

	b.Run("HighHitRate", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < 3; i++ {
			cache.ParseFont(images[i])
		}
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			idx := i % 10
			if idx >= 7 {
				idx = idx % 3
			}
			cache.ParseFont(images[idx])
		}
		b.ReportMetric(cache.Stats().HitRate(), "hit_rate_%")
	})

	b.Run("LowHitRate", func(b *testing.B) {
		cache.Clear()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			cache.ParseFont(images[i%10])
		}
		b.ReportMetric(cache.Stats().HitRate(), "hit_rate_%")
	})
}

// BenchmarkCacheConcurrent benchmarks concurrent cache access
func BenchmarkCacheConcurrent(b *testing.B) {
	cache := NewFontCache(20)
	images := benchImages(b, 5)

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			cache.ParseFont(images[i%5])
			i++
		}
	})

	stats := cache.Stats()
	b.ReportMetric(stats.HitRate(), "hit_rate_%")
	b.ReportMetric(float64(stats.Evictions), "evictions")
}

// BenchmarkLRUEviction benchmarks the LRU eviction performance
func BenchmarkLRUEviction(b *testing.B) {
	cache := NewFontCache(3)
	images := benchImages(b, 10)
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cache.ParseFont(images[i%10])
	}
	b.ReportMetric(float64(cache.Stats().Evictions), "evictions")
}
