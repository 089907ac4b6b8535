// Package bitfield moves fixed-width unsigned fields (1 to 8 bits) in and out
// of densely packed byte buffers.
//
// Fields are stored top-aligned: bit 0 of a cursor is the most significant bit
// of its byte, and a field that does not fit in the remainder of a byte
// continues at the top of the next byte. No padding is ever inserted between
// fields.
//
// The package never checks buffer bounds on its own. Callers size buffers with
// ByteLen and validate indices before handing buffers over.
package bitfield

// MaxWidth is the widest field the codec handles.
const MaxWidth = 8

// Cursor addresses a bit inside a byte buffer.
type Cursor struct {
	Byte int  // index of the byte holding the first bit of the field
	Bit  uint // offset inside that byte, 0 is the most significant bit
}

// At returns the cursor for an absolute bit position.
func At(bit int) Cursor {
	return Cursor{Byte: bit / 8, Bit: uint(bit % 8)}
}

// Pos returns the absolute bit position of c.
func (c Cursor) Pos() int {
	return c.Byte*8 + int(c.Bit)
}

// Advance moves the cursor forward by w bits, carrying into the next byte
// when the bit offset leaves the current one.
func (c *Cursor) Advance(w uint) {
	c.Bit += w
	if c.Bit > 7 {
		c.Byte++
		c.Bit -= 8
	}
}

// ValidWidth reports whether w is a field width the codec supports.
func ValidWidth(w uint) bool {
	return w >= 1 && w <= MaxWidth
}

// ByteLen returns the number of bytes needed to hold bits bits.
func ByteLen(bits int) int {
	return (bits + 7) / 8
}

// topMask returns the mask selecting the w most significant bits of a byte.
func topMask(w uint) byte {
	return byte(0xFF) << (8 - w)
}

// Read extracts the w-bit field at c and returns it right-aligned, so the
// result is always in [0, 2^w).
func Read(buf []byte, c Cursor, w uint) uint8 {
	mask := topMask(w)
	v := (buf[c.Byte] & (mask >> c.Bit)) << c.Bit
	if c.Bit+w > 8 {
		// low part lives at the top of the next byte
		v |= buf[c.Byte+1] >> (8 - c.Bit)
	}
	return v >> (8 - w)
}

// Write stores the low w bits of v at c. Bits outside the field keep their
// previous value, including those of a neighbouring field that shares the
// second byte of a split field.
func Write(buf []byte, c Cursor, w uint, v uint8) {
	mask := topMask(w)
	top := v << (8 - w)
	buf[c.Byte] = buf[c.Byte]&^(mask>>c.Bit) | top>>c.Bit
	if c.Bit+w > 8 {
		shift := 8 - c.Bit
		buf[c.Byte+1] = buf[c.Byte+1]&^(mask<<shift) | top<<shift
	}
}

// Copy moves count fields of width w from src starting at sc to dst starting
// at dc and returns both cursors positioned after the last field.
//
// Byte-aligned 8-bit fields are copied with the builtin copy.
func Copy(dst []byte, dc Cursor, src []byte, sc Cursor, w uint, count int) (Cursor, Cursor) {
	if count <= 0 {
		return dc, sc
	}
	if w == 8 && dc.Bit == 0 && sc.Bit == 0 {
		copy(dst[dc.Byte:dc.Byte+count], src[sc.Byte:sc.Byte+count])
		dc.Byte += count
		sc.Byte += count
		return dc, sc
	}
	for i := 0; i < count; i++ {
		Write(dst, dc, w, Read(src, sc, w))
		dc.Advance(w)
		sc.Advance(w)
	}
	return dc, sc
}

// Reader yields consecutive w-bit fields from a buffer.
type Reader struct {
	buf []byte
	c   Cursor
	w   uint
}

// NewReader returns a Reader positioned at c.
func NewReader(buf []byte, c Cursor, w uint) *Reader {
	return &Reader{buf: buf, c: c, w: w}
}

// Reset repositions the reader, reusing its allocation.
func (r *Reader) Reset(buf []byte, c Cursor, w uint) {
	r.buf = buf
	r.c = c
	r.w = w
}

// Cursor returns the position of the next field.
func (r *Reader) Cursor() Cursor {
	return r.c
}

// Next returns the field under the cursor and advances past it.
func (r *Reader) Next() uint8 {
	if r.w == 8 && r.c.Bit == 0 {
		v := r.buf[r.c.Byte]
		r.c.Byte++
		return v
	}
	v := Read(r.buf, r.c, r.w)
	r.c.Advance(r.w)
	return v
}

// ReadInto fills dst with consecutive fields.
func (r *Reader) ReadInto(dst []uint8) {
	if r.w == 8 && r.c.Bit == 0 {
		n := copy(dst, r.buf[r.c.Byte:r.c.Byte+len(dst)])
		r.c.Byte += n
		return
	}
	for i := range dst {
		dst[i] = r.Next()
	}
}

// Writer stores consecutive w-bit fields into a buffer.
type Writer struct {
	buf []byte
	c   Cursor
	w   uint
}

// NewWriter returns a Writer positioned at c.
func NewWriter(buf []byte, c Cursor, w uint) *Writer {
	return &Writer{buf: buf, c: c, w: w}
}

// Cursor returns the position of the next field.
func (wr *Writer) Cursor() Cursor {
	return wr.c
}

// Put stores the low w bits of v and advances past the field.
func (wr *Writer) Put(v uint8) {
	if wr.w == 8 && wr.c.Bit == 0 {
		wr.buf[wr.c.Byte] = v
		wr.c.Byte++
		return
	}
	Write(wr.buf, wr.c, wr.w, v)
	wr.c.Advance(wr.w)
}
