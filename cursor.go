package gmdata

import (
	"encoding/binary"
	"math"

	"github.com/scigolib/gmdata/internal/utils"
)

// Cursor is a bounds-checked little-endian reader over a fixed byte slice
// with an absolute position. A single cursor is reused throughout parsing;
// pointer-list offsets are passed directly to Seek.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current absolute position.
func (c *Cursor) Pos() int64 {
	return int64(c.pos)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// EOF reports whether the cursor is at the end of the buffer.
func (c *Cursor) EOF() bool {
	return c.pos >= len(c.data)
}

// Len returns the total buffer length.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Seek sets the absolute position. Positions in [0, len] are valid;
// anything else fails without moving the cursor.
func (c *Cursor) Seek(abs int64) error {
	if abs < 0 || abs > int64(len(c.data)) {
		return utils.NewError(utils.ErrOutOfBounds, abs, "seek")
	}
	c.pos = int(abs)
	return nil
}

// WithSavedPos runs f and restores the cursor position afterwards,
// regardless of whether f succeeds.
func (c *Cursor) WithSavedPos(f func() error) error {
	saved := c.pos
	defer func() { c.pos = saved }()
	return f()
}

func (c *Cursor) need(n int, context string) error {
	if c.Remaining() < n {
		return utils.NewError(utils.ErrTruncated, int64(c.pos), context)
	}
	return nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1, "u8 read"); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2, "u16 read"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4, "u32 read"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	if err := c.need(8, "u64 read"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadI16 reads a little-endian two's-complement int16.
func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian two's-complement int32.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadF32 reads a little-endian IEEE 754 float32.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian IEEE 754 float64.
func (c *Cursor) ReadF64() (float64, error) {
	v, err := c.ReadU64()
	return math.Float64frombits(v), err
}

// ReadBytes returns a view of exactly n bytes. The slice aliases the
// underlying buffer; callers must copy if the view outlives the file.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, utils.NewError(utils.ErrTruncated, int64(c.pos), "negative byte count")
	}
	if err := c.need(n, "bytes read"); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}
