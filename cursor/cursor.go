package cursor

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrTruncated is returned when a read needs more bytes than remain in
// the buffer. Use errors.Cause to test for it under wrapping.
var ErrTruncated = errors.New("truncated input")

// Cursor is a bounds-checked read cursor over an immutable byte buffer.
// Every read either consumes exactly the bytes it returns or fails with
// ErrTruncated and leaves the offset untouched. Returned slices are
// views into the original buffer, never copies.
type Cursor struct {
	buf []byte
	off int
}

func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining is the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrTruncated, "negative read size %d", n)
	}
	if c.Remaining() < n {
		return nil, errors.Wrapf(ErrTruncated, "need %d byte(s) at offset %d, have %d", n, c.off, c.Remaining())
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) U8() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16LE() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) U16BE() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) U32LE() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) U32BE() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Bytes consumes and returns the next n bytes as a view into the
// underlying buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.take(n)
}

// Rest consumes and returns everything left.
func (c *Cursor) Rest() []byte {
	b := c.buf[c.off:]
	c.off = len(c.buf)
	return b
}

// Peek returns the next n bytes without consuming them.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, errors.Wrapf(ErrTruncated, "peek %d byte(s) at offset %d, have %d", n, c.off, c.Remaining())
	}
	return c.buf[c.off : c.off+n], nil
}

func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}
