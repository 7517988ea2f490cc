package cursor

import "github.com/pkg/errors"

// BitWindow addresses a bit position within a byte buffer. Bit counts
// from the most significant bit of the byte at Byte, so Bit 0 is the
// MSB. Invariant: Bit in [0,8); overflow carries into Byte.
type BitWindow struct {
	Byte int
	Bit  int
}

// Plus returns the window advanced by width bits.
func (w BitWindow) Plus(width int) BitWindow {
	t := w.Byte*8 + w.Bit + width
	return BitWindow{Byte: t / 8, Bit: t % 8}
}

// Aligned reports whether the window sits on a byte boundary.
func (w BitWindow) Aligned() bool {
	return w.Bit == 0
}

// ByteSpan returns the byte offset and byte count covered by a field of
// width bits starting at w.
func (w BitWindow) ByteSpan(width int) (off, n int) {
	end := w.Plus(width)
	n = end.Byte - w.Byte
	if end.Bit != 0 {
		n++
	}
	return w.Byte, n
}

// ReadBits extracts width bits from buf starting at w, most significant
// bit first within each byte, packing across byte boundaries. It
// returns the value and the advanced window. Pure: the same buffer and
// window always yield the same result.
func ReadBits(buf []byte, w BitWindow, width int) (uint32, BitWindow, error) {
	if width < 1 || width > 32 {
		return 0, w, errors.Errorf("bit width %d out of range [1,32]", width)
	}
	if w.Bit < 0 || w.Bit > 7 || w.Byte < 0 {
		return 0, w, errors.Errorf("invalid bit window %+v", w)
	}
	end := w.Plus(width)
	need := end.Byte
	if end.Bit != 0 {
		need++
	}
	if need > len(buf) {
		return 0, w, errors.Wrapf(ErrTruncated, "need %d bit(s) at bit %d of byte %d", width, w.Bit, w.Byte)
	}

	var v uint32
	for i := 0; i < width; i++ {
		p := w.Plus(i)
		bit := (buf[p.Byte] >> (7 - p.Bit)) & 1
		v = v<<1 | uint32(bit)
	}
	return v, end, nil
}
