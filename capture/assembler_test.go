package capture

import (
	"bytes"
	"testing"
)

func collect(c chan []byte) [][]byte {
	var out [][]byte
	for {
		select {
		case f := <-c:
			out = append(out, f)
		default:
			return out
		}
	}
}

func TestAssembleWholeEvent(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	frame := []byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}
	a.Assemble(frame)

	got := collect(c)
	if len(got) != 1 || !bytes.Equal(got[0], frame) {
		t.Fatalf("got %x", got)
	}
}

func TestAssembleSplitDelivery(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	frame := []byte{0x02, 0x40, 0x20, 0x03, 0x00, 0xaa, 0xbb, 0xcc}
	a.Assemble(frame[:2])
	if got := collect(c); len(got) != 0 {
		t.Fatalf("partial frame emitted: %x", got)
	}
	a.Assemble(frame[2:6])
	a.Assemble(frame[6:])

	got := collect(c)
	if len(got) != 1 || !bytes.Equal(got[0], frame) {
		t.Fatalf("got %x", got)
	}
}

func TestAssembleSkipsGarbage(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	frame := []byte{0x04, 0x0e, 0x00}
	a.Assemble(append([]byte{0xde, 0xad, 0xbe}, frame...))

	got := collect(c)
	if len(got) != 1 || !bytes.Equal(got[0], frame) {
		t.Fatalf("got %x", got)
	}
}

func TestAssembleBackToBackFrames(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	f1 := []byte{0x01, 0x03, 0x0c, 0x00}
	f2 := []byte{0x04, 0x0e, 0x01, 0x00}
	a.Assemble(append(append([]byte{}, f1...), f2...))

	got := collect(c)
	if len(got) != 2 {
		t.Fatalf("got %d frame(s): %x", len(got), got)
	}
	if !bytes.Equal(got[0], f1) || !bytes.Equal(got[1], f2) {
		t.Fatalf("got %x", got)
	}
}

func TestAssembleBasebandACL(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	// llid 3, one payload byte: LMP_setup_complete
	frame := []byte{0x08, 0x0b, 0x00, 0x31}
	a.Assemble(frame[:2])
	if got := collect(c); len(got) != 0 {
		t.Fatalf("partial frame emitted: %x", got)
	}
	a.Assemble(frame[2:])

	got := collect(c)
	if len(got) != 1 || !bytes.Equal(got[0], frame) {
		t.Fatalf("got %x", got)
	}
}

func TestAssembleESP32Chained(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	// DM1 chaining into a baseband ACL header with one LMP byte
	frame := []byte{0x09, 0x44, 0x33, 0x22, 0x11, 0x26, 0x02, 0x99, 0x00, 0x0b, 0x00, 0x31}
	a.Assemble(frame[:9])
	if got := collect(c); len(got) != 0 {
		t.Fatalf("partial frame emitted: %x", got)
	}
	a.Assemble(frame[9:])

	got := collect(c)
	if len(got) != 1 || !bytes.Equal(got[0], frame) {
		t.Fatalf("got %x", got)
	}
}

func TestAssembleESP32HeaderOnly(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	// NULL baseband packets carry nothing past the 9-byte header
	frame := []byte{0x09, 0x00, 0x00, 0x00, 0x00, 0x26, 0x02, 0x00, 0x00}
	a.Assemble(append(frame, 0x04, 0x0e, 0x00))

	got := collect(c)
	if len(got) != 2 {
		t.Fatalf("got %d frame(s): %x", len(got), got)
	}
	if !bytes.Equal(got[0], frame) {
		t.Fatalf("got %x", got[0])
	}
}

func TestAssembleNoStartByte(t *testing.T) {
	c := make(chan []byte, 4)
	a := NewAssembler(c)

	a.Assemble([]byte{0xde, 0xad})
	a.Assemble(nil)
	if got := collect(c); len(got) != 0 {
		t.Fatalf("frames from garbage: %x", got)
	}
}
