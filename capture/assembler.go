// Package capture turns a raw H4 byte stream from the sniffer bridge
// into whole frames for the dissector. The decoders themselves never
// touch I/O; this package is the glue between a serial port and them.
package capture

import (
	"time"

	"github.com/pkg/errors"

	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/h4"
)

const assembleTimeout = 500 * time.Millisecond

// Assembler accumulates stream chunks until a complete H4 frame is
// buffered, then hands a copy to the out channel. Bytes before a
// recognized packet type byte are discarded. A stalled partial frame
// is dropped after a timeout so a glitched stream can resynchronize.
type Assembler struct {
	b       []byte
	timeout time.Time
	out     chan<- []byte
	typ     byte
}

func NewAssembler(out chan<- []byte) *Assembler {
	return &Assembler{
		b:   make([]byte, 0, 256),
		out: out,
	}
}

func (a *Assembler) Assemble(b []byte) {
	switch {
	case len(b) == 0:
		return

	case !a.timeout.IsZero() && time.Now().After(a.timeout):
		// timed out mid-frame
		fallthrough
	case a.b == nil:
		a.reset()

	default:
		// ok
	}

	if len(a.b) == 0 {
		if err := a.waitStart(b); err != nil {
			return
		}
	} else {
		a.b = append(a.b, b...)
	}

	rf, err := a.frame()
	if err != nil {
		return
	}
	out := make([]byte, len(rf))
	copy(out, rf)
	a.out <- out

	// shift any bytes past the finished frame into the next one
	if len(a.b) > len(rf) {
		rem := make([]byte, len(a.b)-len(rf))
		copy(rem, a.b[len(rf):])
		a.reset()
		a.Assemble(rem)
	} else {
		a.reset()
	}
}

func (a *Assembler) reset() {
	a.b = make([]byte, 0, 256)
	a.timeout = time.Time{}
}

func (a *Assembler) waitStart(b []byte) error {
	var i int
	var v byte
	var ok bool
	for i, v = range b {
		switch v {
		case h4.PacketTypeCommand, h4.PacketTypeACLData, h4.PacketTypeEvent,
			h4.PacketTypeBasebandACL, h4.PacketTypeESP32BREDR:
			a.typ = v
		default:
			continue
		}

		ok = true
		a.timeout = time.Now().Add(assembleTimeout)
		break
	}

	if !ok {
		return errors.New("no start byte")
	}

	a.b = append(a.b, b[i:]...)
	return nil
}

// frameLength derives the total frame size from the type-specific
// header once enough of it is buffered.
func (a *Assembler) frameLength() (int, error) {
	switch a.typ {
	case h4.PacketTypeCommand:
		// type, opcode (2), len
		if len(a.b) < 4 {
			return 0, errors.New("not enough bytes")
		}
		return 4 + int(a.b[3]), nil
	case h4.PacketTypeEvent:
		// type, code, len
		if len(a.b) < 3 {
			return 0, errors.New("not enough bytes")
		}
		return 3 + int(a.b[2]), nil
	case h4.PacketTypeACLData:
		// type, handle (2), len (2, LE)
		if len(a.b) < 5 {
			return 0, errors.New("not enough bytes")
		}
		return 5 + (int(a.b[3]) | int(a.b[4])<<8), nil
	case h4.PacketTypeBasebandACL:
		// type, header (2); payload length is the top 5 bits of the
		// first header byte
		if len(a.b) < 2 {
			return 0, errors.New("not enough bytes")
		}
		return 3 + int(a.b[1]>>3), nil
	case h4.PacketTypeESP32BREDR:
		// type, clk (4), channel, flags, baseband header (2); DM1/DH1/DV
		// packets chain into a baseband ACL header carrying the length
		if len(a.b) < 8 {
			return 0, errors.New("not enough bytes")
		}
		switch a.b[7] >> 3 & 0x0f {
		case 0x03, 0x04, 0x08:
			if len(a.b) < 10 {
				return 0, errors.New("not enough bytes")
			}
			return 11 + int(a.b[9]>>3), nil
		default:
			return 9, nil
		}
	default:
		return 0, errors.Errorf("invalid frame type 0x%02x", a.typ)
	}
}

func (a *Assembler) frame() ([]byte, error) {
	tl, err := a.frameLength()
	if err != nil {
		return nil, err
	}
	if len(a.b) < tl {
		return nil, errors.New("not enough bytes")
	}
	return a.b[:tl], nil
}
