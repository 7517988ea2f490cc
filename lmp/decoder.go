package lmp

import (
	"encoding/binary"
	"strings"

	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/cursor"
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/dissect"
)

// Decode dissects one LMP PDU payload. It always returns a usable
// Result: truncated or unknown input degrades to partial fields plus
// warnings, never an error or a panic. The payload is only borrowed;
// byte fields in the result are views into it.
func Decode(payload []byte) *dissect.Result {
	r := &dissect.Result{}

	if len(payload) == 0 {
		r.Warnf(dissect.SeverityMalformed, 0, "empty LMP payload")
		return r
	}

	op := payload[0] & 0x7f
	tid := uint64(payload[0] >> 7)

	r.AddField(dissect.Field{
		Name:       "opcode",
		Kind:       dissect.KindEnum,
		Value:      uint64(op),
		Label:      OpcodeName(op),
		ByteOffset: 0,
		ByteLen:    1,
		BitOffset:  1,
		BitLen:     7,
	})
	r.AddField(dissect.Field{
		Name:       "tid",
		Kind:       dissect.KindUint,
		Value:      tid,
		ByteOffset: 0,
		ByteLen:    1,
		BitOffset:  0,
		BitLen:     1,
	})

	body := 1
	var entry Entry
	var ok bool
	var name string

	if op == EscapeOpcode {
		if len(payload) < 2 {
			r.Warnf(dissect.SeverityMalformed, 1, "extended opcode escape with no opcode byte")
			return r
		}
		ext := payload[1]
		r.AddField(dissect.Field{
			Name:       "ext_opcode",
			Kind:       dissect.KindEnum,
			Value:      uint64(ext),
			Label:      ExtOpcodeName(ext),
			ByteOffset: 1,
			ByteLen:    1,
			BitLen:     8,
		})
		body = 2
		entry, ok = LookupExt(ext)
		name = ExtOpcodeName(ext)
	} else {
		entry, ok = Lookup(op)
		name = OpcodeName(op)
	}

	if !ok {
		if rest := payload[body:]; len(rest) > 0 {
			r.AddField(dissect.Field{
				Name:       "data",
				Kind:       dissect.KindBytes,
				Bytes:      rest,
				ByteOffset: body,
				ByteLen:    len(rest),
				BitLen:     len(rest) * 8,
			})
		}
		r.Warnf(dissect.SeverityInfo, body-1, "no field layout for opcode %s", name)
		return r
	}

	w := cursor.BitWindow{Byte: body}
	vals := make(Decoded, len(entry.Layout))

	for _, desc := range entry.Layout {
		if desc.When != nil && !desc.When(vals) {
			continue
		}

		var f dissect.Field
		f.Name = desc.Name
		f.Kind = desc.Kind

		switch {
		case desc.LenFrom != "":
			n := int(vals[desc.LenFrom])
			if !w.Aligned() || w.Byte+n > len(payload) {
				r.Warnf(dissect.SeverityMalformed, w.Byte, "%s truncated in field %q", entry.Name, desc.Name)
				return r
			}
			f.Bytes = payload[w.Byte : w.Byte+n]
			f.ByteOffset, f.ByteLen = w.Byte, n
			f.BitLen = n * 8
			w = w.Plus(n * 8)

		case desc.Kind == dissect.KindBytes:
			n := desc.Bits / 8
			if !w.Aligned() || w.Byte+n > len(payload) {
				r.Warnf(dissect.SeverityMalformed, w.Byte, "%s truncated in field %q", entry.Name, desc.Name)
				return r
			}
			f.Bytes = payload[w.Byte : w.Byte+n]
			f.ByteOffset, f.ByteLen = w.Byte, n
			f.BitLen = n * 8
			w = w.Plus(n * 8)

		case desc.Bits == 64:
			if !w.Aligned() || w.Byte+8 > len(payload) {
				r.Warnf(dissect.SeverityMalformed, w.Byte, "%s truncated in field %q", entry.Name, desc.Name)
				return r
			}
			f.Value = binary.BigEndian.Uint64(payload[w.Byte:])
			f.ByteOffset, f.ByteLen = w.Byte, 8
			f.BitLen = 64
			if desc.FlagNames != nil {
				f.Label = flagLabel(f.Value, desc.FlagNames)
			}
			w = w.Plus(64)

		case desc.Bits == 16 && w.Aligned():
			// LMP multi-byte parameters are little-endian.
			if w.Byte+2 > len(payload) {
				r.Warnf(dissect.SeverityMalformed, w.Byte, "%s truncated in field %q", entry.Name, desc.Name)
				return r
			}
			f.Value = uint64(binary.LittleEndian.Uint16(payload[w.Byte:]))
			f.ByteOffset, f.ByteLen = w.Byte, 2
			f.BitLen = 16
			w = w.Plus(16)

		case desc.Bits == 32 && w.Aligned():
			if w.Byte+4 > len(payload) {
				r.Warnf(dissect.SeverityMalformed, w.Byte, "%s truncated in field %q", entry.Name, desc.Name)
				return r
			}
			f.Value = uint64(binary.LittleEndian.Uint32(payload[w.Byte:]))
			f.ByteOffset, f.ByteLen = w.Byte, 4
			f.BitLen = 32
			w = w.Plus(32)

		default:
			v, nw, err := cursor.ReadBits(payload, w, desc.Bits)
			if err != nil {
				r.Warnf(dissect.SeverityMalformed, w.Byte, "%s truncated in field %q", entry.Name, desc.Name)
				return r
			}
			f.Value = uint64(v)
			f.ByteOffset, f.ByteLen = w.ByteSpan(desc.Bits)
			f.BitOffset = w.Bit
			f.BitLen = desc.Bits
			if desc.FlagNames != nil {
				f.Label = flagLabel(f.Value, desc.FlagNames)
			}
			w = nw
		}

		if desc.Labels != nil {
			f.Label = desc.Labels[f.Value]
		}
		vals[desc.Name] = f.Value
		r.AddField(f)
	}

	if w.Bit != 0 {
		w = cursor.BitWindow{Byte: w.Byte + 1}
	}
	if rem := payload[w.Byte:]; len(rem) > 0 {
		if allZero(rem) {
			// PDUs ride in fixed-size baseband bodies, so zero padding
			// after the last field is routine.
			r.Warnf(dissect.SeverityInfo, w.Byte, "%d byte(s) of padding after %s", len(rem), entry.Name)
		} else {
			r.Warnf(dissect.SeverityInfo, w.Byte, "%d trailing byte(s) after %s", len(rem), entry.Name)
		}
	}

	return r
}

func flagLabel(v uint64, names []string) string {
	var set []string
	for i, n := range names {
		if i >= 64 {
			break
		}
		if v&(1<<uint(i)) != 0 {
			set = append(set, n)
		}
	}
	if len(set) == 0 {
		return ""
	}
	return strings.Join(set, "+")
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
