// Package dissect holds the output model shared by all decoders: an
// ordered list of named, byte-range-tagged fields plus warnings. A
// Result is owned by the single decode call that produced it and
// borrows read-only from that call's input buffer.
package dissect

import "fmt"

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMalformed
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Kind is the semantic type of a decoded field.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindEnum
	KindFlags
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindEnum:
		return "enum"
	case KindFlags:
		return "flags"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is one decoded protocol field. ByteOffset/ByteLen locate the
// bytes it was extracted from in the source buffer; BitOffset/BitLen
// refine that to bit granularity for sub-byte fields (BitOffset counts
// from the MSB of the first covered byte). Bytes is a borrowed view
// into the source buffer and is only set for KindBytes fields.
type Field struct {
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Value      uint64 `json:"value"`
	Label      string `json:"label,omitempty"`
	Bytes      []byte `json:"bytes,omitempty"`
	ByteOffset int    `json:"byte_offset"`
	ByteLen    int    `json:"byte_len"`
	BitOffset  int    `json:"bit_offset"`
	BitLen     int    `json:"bit_len"`
}

type Warning struct {
	Offset   int      `json:"offset"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Result is the outcome of dissecting one frame or PDU. Fields appear
// in decode order. A Result never carries state across packets.
type Result struct {
	Fields   []Field   `json:"fields"`
	Warnings []Warning `json:"warnings,omitempty"`
}

func (r *Result) AddField(f Field) {
	r.Fields = append(r.Fields, f)
}

func (r *Result) Warnf(sev Severity, off int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Warning{
		Offset:   off,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Malformed reports whether any warning has malformed severity.
func (r *Result) Malformed() bool {
	for _, w := range r.Warnings {
		if w.Severity == SeverityMalformed {
			return true
		}
	}
	return false
}

func (r *Result) FieldByName(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Merge appends another result's fields and warnings, rebasing their
// byte offsets by base. Used when a nested payload decoded relative to
// its own start is folded into the enclosing frame's result.
func (r *Result) Merge(sub *Result, base int) {
	if sub == nil {
		return
	}
	for _, f := range sub.Fields {
		f.ByteOffset += base
		r.Fields = append(r.Fields, f)
	}
	for _, w := range sub.Warnings {
		w.Offset += base
		r.Warnings = append(r.Warnings, w)
	}
}
