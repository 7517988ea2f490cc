package lmp

import "github.com/fjferrer/esp32-bluetooth-classic-sniffer/dissect"

// Decoded carries the raw values of the fields extracted so far in one
// PDU, keyed by field name. Conditional and length-from descriptors
// consult it.
type Decoded map[string]uint64

// FieldDesc describes one field of a PDU layout. Layouts are immutable
// data built once at init; the decoder walks them with a single generic
// extraction loop.
//
// Bits is the field width in bits. Byte-aligned widths of 16 and 32 are
// read little-endian per the LMP parameter convention; everything else
// goes through the MSB-first bit extractor. Bits is 0 for variable
// length byte fields, whose length in bytes comes from the earlier
// field named by LenFrom. FlagNames, when set, label a 64-bit flags
// field bit by bit from the LSB. When, when set, gates the field on
// values decoded earlier in the same PDU.
type FieldDesc struct {
	Name      string
	Bits      int
	Kind      dissect.Kind
	Labels    map[uint64]string
	FlagNames []string
	LenFrom   string
	When      func(Decoded) bool
}

type Layout []FieldDesc

// Entry is one opcode table entry: the PDU name plus its field layout.
type Entry struct {
	Name   string
	Layout Layout
}

func u8(name string) FieldDesc {
	return FieldDesc{Name: name, Bits: 8, Kind: dissect.KindUint}
}

func u8e(name string, labels map[uint64]string) FieldDesc {
	return FieldDesc{Name: name, Bits: 8, Kind: dissect.KindEnum, Labels: labels}
}

func le16(name string) FieldDesc {
	return FieldDesc{Name: name, Bits: 16, Kind: dissect.KindUint}
}

func le32(name string) FieldDesc {
	return FieldDesc{Name: name, Bits: 32, Kind: dissect.KindUint}
}

func bits(name string, n int) FieldDesc {
	return FieldDesc{Name: name, Bits: n, Kind: dissect.KindUint}
}

func bitse(name string, n int, labels map[uint64]string) FieldDesc {
	return FieldDesc{Name: name, Bits: n, Kind: dissect.KindEnum, Labels: labels}
}

func raw(name string, n int) FieldDesc {
	return FieldDesc{Name: name, Bits: n * 8, Kind: dissect.KindBytes}
}

func rawFrom(name, lenField string) FieldDesc {
	return FieldDesc{Name: name, Kind: dissect.KindBytes, LenFrom: lenField}
}

func flags8(name string, names []string) FieldDesc {
	return FieldDesc{Name: name, Bits: 8, Kind: dissect.KindFlags, FlagNames: names}
}

func flags64(name string, names []string) FieldDesc {
	return FieldDesc{Name: name, Bits: 64, Kind: dissect.KindFlags, FlagNames: names}
}

func when(d FieldDesc, cond func(Decoded) bool) FieldDesc {
	d.When = cond
	return d
}
