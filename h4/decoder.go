package h4

import (
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/cursor"
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/dissect"
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/lmp"
)

// Decode dissects one captured H4 frame. Like lmp.Decode it never
// fails outright: malformed or truncated frames come back as partial
// results with warnings. The frame buffer is borrowed, not copied.
func Decode(frame []byte) *dissect.Result {
	d := &dec{r: &dissect.Result{}, buf: frame, cur: cursor.New(frame)}

	typ, ok := d.u8("type", packetTypeNames, dissect.KindEnum)
	if !ok {
		return d.r
	}

	switch typ {
	case PacketTypeCommand:
		d.command()
	case PacketTypeACLData:
		d.hciACL()
	case PacketTypeEvent:
		d.event()
	case PacketTypeDiag:
		d.diag()
	case PacketTypeBasebandACL:
		d.basebandACL()
	case PacketTypeESP32BREDR:
		d.esp32()
	case PacketTypeAck, PacketTypeSync, PacketTypeReserve, PacketTypeVendor, PacketTypeLinkControl:
		d.rest("payload")
	default:
		d.r.Warnf(dissect.SeverityInfo, 0, "unrecognized H4 packet type 0x%02x", typ)
		d.rest("payload")
	}
	return d.r
}

// DecodeWithPHDR decodes a frame from a capture that prefixes each H4
// frame with the 4-byte big-endian direction pseudo-header
// (DLT_BLUETOOTH_HCI_H4_WITH_PHDR).
func DecodeWithPHDR(frame []byte) *dissect.Result {
	r := &dissect.Result{}
	cur := cursor.New(frame)
	dir, err := cur.U32BE()
	if err != nil {
		r.Warnf(dissect.SeverityMalformed, 0, "truncated direction pseudo-header")
		return r
	}
	r.AddField(dissect.Field{
		Name:    "direction",
		Kind:    dissect.KindEnum,
		Value:   uint64(dir),
		Label:   directionNames[uint64(dir)],
		ByteLen: 4,
		BitLen:  32,
	})
	r.Merge(Decode(cur.Rest()), 4)
	return r
}

type dec struct {
	r   *dissect.Result
	buf []byte
	cur *cursor.Cursor
}

func (d *dec) truncated(what string) {
	d.r.Warnf(dissect.SeverityMalformed, d.cur.Offset(), "truncated %s", what)
}

func (d *dec) u8(name string, labels map[uint64]string, kind dissect.Kind) (byte, bool) {
	off := d.cur.Offset()
	v, err := d.cur.U8()
	if err != nil {
		d.truncated(name)
		return 0, false
	}
	d.r.AddField(dissect.Field{
		Name:       name,
		Kind:       kind,
		Value:      uint64(v),
		Label:      labels[uint64(v)],
		ByteOffset: off,
		ByteLen:    1,
		BitLen:     8,
	})
	return v, true
}

func (d *dec) u16le(name string) (uint16, bool) {
	off := d.cur.Offset()
	v, err := d.cur.U16LE()
	if err != nil {
		d.truncated(name)
		return 0, false
	}
	d.r.AddField(dissect.Field{
		Name:       name,
		Kind:       dissect.KindUint,
		Value:      uint64(v),
		ByteOffset: off,
		ByteLen:    2,
		BitLen:     16,
	})
	return v, true
}

func (d *dec) u32le(name string) (uint32, bool) {
	off := d.cur.Offset()
	v, err := d.cur.U32LE()
	if err != nil {
		d.truncated(name)
		return 0, false
	}
	d.r.AddField(dissect.Field{
		Name:       name,
		Kind:       dissect.KindUint,
		Value:      uint64(v),
		ByteOffset: off,
		ByteLen:    4,
		BitLen:     32,
	})
	return v, true
}

// bitField emits a sub-byte field read from the unconsumed bytes at
// the cursor; the caller skips the covered bytes once the group is
// done.
func (d *dec) bitField(name string, w cursor.BitWindow, width int, labels map[uint64]string) (uint32, cursor.BitWindow, bool) {
	v, nw, err := cursor.ReadBits(d.buf, w, width)
	if err != nil {
		d.r.Warnf(dissect.SeverityMalformed, w.Byte, "truncated %s", name)
		return 0, w, false
	}
	kind := dissect.KindUint
	if labels != nil {
		kind = dissect.KindEnum
	}
	off, n := w.ByteSpan(width)
	d.r.AddField(dissect.Field{
		Name:       name,
		Kind:       kind,
		Value:      uint64(v),
		Label:      labels[uint64(v)],
		ByteOffset: off,
		ByteLen:    n,
		BitOffset:  w.Bit,
		BitLen:     width,
	})
	return v, nw, true
}

func (d *dec) rest(name string) {
	if d.cur.Remaining() == 0 {
		return
	}
	off := d.cur.Offset()
	b := d.cur.Rest()
	d.r.AddField(dissect.Field{
		Name:       name,
		Kind:       dissect.KindBytes,
		Bytes:      b,
		ByteOffset: off,
		ByteLen:    len(b),
		BitLen:     len(b) * 8,
	})
}

// delegateLMP hands the unconsumed bytes to the LMP decoder and folds
// its result into the frame's, rebased onto frame offsets.
func (d *dec) delegateLMP() {
	base := d.cur.Offset()
	d.r.Merge(lmp.Decode(d.cur.Rest()), base)
}

func (d *dec) command() {
	if _, ok := d.u16le("opcode"); !ok {
		return
	}
	plen, ok := d.u8("len", nil, dissect.KindUint)
	if !ok {
		return
	}
	if int(plen) != d.cur.Remaining() {
		d.r.Warnf(dissect.SeverityInfo, d.cur.Offset(),
			"command parameter length %d, %d byte(s) present", plen, d.cur.Remaining())
	}
	d.rest("params")
}

func (d *dec) event() {
	if _, ok := d.u8("code", nil, dissect.KindUint); !ok {
		return
	}
	plen, ok := d.u8("len", nil, dissect.KindUint)
	if !ok {
		return
	}
	if int(plen) != d.cur.Remaining() {
		d.r.Warnf(dissect.SeverityInfo, d.cur.Offset(),
			"event parameter length %d, %d byte(s) present", plen, d.cur.Remaining())
	}
	d.rest("params")
}

// hciACL parses the host-side ACL data header. The 16-bit entity
// holding the broadcast/boundary flags and the handle is stored
// little-endian on the wire, so the two bytes are swapped before the
// MSB-first flag extraction.
func (d *dec) hciACL() {
	off := d.cur.Offset()
	hb, err := d.cur.Bytes(2)
	if err != nil {
		d.truncated("ACL header")
		return
	}
	v := uint64(hb[0]) | uint64(hb[1])<<8
	d.r.AddField(dissect.Field{
		Name: "bc", Kind: dissect.KindUint, Value: v >> 14,
		ByteOffset: off, ByteLen: 2, BitOffset: 0, BitLen: 2,
	})
	d.r.AddField(dissect.Field{
		Name: "pb", Kind: dissect.KindUint, Value: (v >> 12) & 0x3,
		ByteOffset: off, ByteLen: 2, BitOffset: 2, BitLen: 2,
	})
	d.r.AddField(dissect.Field{
		Name: "handle", Kind: dissect.KindUint, Value: v & 0x0fff,
		ByteOffset: off, ByteLen: 2, BitOffset: 4, BitLen: 12,
	})

	plen, ok := d.u16le("len")
	if !ok {
		return
	}
	if int(plen) != d.cur.Remaining() {
		d.r.Warnf(dissect.SeverityInfo, d.cur.Offset(),
			"ACL data length %d, %d byte(s) present", plen, d.cur.Remaining())
	}
	// L2CAP is out of scope for this dissector.
	d.rest("payload")
}

func (d *dec) diag() {
	dt, ok := d.u8("diag_type", diagTypeNames, dissect.KindEnum)
	if !ok {
		return
	}
	switch dt {
	case DiagLMSent, DiagLMRecv:
		d.delegateLMP()
	default:
		d.rest("payload")
	}
}

// basebandACL parses the 2-byte baseband ACL header and delegates by
// logical link: LMP for llid 3, L2CAP (reported raw) for llid 2.
// Delegation is keyed on the llid alone, never on payload contents.
func (d *dec) basebandACL() {
	w := cursor.BitWindow{Byte: d.cur.Offset()}
	var llid uint32
	var ok bool
	if _, w, ok = d.bitField("len", w, 5, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("flow", w, 1, nil); !ok {
		return
	}
	if llid, w, ok = d.bitField("llid", w, 2, llidNames); !ok {
		return
	}
	_ = d.cur.Skip(1)
	if _, ok = d.u8("dummy", nil, dissect.KindUint); !ok {
		return
	}

	switch llid {
	case LLIDLMP:
		d.delegateLMP()
	case LLIDStart, LLIDContinuation:
		d.rest("l2cap")
	default:
		d.rest("payload")
	}
}

// esp32 parses the sniffer bridge's vendor header followed by the
// baseband packet header; DM1/DH1/DV packet types chain into the
// baseband ACL header.
func (d *dec) esp32() {
	if _, ok := d.u32le("clk"); !ok {
		return
	}
	if _, ok := d.u8("channel", nil, dissect.KindUint); !ok {
		return
	}

	w := cursor.BitWindow{Byte: d.cur.Offset()}
	var ok bool
	if _, w, ok = d.bitField("is_eir", w, 1, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("rx_enc", w, 1, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("tx_enc", w, 1, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("rfu", w, 3, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("role", w, 1, roleNames); !ok {
		return
	}
	if _, w, ok = d.bitField("is_edr", w, 1, nil); !ok {
		return
	}
	_ = d.cur.Skip(1)

	// Baseband packet header.
	w = cursor.BitWindow{Byte: d.cur.Offset()}
	if _, w, ok = d.bitField("flow", w, 1, nil); !ok {
		return
	}
	var btype uint32
	if btype, w, ok = d.bitField("bb_type", w, 4, basebandTypeNames); !ok {
		return
	}
	if _, w, ok = d.bitField("lt_addr", w, 3, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("arqn", w, 1, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("seqn", w, 1, nil); !ok {
		return
	}
	if _, w, ok = d.bitField("hec", w, 6, nil); !ok {
		return
	}
	_ = d.cur.Skip(2)

	switch btype {
	case 0x03, 0x04, 0x08:
		d.basebandACL()
	default:
		d.rest("payload")
	}
}
