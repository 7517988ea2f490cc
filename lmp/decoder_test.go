package lmp

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/dissect"
)

func fieldValue(t *testing.T, r *dissect.Result, name string) uint64 {
	t.Helper()
	f, ok := r.FieldByName(name)
	if !ok {
		t.Fatalf("field %q missing; have %+v", name, r.Fields)
	}
	return f.Value
}

func TestDecodeVersionReq(t *testing.T) {
	// opcode 37, tid 0, version 4.2, company 15, subversion 24841
	payload := []byte{0x25, 0x08, 0x0f, 0x00, 0x09, 0x61}
	r := Decode(payload)

	if r.Malformed() {
		t.Fatalf("unexpected warnings: %+v", r.Warnings)
	}
	if v := fieldValue(t, r, "opcode"); v != 37 {
		t.Fatalf("opcode %v", v)
	}
	op, _ := r.FieldByName("opcode")
	if op.Label != "LMP_version_req" {
		t.Fatalf("opcode label %q", op.Label)
	}
	if v := fieldValue(t, r, "tid"); v != 0 {
		t.Fatalf("tid %v", v)
	}
	ver, _ := r.FieldByName("version")
	if ver.Value != 8 || ver.Label != "4.2" {
		t.Fatalf("version %+v", ver)
	}
	if v := fieldValue(t, r, "company_id"); v != 15 {
		t.Fatalf("company_id %v", v)
	}
	if v := fieldValue(t, r, "subversion"); v != 24841 {
		t.Fatalf("subversion %v", v)
	}
}

func TestDecodeNameReqRanges(t *testing.T) {
	r := Decode([]byte{0x01, 0x00})

	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	if len(r.Fields) != 3 {
		t.Fatalf("fields: %+v", r.Fields)
	}

	// first field is the opcode, then the declared layout in order
	if r.Fields[0].Name != "opcode" || r.Fields[0].Value != 1 {
		t.Fatalf("first field %+v", r.Fields[0])
	}
	if r.Fields[2].Name != "name_offset" || r.Fields[2].ByteOffset != 1 {
		t.Fatalf("name_offset %+v", r.Fields[2])
	}

	// opcode and tid partition byte 0 at bit granularity
	op, tid := r.Fields[0], r.Fields[1]
	if op.BitOffset != 1 || op.BitLen != 7 || tid.BitOffset != 0 || tid.BitLen != 1 {
		t.Fatalf("bit ranges opcode %+v tid %+v", op, tid)
	}
}

func TestDecodeNameRes(t *testing.T) {
	r := Decode([]byte{0x02, 0x00, 0x03, 'a', 'b', 'c'})
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	frag, ok := r.FieldByName("name_frag")
	if !ok || !bytes.Equal(frag.Bytes, []byte("abc")) {
		t.Fatalf("name_frag %+v", frag)
	}

	// declared length runs past the payload
	r = Decode([]byte{0x02, 0x00, 0x05, 'a', 'b', 'c'})
	if !r.Malformed() {
		t.Fatalf("short name_frag accepted: %+v", r.Warnings)
	}
}

func TestDecodeNotAccepted(t *testing.T) {
	r := Decode([]byte{0x04, 0x33, 0x06})
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	code, _ := r.FieldByName("code")
	if code.Value != 51 || code.Label != "LMP_host_connection_req" {
		t.Fatalf("code %+v", code)
	}
	ec, _ := r.FieldByName("error_code")
	if ec.Value != 6 || ec.Label != "PIN or Key Missing" {
		t.Fatalf("error_code %+v", ec)
	}
}

func TestDecodeFeatures(t *testing.T) {
	payload := append([]byte{0x27}, 0, 0, 0, 0, 0, 0, 0, 0x01)
	r := Decode(payload)
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	f, _ := r.FieldByName("features")
	if f.Value != 1 || f.Label != "lstimche" {
		t.Fatalf("features %+v", f)
	}
}

// Key and channel-map parameters are wider than any numeric field; they
// must decode as raw bytes with the right spans.
func TestDecodeWideByteFields(t *testing.T) {
	payload := make([]byte, 17)
	payload[0] = 0x0a // LMP_unit_key
	for i := 1; i < len(payload); i++ {
		payload[i] = byte(i)
	}
	r := Decode(payload)
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	key, ok := r.FieldByName("key")
	if !ok || !bytes.Equal(key.Bytes, payload[1:]) {
		t.Fatalf("key %+v", key)
	}
	if key.ByteOffset != 1 || key.ByteLen != 16 || key.BitLen != 128 {
		t.Fatalf("key span %+v", key)
	}

	// LMP_set_AFH: instant (4), mode (1), then the 10-byte channel map
	afh := append([]byte{0x3c, 0x10, 0x20, 0x30, 0x40, 0x01}, make([]byte, 10)...)
	r = Decode(afh)
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	chm, ok := r.FieldByName("chM")
	if !ok || chm.ByteOffset != 6 || chm.ByteLen != 10 {
		t.Fatalf("chM %+v", chm)
	}
}

func TestDecodeEscape(t *testing.T) {
	// escape with nothing after it
	r := Decode([]byte{0xff})
	if !r.Malformed() {
		t.Fatalf("escape-only payload not malformed: %+v", r.Warnings)
	}
	if v := fieldValue(t, r, "opcode"); v != EscapeOpcode {
		t.Fatalf("opcode %v", v)
	}
	if _, ok := r.FieldByName("ext_opcode"); ok {
		t.Fatal("ext_opcode invented from missing byte")
	}

	// IO capability request via the extended table
	r = Decode([]byte{0x7f, 25, 0x03, 0x00, 0x03})
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	ext, _ := r.FieldByName("ext_opcode")
	if ext.Value != 25 || ext.Label != "LMP_IO_Capability_req" {
		t.Fatalf("ext_opcode %+v", ext)
	}
	cap, _ := r.FieldByName("io_cap")
	if cap.Value != 3 || cap.Label != "NoInputNoOutput" {
		t.Fatalf("io_cap %+v", cap)
	}
}

func TestDecodeFeaturesExtPages(t *testing.T) {
	payload := append([]byte{0x7f, 3, 1, 2}, make([]byte, 8)...)
	r := Decode(payload)
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	if _, ok := r.FieldByName("features1"); !ok {
		t.Fatalf("page 1 features missing: %+v", r.Fields)
	}
	if _, ok := r.FieldByName("features0"); ok {
		t.Fatal("page 0 features decoded for fpage 1")
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	// LMP_switch_req is named but carries no layout
	r := Decode([]byte{19, 0xde, 0xad})
	if r.Malformed() {
		t.Fatalf("unknown opcode marked malformed: %+v", r.Warnings)
	}
	if len(r.Warnings) == 0 {
		t.Fatal("no warning for missing layout")
	}
	d, ok := r.FieldByName("data")
	if !ok || !bytes.Equal(d.Bytes, []byte{0xde, 0xad}) {
		t.Fatalf("raw data %+v", d)
	}
}

func TestDecodePadding(t *testing.T) {
	payload := make([]byte, 17)
	copy(payload, []byte{0x26, 0x08, 0x0f, 0x00, 0x09, 0x61})
	r := Decode(payload)
	if r.Malformed() {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Severity != dissect.SeverityInfo {
		t.Fatalf("warnings: %+v", r.Warnings)
	}
}

func TestDecodeEmpty(t *testing.T) {
	r := Decode(nil)
	if !r.Malformed() || len(r.Fields) != 0 {
		t.Fatalf("empty payload: %+v", r)
	}
}

// Every truncation point of a valid PDU must come back malformed, with
// the partial fields decoded so far and nothing out of bounds.
func TestDecodeTruncationAtEveryBoundary(t *testing.T) {
	payload := []byte{0x25, 0x08, 0x0f, 0x00, 0x09, 0x61}
	for cut := 1; cut < len(payload); cut++ {
		r := Decode(payload[:cut])
		if !r.Malformed() {
			t.Fatalf("cut %d not malformed: %+v", cut, r.Warnings)
		}
		if _, ok := r.FieldByName("opcode"); !ok {
			t.Fatalf("cut %d lost the opcode field", cut)
		}
		for _, f := range r.Fields {
			if f.ByteOffset+f.ByteLen > cut {
				t.Fatalf("cut %d: field %q spans [%d,%d)", cut, f.Name, f.ByteOffset, f.ByteOffset+f.ByteLen)
			}
		}
	}
}

func TestDecodeRandomBuffers(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		buf := make([]byte, rnd.Intn(65))
		rnd.Read(buf)

		r := Decode(buf)
		if r == nil {
			t.Fatalf("nil result for %x", buf)
		}
		for _, f := range r.Fields {
			if f.ByteOffset < 0 || f.ByteOffset+f.ByteLen > len(buf) {
				t.Fatalf("field %q out of bounds for %x", f.Name, buf)
			}
		}
	}
}
