package xyl

import "testing"

func TestEncodeDecodeSetRoundTrip(t *testing.T) {
	encoded := EncodeSet(0x1000, 0x2222, 0x3333, 5)
	if len(encoded) != 7 {
		t.Fatalf("got %d bytes, want 7", len(encoded))
	}
	lightness, x, y, tid, err := DecodeSet(encoded)
	if err != nil {
		t.Fatalf("DecodeSet: %v", err)
	}
	if lightness != 0x1000 || x != 0x2222 || y != 0x3333 || tid != 5 {
		t.Fatalf("got (%#x, %#x, %#x, %d)", lightness, x, y, tid)
	}
}

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{Lightness: 0x7777, X: 0x1111, Y: 0x2222}
	encoded := EncodeStatus(s)
	decoded, err := DecodeStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if decoded != s {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestDecodeRejectsShortPayloads(t *testing.T) {
	if _, _, _, _, err := DecodeSet([]byte{0x01}); err == nil {
		t.Fatal("DecodeSet accepted a short payload")
	}
	if _, err := DecodeStatus([]byte{0x01}); err == nil {
		t.Fatal("DecodeStatus accepted a short payload")
	}
}
