package hsl

import "testing"

func TestEncodeDecodeSetRoundTrip(t *testing.T) {
	encoded := EncodeSet(0x1000, 0x2000, 0x3000, 9)
	if len(encoded) != 7 {
		t.Fatalf("got %d bytes, want 7", len(encoded))
	}
	lightness, hue, saturation, tid, err := DecodeSet(encoded)
	if err != nil {
		t.Fatalf("DecodeSet: %v", err)
	}
	if lightness != 0x1000 || hue != 0x2000 || saturation != 0x3000 || tid != 9 {
		t.Fatalf("got (%#x, %#x, %#x, %d)", lightness, hue, saturation, tid)
	}
}

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{Lightness: 0x4000, Hue: 0x5000, Saturation: 0x6000}
	encoded := EncodeStatus(s)
	if len(encoded) != 6 {
		t.Fatalf("got %d bytes, want 6", len(encoded))
	}
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
