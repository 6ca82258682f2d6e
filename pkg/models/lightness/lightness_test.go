package lightness

import "testing"

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{Lightness: 0x2000, HasTarget: true, TargetLightness: 0x4000, RemainingTime: 0x08}
	encoded := EncodeStatus(s)
	if len(encoded) != 5 {
		t.Fatalf("got %d bytes, want 5", len(encoded))
	}
	decoded, err := DecodeStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if decoded != s {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestEncodeRangeStatus(t *testing.T) {
	encoded := EncodeRangeStatus(0x00, State{RangeMin: 0x0001, RangeMax: 0xFFFE})
	if len(encoded) != 5 {
		t.Fatalf("got %d bytes, want 5", len(encoded))
	}
	if encoded[0] != 0x00 {
		t.Fatalf("status code byte = %#x, want 0x00", encoded[0])
	}
}

func TestDecodeStatusRejectsShortPayload(t *testing.T) {
	if _, err := DecodeStatus([]byte{0x01}); err == nil {
		t.Fatal("expected error decoding 1-byte payload")
	}
}
