package level

import "testing"

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{Level: -1200, HasTarget: true, TargetLevel: 3000, RemainingTime: 0x11}
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

func TestEncodeStatusWithoutTarget(t *testing.T) {
	s := State{Level: 42}
	encoded := EncodeStatus(s)
	if len(encoded) != 2 {
		t.Fatalf("got %d bytes, want 2", len(encoded))
	}
}

func TestDecodeStatusRejectsShortPayload(t *testing.T) {
	if _, err := DecodeStatus([]byte{0x01}); err == nil {
		t.Fatal("expected error decoding 1-byte payload")
	}
}
