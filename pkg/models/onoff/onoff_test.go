package onoff

import "testing"

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{OnOff: 1, HasTarget: true, TargetOnOff: 0, RemainingTime: 0x22}
	encoded := EncodeStatus(s)
	if len(encoded) != 3 {
		t.Fatalf("got %d bytes, want 3", len(encoded))
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
	s := State{OnOff: 1}
	encoded := EncodeStatus(s)
	if len(encoded) != 1 {
		t.Fatalf("got %d bytes, want 1", len(encoded))
	}
}

func TestDecodeStatusRejectsEmptyPayload(t *testing.T) {
	if _, err := DecodeStatus(nil); err == nil {
		t.Fatal("expected error decoding empty payload")
	}
}
