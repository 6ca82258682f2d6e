package location

import "testing"

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{Latitude: -123456789, Longitude: 987654321, Altitude: -300}
	encoded := EncodeStatus(s)
	if len(encoded) != 10 {
		t.Fatalf("got %d bytes, want 10", len(encoded))
	}
	decoded, err := DecodeStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if decoded != s {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestDecodeStatusRejectsShortPayload(t *testing.T) {
	if _, err := DecodeStatus(make([]byte, 9)); err == nil {
		t.Fatal("expected error decoding 9-byte payload")
	}
}
