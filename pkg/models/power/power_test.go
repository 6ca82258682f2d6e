package power

import (
	"testing"

	"github.com/meshx-project/meshx/pkg/model"
)

func TestEncodeDecodeOnPowerUpStatusRoundTrip(t *testing.T) {
	encoded := EncodeOnPowerUpStatus(OnPowerUpRestore)
	decoded, err := DecodeOnPowerUpStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeOnPowerUpStatus: %v", err)
	}
	if decoded != OnPowerUpRestore {
		t.Fatalf("got %v, want %v", decoded, OnPowerUpRestore)
	}
}

func TestEncodeDecodePowerLevelStatusRoundTrip(t *testing.T) {
	s := State{PowerLevel: 0x4000, HasTarget: true, TargetPowerLevel: 0x8000, RemainingTime: 0x05}
	encoded := EncodePowerLevelStatus(s)
	if len(encoded) != 5 {
		t.Fatalf("got %d bytes, want 5", len(encoded))
	}
	decoded, err := DecodePowerLevelStatus(encoded)
	if err != nil {
		t.Fatalf("DecodePowerLevelStatus: %v", err)
	}
	if decoded != s {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestDecodeOnPowerUpStatusRejectsEmptyPayload(t *testing.T) {
	if _, err := DecodeOnPowerUpStatus(nil); err == nil {
		t.Fatal("expected error decoding empty payload")
	}
}

func TestDecodeStateDispatchesByOpcode(t *testing.T) {
	s, err := decodeState(model.Ctx{Opcode: model.OpGenOnPowerUpSet}, []byte{byte(OnPowerUpRestore)})
	if err != nil {
		t.Fatalf("decodeState(OnPowerUpSet): %v", err)
	}
	if s.OnPowerUp != OnPowerUpRestore {
		t.Fatalf("got %+v", s)
	}

	want := State{PowerLevel: 0x4000, HasTarget: true, TargetPowerLevel: 0x8000, RemainingTime: 0x05}
	s, err = decodeState(model.Ctx{Opcode: model.OpGenPowerLevelStatus}, EncodePowerLevelStatus(want))
	if err != nil {
		t.Fatalf("decodeState(PowerLevelStatus): %v", err)
	}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}

	if _, err := decodeState(model.Ctx{Opcode: 0xFFFF}, nil); err == nil {
		t.Fatal("decodeState accepted an unknown opcode")
	}
}
