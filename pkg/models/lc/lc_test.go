package lc

import (
	"testing"

	"github.com/meshx-project/meshx/pkg/model"
)

func TestEncodeDecodeModeStatusRoundTrip(t *testing.T) {
	encoded := EncodeModeStatus(ModeOn)
	decoded, err := DecodeModeStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeModeStatus: %v", err)
	}
	if decoded != ModeOn {
		t.Fatalf("got %v, want %v", decoded, ModeOn)
	}
}

func TestEncodeDecodeLightOnOffStatusRoundTrip(t *testing.T) {
	s := State{LightOnOff: 1, HasTarget: true, TargetOnOff: 0, RemainingTime: 0x10}
	encoded := EncodeLightOnOffStatus(s)
	if len(encoded) != 3 {
		t.Fatalf("got %d bytes, want 3", len(encoded))
	}
	decoded, err := DecodeLightOnOffStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeLightOnOffStatus: %v", err)
	}
	if decoded != s {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestEncodeLightOnOffStatusWithoutTarget(t *testing.T) {
	encoded := EncodeLightOnOffStatus(State{LightOnOff: 1})
	if len(encoded) != 1 {
		t.Fatalf("got %d bytes, want 1", len(encoded))
	}
}

func TestDecodeRejectsEmptyPayloads(t *testing.T) {
	if _, err := DecodeModeStatus(nil); err == nil {
		t.Fatal("DecodeModeStatus accepted an empty payload")
	}
	if _, err := DecodeLightOnOffStatus(nil); err == nil {
		t.Fatal("DecodeLightOnOffStatus accepted an empty payload")
	}
}

func TestDecodeStateDispatchesByOpcode(t *testing.T) {
	s, err := decodeState(model.Ctx{Opcode: model.OpLightLcModeSet}, []byte{byte(ModeOn)})
	if err != nil {
		t.Fatalf("decodeState(ModeSet): %v", err)
	}
	if s.Mode != ModeOn {
		t.Fatalf("got %+v", s)
	}

	s, err = decodeState(model.Ctx{Opcode: model.OpLightLcOMStatus}, []byte{byte(ModeOff)})
	if err != nil {
		t.Fatalf("decodeState(OMStatus): %v", err)
	}
	if s.OccupancyMode != ModeOff {
		t.Fatalf("got %+v", s)
	}

	want := State{LightOnOff: 1, HasTarget: true, TargetOnOff: 0, RemainingTime: 0x10}
	s, err = decodeState(model.Ctx{Opcode: model.OpLightLcLightOnOffSet}, EncodeLightOnOffStatus(want))
	if err != nil {
		t.Fatalf("decodeState(LightOnOffSet): %v", err)
	}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}

	if _, err := decodeState(model.Ctx{Opcode: 0xFFFF}, nil); err == nil {
		t.Fatal("decodeState accepted an unknown opcode")
	}
}
