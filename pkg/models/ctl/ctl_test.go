package ctl

import (
	"testing"

	"github.com/meshx-project/meshx/pkg/model"
)

func TestEncodeDecodeStatusRoundTrip(t *testing.T) {
	s := State{Lightness: 0xBEEF, Temperature: 0x1388}
	encoded := EncodeStatus(s)
	if len(encoded) != 4 {
		t.Fatalf("got %d bytes, want 4", len(encoded))
	}
	if encoded[0] != 0xEF || encoded[1] != 0xBE || encoded[2] != 0x88 || encoded[3] != 0x13 {
		t.Fatalf("not little-endian: % x", encoded)
	}
	lightness, temperature, err := DecodeStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if lightness != s.Lightness || temperature != s.Temperature {
		t.Fatalf("got (%d, %d), want (%d, %d)", lightness, temperature, s.Lightness, s.Temperature)
	}
}

func TestEncodeDecodeTemperatureStatusRoundTrip(t *testing.T) {
	s := State{Temperature: 0x0960, DeltaUV: 0x0001}
	encoded := EncodeTemperatureStatus(s)
	if len(encoded) != 4 {
		t.Fatalf("got %d bytes, want 4", len(encoded))
	}
	temperature, deltaUV, err := DecodeTemperatureStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeTemperatureStatus: %v", err)
	}
	if temperature != s.Temperature || deltaUV != s.DeltaUV {
		t.Fatalf("got (%d, %d), want (%d, %d)", temperature, deltaUV, s.Temperature, s.DeltaUV)
	}
}

func TestEncodeDecodeDefaultStatusRoundTrip(t *testing.T) {
	s := State{DefaultLightness: 0x8000, DefaultTemperature: 0x0960, DefaultDeltaUV: 0}
	encoded := EncodeDefaultStatus(s)
	if len(encoded) != 6 {
		t.Fatalf("got %d bytes, want 6", len(encoded))
	}
	lightnessDef, temperatureDef, deltaUVDef, err := DecodeDefaultStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeDefaultStatus: %v", err)
	}
	if lightnessDef != s.DefaultLightness || temperatureDef != s.DefaultTemperature || deltaUVDef != s.DefaultDeltaUV {
		t.Fatalf("got (%d, %d, %d), want (%d, %d, %d)", lightnessDef, temperatureDef, deltaUVDef,
			s.DefaultLightness, s.DefaultTemperature, s.DefaultDeltaUV)
	}
}

func TestEncodeDecodeTemperatureRangeStatusRoundTrip(t *testing.T) {
	s := State{RangeCode: RangeStatusSuccess, RangeMin: 0x0320, RangeMax: 0x4E20}
	encoded := EncodeTemperatureRangeStatus(s)
	if len(encoded) != 5 {
		t.Fatalf("got %d bytes, want 5", len(encoded))
	}
	if encoded[0] != byte(RangeStatusSuccess) {
		t.Fatalf("status code byte = %#x, want 0x00", encoded[0])
	}
	code, rangeMin, rangeMax, err := DecodeTemperatureRangeStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeTemperatureRangeStatus: %v", err)
	}
	if code != s.RangeCode || rangeMin != s.RangeMin || rangeMax != s.RangeMax {
		t.Fatalf("got (%v, %d, %d), want (%v, %d, %d)", code, rangeMin, rangeMax, s.RangeCode, s.RangeMin, s.RangeMax)
	}
}

func TestEncodeDecodeSetRoundTrip(t *testing.T) {
	encoded := EncodeSet(0x1234, 0x0960, 0x0002, 7)
	if len(encoded) != 7 {
		t.Fatalf("got %d bytes, want 7", len(encoded))
	}
	lightness, temperature, deltaUV, tid, err := DecodeSet(encoded)
	if err != nil {
		t.Fatalf("DecodeSet: %v", err)
	}
	if lightness != 0x1234 || temperature != 0x0960 || deltaUV != 0x0002 || tid != 7 {
		t.Fatalf("got (%#x, %#x, %#x, %d)", lightness, temperature, deltaUV, tid)
	}
}

func TestDecodeStatusVariantsRejectShortPayloads(t *testing.T) {
	if _, _, err := DecodeStatus([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("DecodeStatus accepted a 3-byte payload")
	}
	if _, _, err := DecodeTemperatureStatus(nil); err == nil {
		t.Fatal("DecodeTemperatureStatus accepted an empty payload")
	}
	if _, _, _, err := DecodeDefaultStatus([]byte{0x01}); err == nil {
		t.Fatal("DecodeDefaultStatus accepted a short payload")
	}
	if _, _, _, err := DecodeTemperatureRangeStatus([]byte{0x00, 0x01}); err == nil {
		t.Fatal("DecodeTemperatureRangeStatus accepted a short payload")
	}
	if _, _, _, _, err := DecodeSet([]byte{0x01, 0x02}); err == nil {
		t.Fatal("DecodeSet accepted a short payload")
	}
}

func TestEncodeDecodeTemperatureRangeSetRoundTrip(t *testing.T) {
	encoded := make([]byte, 4)
	encoded[0], encoded[1] = 0x20, 0x03
	encoded[2], encoded[3] = 0x20, 0x4E
	rangeMin, rangeMax, err := DecodeTemperatureRangeSet(encoded)
	if err != nil {
		t.Fatalf("DecodeTemperatureRangeSet: %v", err)
	}
	if rangeMin != 0x0320 || rangeMax != 0x4E20 {
		t.Fatalf("got (%#x, %#x), want (0x320, 0x4e20)", rangeMin, rangeMax)
	}
	if _, _, err := DecodeTemperatureRangeSet([]byte{0x01, 0x02}); err == nil {
		t.Fatal("DecodeTemperatureRangeSet accepted a short payload")
	}
}

func TestDecodeStateDispatchesByOpcode(t *testing.T) {
	setPayload := EncodeSet(0x1234, 0x0960, 0x0002, 7)
	s, err := decodeState(model.Ctx{Opcode: model.OpLightCtlSet}, setPayload)
	if err != nil {
		t.Fatalf("decodeState(Set): %v", err)
	}
	if s.Lightness != 0x1234 || s.Temperature != 0x0960 {
		t.Fatalf("got %+v", s)
	}

	statusPayload := EncodeStatus(State{Lightness: 0xBEEF, Temperature: 0x1388})
	s, err = decodeState(model.Ctx{Opcode: model.OpLightCtlStatus}, statusPayload)
	if err != nil {
		t.Fatalf("decodeState(Status): %v", err)
	}
	if s.Lightness != 0xBEEF || s.Temperature != 0x1388 {
		t.Fatalf("got %+v", s)
	}

	rangeSetPayload := make([]byte, 4)
	rangeSetPayload[0], rangeSetPayload[1] = 0x20, 0x03
	rangeSetPayload[2], rangeSetPayload[3] = 0x20, 0x4E
	s, err = decodeState(model.Ctx{Opcode: model.OpLightCtlTemperatureRangeSet}, rangeSetPayload)
	if err != nil {
		t.Fatalf("decodeState(TemperatureRangeSet): %v", err)
	}
	if s.RangeMin != 0x0320 || s.RangeMax != 0x4E20 {
		t.Fatalf("got %+v", s)
	}

	if _, err := decodeState(model.Ctx{Opcode: 0xFFFF}, nil); err == nil {
		t.Fatal("decodeState accepted an unknown opcode")
	}
}
