package property

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/meshx-project/meshx/pkg/model"
)

func TestEncodeDecodeUserStatusRoundTrip(t *testing.T) {
	s := State{PropertyID: 0x0056, Access: AccessReadWrite, Value: []byte{0x01, 0x02, 0x03}}
	encoded := EncodeUserStatus(s)
	if len(encoded) != 6 {
		t.Fatalf("got %d bytes, want 6", len(encoded))
	}
	decoded, err := DecodeUserStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeUserStatus: %v", err)
	}
	if decoded.PropertyID != s.PropertyID || decoded.Access != s.Access || !bytes.Equal(decoded.Value, s.Value) {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestEncodeDecodeUserStatusEmptyValue(t *testing.T) {
	s := State{PropertyID: 0x0010, Access: AccessRead}
	encoded := EncodeUserStatus(s)
	decoded, err := DecodeUserStatus(encoded)
	if err != nil {
		t.Fatalf("DecodeUserStatus: %v", err)
	}
	if decoded.PropertyID != s.PropertyID || decoded.Access != s.Access || len(decoded.Value) != 0 {
		t.Fatalf("got %+v, want %+v", decoded, s)
	}
}

func TestDecodeUserStatusRejectsShortPayload(t *testing.T) {
	if _, err := DecodeUserStatus([]byte{0x01, 0x02}); err == nil {
		t.Fatal("expected error decoding 2-byte payload")
	}
}

func TestDecodeStateGetPayloadIsBarePropertyID(t *testing.T) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, 0x0099)

	s, err := decodeState(model.Ctx{Opcode: model.OpGenUserPropGet}, buf)
	if err != nil {
		t.Fatalf("decodeState(Get): %v", err)
	}
	if s.PropertyID != 0x0099 {
		t.Fatalf("got PropertyID %#x, want 0x99", s.PropertyID)
	}

	s, err = decodeState(model.Ctx{Opcode: model.OpGenAdminPropGet}, buf)
	if err != nil {
		t.Fatalf("decodeState(AdminGet): %v", err)
	}
	if s.PropertyID != 0x0099 {
		t.Fatalf("got PropertyID %#x, want 0x99", s.PropertyID)
	}
}

func TestDecodeStateSetPayloadIsFullTriple(t *testing.T) {
	want := State{PropertyID: 0x0056, Access: AccessReadWrite, Value: []byte{0x01, 0x02, 0x03}}
	s, err := decodeState(model.Ctx{Opcode: model.OpGenUserPropSet}, EncodeUserStatus(want))
	if err != nil {
		t.Fatalf("decodeState(Set): %v", err)
	}
	if s.PropertyID != want.PropertyID || s.Access != want.Access || !bytes.Equal(s.Value, want.Value) {
		t.Fatalf("got %+v, want %+v", s, want)
	}
}
