// Package ctl adapts the light client/server model registries to the Light
// CTL model, grounded on meshx_light_ctl_srv.c. The four STATUS payload
// layouts in this file are bit-exact per the wire format the original
// firmware emits.
package ctl

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// RangeStatusCode mirrors the Bluetooth Mesh Generic Status codes used by
// the Temperature Range Status payload.
type RangeStatusCode uint8

const (
	RangeStatusSuccess           RangeStatusCode = 0x00
	RangeStatusCannotSetRangeMin RangeStatusCode = 0x01
	RangeStatusCannotSetRangeMax RangeStatusCode = 0x02
)

// State is the decoded Light CTL state-change union.
type State struct {
	Lightness   uint16
	Temperature uint16
	DeltaUV     uint16

	DefaultLightness   uint16
	DefaultTemperature uint16
	DefaultDeltaUV     uint16

	RangeMin   uint16
	RangeMax   uint16
	RangeCode  RangeStatusCode
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 10

// EncodeStatus encodes LIGHT_CTL_STATUS (0x8260): u16 lightness; u16
// temperature (4 bytes, little-endian).
func EncodeStatus(s State) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], s.Lightness)
	binary.LittleEndian.PutUint16(buf[2:4], s.Temperature)
	return buf
}

// DecodeStatus decodes LIGHT_CTL_STATUS.
func DecodeStatus(payload []byte) (lightness, temperature uint16, err error) {
	if len(payload) < 4 {
		return 0, 0, fmt.Errorf("ctl status payload too short: %d bytes, want 4", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]), binary.LittleEndian.Uint16(payload[2:4]), nil
}

// EncodeTemperatureStatus encodes LIGHT_CTL_TEMPERATURE_STATUS (0x8266):
// u16 temperature; u16 delta_uv (4 bytes).
func EncodeTemperatureStatus(s State) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], s.Temperature)
	binary.LittleEndian.PutUint16(buf[2:4], s.DeltaUV)
	return buf
}

// DecodeTemperatureStatus decodes LIGHT_CTL_TEMPERATURE_STATUS.
func DecodeTemperatureStatus(payload []byte) (temperature, deltaUV uint16, err error) {
	if len(payload) < 4 {
		return 0, 0, fmt.Errorf("ctl temperature status payload too short: %d bytes, want 4", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]), binary.LittleEndian.Uint16(payload[2:4]), nil
}

// EncodeDefaultStatus encodes LIGHT_CTL_DEFAULT_STATUS (0x8268): u16
// lightness_def; u16 temperature_def; u16 delta_uv_def (6 bytes).
func EncodeDefaultStatus(s State) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint16(buf[0:2], s.DefaultLightness)
	binary.LittleEndian.PutUint16(buf[2:4], s.DefaultTemperature)
	binary.LittleEndian.PutUint16(buf[4:6], s.DefaultDeltaUV)
	return buf
}

// DecodeDefaultStatus decodes LIGHT_CTL_DEFAULT_STATUS.
func DecodeDefaultStatus(payload []byte) (lightnessDef, temperatureDef, deltaUVDef uint16, err error) {
	if len(payload) < 6 {
		return 0, 0, 0, fmt.Errorf("ctl default status payload too short: %d bytes, want 6", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]),
		binary.LittleEndian.Uint16(payload[2:4]),
		binary.LittleEndian.Uint16(payload[4:6]), nil
}

// EncodeTemperatureRangeStatus encodes LIGHT_CTL_TEMPERATURE_RANGE_STATUS
// (0x8263): u8 status_code; u16 range_min; u16 range_max (5 bytes, packed —
// no padding between the status byte and the first u16).
func EncodeTemperatureRangeStatus(s State) []byte {
	buf := make([]byte, 5)
	buf[0] = byte(s.RangeCode)
	binary.LittleEndian.PutUint16(buf[1:3], s.RangeMin)
	binary.LittleEndian.PutUint16(buf[3:5], s.RangeMax)
	return buf
}

// DecodeTemperatureRangeStatus decodes LIGHT_CTL_TEMPERATURE_RANGE_STATUS.
func DecodeTemperatureRangeStatus(payload []byte) (code RangeStatusCode, rangeMin, rangeMax uint16, err error) {
	if len(payload) < 5 {
		return 0, 0, 0, fmt.Errorf("ctl temperature range status payload too short: %d bytes, want 5", len(payload))
	}
	return RangeStatusCode(payload[0]), binary.LittleEndian.Uint16(payload[1:3]), binary.LittleEndian.Uint16(payload[3:5]), nil
}

// EncodeSet encodes a CTL SET/SET_UNACK payload: u16 lightness; u16
// temperature; i16 delta_uv; u8 tid (7 bytes, optional transition
// time/delay omitted).
func EncodeSet(lightness, temperature, deltaUV uint16, tid uint8) []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], lightness)
	binary.LittleEndian.PutUint16(buf[2:4], temperature)
	binary.LittleEndian.PutUint16(buf[4:6], deltaUV)
	buf[6] = tid
	return buf
}

// DecodeSet decodes a CTL SET/SET_UNACK payload.
func DecodeSet(payload []byte) (lightness, temperature, deltaUV uint16, tid uint8, err error) {
	if len(payload) < 7 {
		return 0, 0, 0, 0, fmt.Errorf("ctl set payload too short: %d bytes, want 7", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]),
		binary.LittleEndian.Uint16(payload[2:4]),
		binary.LittleEndian.Uint16(payload[4:6]),
		payload[6], nil
}

// DecodeTemperatureRangeSet decodes a LIGHT_CTL_TEMPERATURE_RANGE_SET/
// SET_UNACK payload: u16 range_min; u16 range_max (4 bytes, no status code
// or tid — unlike the Status payload this one carries).
func DecodeTemperatureRangeSet(payload []byte) (rangeMin, rangeMax uint16, err error) {
	if len(payload) < 4 {
		return 0, 0, fmt.Errorf("ctl temperature range set payload too short: %d bytes, want 4", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]), binary.LittleEndian.Uint16(payload[2:4]), nil
}

// decodeState decodes the payload for whichever CTL opcode ctx carries, so
// the same function serves client STATUS decode, server SET decode, and
// TXCM timeout re-decode of a client's own last SET.
func decodeState(ctx model.Ctx, payload []byte) (State, error) {
	switch ctx.Opcode {
	case model.OpLightCtlSet, model.OpLightCtlSetUnack, model.OpLightCtlStatus:
		if ctx.Opcode != model.OpLightCtlStatus {
			lightness, temperature, deltaUV, _, err := DecodeSet(payload)
			if err == nil {
				return State{Lightness: lightness, Temperature: temperature, DeltaUV: deltaUV}, nil
			}
		}
		l, t, serr := DecodeStatus(payload)
		return State{Lightness: l, Temperature: t}, serr
	case model.OpLightCtlTemperatureSet, model.OpLightCtlTemperatureSetUnack, model.OpLightCtlTemperatureStatus:
		temperature, deltaUV, err := DecodeTemperatureStatus(payload)
		return State{Temperature: temperature, DeltaUV: deltaUV}, err
	case model.OpLightCtlDefaultSet, model.OpLightCtlDefaultSetUnack, model.OpLightCtlDefaultStatus:
		lightnessDef, temperatureDef, deltaUVDef, err := DecodeDefaultStatus(payload)
		return State{DefaultLightness: lightnessDef, DefaultTemperature: temperatureDef, DefaultDeltaUV: deltaUVDef}, err
	case model.OpLightCtlTemperatureRangeSet, model.OpLightCtlTemperatureRangeSetUnack:
		rangeMin, rangeMax, err := DecodeTemperatureRangeSet(payload)
		return State{RangeMin: rangeMin, RangeMax: rangeMax}, err
	case model.OpLightCtlTemperatureRangeStatus:
		code, rangeMin, rangeMax, err := DecodeTemperatureRangeStatus(payload)
		return State{RangeCode: code, RangeMin: rangeMin, RangeMax: rangeMax}, err
	default:
		return State{}, fmt.Errorf("ctl: no decoder for opcode %#x", ctx.Opcode)
	}
}

// Client wraps a generic light client registry specialized for Light CTL.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the CTL client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the CTL client model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.LightCtlCli, decodeState, cb)
}

// Set sends an acknowledged CTL SET.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, lightness, temperature, deltaUV uint16, tid uint8) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightCtlSet, dst, netIdx, appIdx, EncodeSet(lightness, temperature, deltaUV, tid))
}

// Get requests the current CTL state from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightCtlGet, dst, netIdx, appIdx, nil)
}

// Server wraps a generic light server registry specialized for Light CTL.
// It handles all eight CTL opcodes named in §6.3.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the CTL server adapter.
func NewServer(reg *model.ServerRegistry[State], ref model.ModelReference, notifyApp func(State)) (*Server, error) {
	s := &Server{reg: reg, ref: ref}
	err := reg.Construct(ref, decodeState, func(in model.ServerInbound[State]) {
		s.handle(in, notifyApp)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) handle(in model.ServerInbound[State], notifyApp func(State)) {
	opcode := in.Ctx.Opcode
	unack := opcode == model.OpLightCtlSetUnack || opcode == model.OpLightCtlTemperatureSetUnack ||
		opcode == model.OpLightCtlDefaultSetUnack || opcode == model.OpLightCtlTemperatureRangeSetUnack

	switch opcode {
	case model.OpLightCtlGet:
		s.sendStatus(in, model.OpLightCtlStatus, EncodeStatus(s.state))
		return
	case model.OpLightCtlSet, model.OpLightCtlSetUnack:
		s.state.Lightness = in.State.Lightness
		s.state.Temperature = in.State.Temperature
		s.state.DeltaUV = in.State.DeltaUV
		s.notifyAndReply(in, unack, notifyApp, model.OpLightCtlStatus, func() []byte { return EncodeStatus(s.state) })
		return
	case model.OpLightCtlTemperatureGet:
		s.sendStatus(in, model.OpLightCtlTemperatureStatus, EncodeTemperatureStatus(s.state))
		return
	case model.OpLightCtlTemperatureSet, model.OpLightCtlTemperatureSetUnack:
		s.state.Temperature = in.State.Temperature
		s.state.DeltaUV = in.State.DeltaUV
		s.notifyAndReply(in, unack, notifyApp, model.OpLightCtlTemperatureStatus, func() []byte { return EncodeTemperatureStatus(s.state) })
		return
	case model.OpLightCtlDefaultGet:
		s.sendStatus(in, model.OpLightCtlDefaultStatus, EncodeDefaultStatus(s.state))
		return
	case model.OpLightCtlDefaultSet, model.OpLightCtlDefaultSetUnack:
		s.state.DefaultLightness = in.State.DefaultLightness
		s.state.DefaultTemperature = in.State.DefaultTemperature
		s.state.DefaultDeltaUV = in.State.DefaultDeltaUV
		s.notifyAndReply(in, unack, notifyApp, model.OpLightCtlDefaultStatus, func() []byte { return EncodeDefaultStatus(s.state) })
		return
	case model.OpLightCtlTemperatureRangeGet:
		s.sendStatus(in, model.OpLightCtlTemperatureRangeStatus, EncodeTemperatureRangeStatus(s.state))
		return
	case model.OpLightCtlTemperatureRangeSet, model.OpLightCtlTemperatureRangeSetUnack:
		s.state.RangeMin = in.State.RangeMin
		s.state.RangeMax = in.State.RangeMax
		s.state.RangeCode = RangeStatusSuccess
		s.notifyAndReply(in, unack, notifyApp, model.OpLightCtlTemperatureRangeStatus, func() []byte { return EncodeTemperatureRangeStatus(s.state) })
		return
	}
}

func (s *Server) notifyAndReply(in model.ServerInbound[State], unack bool, notifyApp func(State), statusOpcode uint32, encode func() []byte) {
	if s.reg.ShouldNotify(in.Ref, in.Ctx) {
		s.reg.NotifyElementStateChange(StateChangeKey, s.state)
		if notifyApp != nil {
			notifyApp(s.state)
		}
	}
	if !unack {
		s.sendStatus(in, statusOpcode, encode())
	}
	if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
		s.reg.PublishStatus(context.Background(), in.Ref, statusOpcode, encode())
	}
}

func (s *Server) sendStatus(in model.ServerInbound[State], opcode uint32, payload []byte) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, opcode, payload)
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
