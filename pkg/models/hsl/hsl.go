// Package hsl adapts the generic light client/server model registries to
// the Light HSL model, grounded on meshx_gen_client.c and
// meshx_light_hsl_srv.c.
package hsl

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// State is the decoded Light HSL state-change union.
type State struct {
	Lightness uint16
	Hue       uint16
	Saturation uint16

	DefaultLightness  uint16
	DefaultHue        uint16
	DefaultSaturation uint16

	HueRangeMin uint16
	HueRangeMax uint16
	SatRangeMin uint16
	SatRangeMax uint16
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 11

// Client wraps a generic light client registry specialized for Light HSL.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the HSL client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the HSL client model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.LightHslCli, decodeState, cb)
}

// Get requests the current HSL state from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightHslGet, dst, netIdx, appIdx, nil)
}

// Set requests dst transition to the given HSL state, acknowledged.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, lightness, hue, saturation uint16, tid uint8) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightHslSet, dst, netIdx, appIdx, EncodeSet(lightness, hue, saturation, tid))
}

// EncodeSet encodes a HSL SET/SET_UNACK payload: u16 lightness; u16 hue;
// u16 saturation; u8 tid (7 bytes).
func EncodeSet(lightness, hue, saturation uint16, tid uint8) []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], lightness)
	binary.LittleEndian.PutUint16(buf[2:4], hue)
	binary.LittleEndian.PutUint16(buf[4:6], saturation)
	buf[6] = tid
	return buf
}

// DecodeSet decodes a HSL SET/SET_UNACK payload.
func DecodeSet(payload []byte) (lightness, hue, saturation uint16, tid uint8, err error) {
	if len(payload) < 7 {
		return 0, 0, 0, 0, fmt.Errorf("hsl set payload too short: %d bytes, want 7", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]),
		binary.LittleEndian.Uint16(payload[2:4]),
		binary.LittleEndian.Uint16(payload[4:6]),
		payload[6], nil
}

// EncodeStatus encodes a LIGHT_HSL_STATUS payload: u16 lightness; u16 hue;
// u16 saturation (6 bytes, remaining time omitted).
func EncodeStatus(s State) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint16(buf[0:2], s.Lightness)
	binary.LittleEndian.PutUint16(buf[2:4], s.Hue)
	binary.LittleEndian.PutUint16(buf[4:6], s.Saturation)
	return buf
}

// DecodeStatus decodes a LIGHT_HSL_STATUS payload.
func DecodeStatus(payload []byte) (State, error) {
	if len(payload) < 6 {
		return State{}, fmt.Errorf("hsl status payload too short: %d bytes, want 6", len(payload))
	}
	return State{
		Lightness:  binary.LittleEndian.Uint16(payload[0:2]),
		Hue:        binary.LittleEndian.Uint16(payload[2:4]),
		Saturation: binary.LittleEndian.Uint16(payload[4:6]),
	}, nil
}

// decodeState decodes a HSL SET or STATUS payload. The SET shape is the
// STATUS shape plus a trailing tid byte, so DecodeStatus's minimum-length
// check accepts both.
func decodeState(ctx model.Ctx, payload []byte) (State, error) {
	return DecodeStatus(payload)
}

// Server wraps a generic light server registry specialized for Light HSL.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the HSL server adapter.
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
	switch in.Ctx.Opcode {
	case model.OpLightHslGet:
		s.reply(in)
		return
	case model.OpLightHslSet, model.OpLightHslSetUnack:
		s.state.Lightness = in.State.Lightness
		s.state.Hue = in.State.Hue
		s.state.Saturation = in.State.Saturation
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, s.state)
			if notifyApp != nil {
				notifyApp(s.state)
			}
		}
		if in.Ctx.Opcode != model.OpLightHslSetUnack {
			s.reply(in)
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpLightHslStatus, EncodeStatus(s.state))
		}
	case model.OpLightHslHueGet:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, s.state.Hue)
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightHslHueStatus, buf)
	case model.OpLightHslSatGet:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, s.state.Saturation)
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightHslSatStatus, buf)
	}
}

func (s *Server) reply(in model.ServerInbound[State]) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightHslStatus, EncodeStatus(s.state))
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
