// Package xyl adapts the generic light client/server model registries to
// the Light xyL model, grounded on meshx_gen_client.c and
// meshx_light_xyl_srv.c.
package xyl

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// State is the decoded Light xyL state-change union.
type State struct {
	Lightness uint16
	X         uint16
	Y         uint16

	DefaultLightness uint16
	DefaultX         uint16
	DefaultY         uint16

	XRangeMin uint16
	XRangeMax uint16
	YRangeMin uint16
	YRangeMax uint16
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 12

// Client wraps a generic light client registry specialized for Light xyL.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the xyL client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the xyL client model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.LightXylCli, decodeState, cb)
}

// Get requests the current xyL state from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightXylGet, dst, netIdx, appIdx, nil)
}

// Set requests dst transition to the given xyL state, acknowledged.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, lightness, x, y uint16, tid uint8) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightXylSet, dst, netIdx, appIdx, EncodeSet(lightness, x, y, tid))
}

// EncodeSet encodes a xyL SET/SET_UNACK payload: u16 lightness; u16 x; u16
// y; u8 tid (7 bytes).
func EncodeSet(lightness, x, y uint16, tid uint8) []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf[0:2], lightness)
	binary.LittleEndian.PutUint16(buf[2:4], x)
	binary.LittleEndian.PutUint16(buf[4:6], y)
	buf[6] = tid
	return buf
}

// DecodeSet decodes a xyL SET/SET_UNACK payload.
func DecodeSet(payload []byte) (lightness, x, y uint16, tid uint8, err error) {
	if len(payload) < 7 {
		return 0, 0, 0, 0, fmt.Errorf("xyl set payload too short: %d bytes, want 7", len(payload))
	}
	return binary.LittleEndian.Uint16(payload[0:2]),
		binary.LittleEndian.Uint16(payload[2:4]),
		binary.LittleEndian.Uint16(payload[4:6]),
		payload[6], nil
}

// EncodeStatus encodes a LIGHT_XYL_STATUS payload: u16 lightness; u16 x;
// u16 y (6 bytes, remaining time omitted).
func EncodeStatus(s State) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint16(buf[0:2], s.Lightness)
	binary.LittleEndian.PutUint16(buf[2:4], s.X)
	binary.LittleEndian.PutUint16(buf[4:6], s.Y)
	return buf
}

// DecodeStatus decodes a LIGHT_XYL_STATUS payload.
func DecodeStatus(payload []byte) (State, error) {
	if len(payload) < 6 {
		return State{}, fmt.Errorf("xyl status payload too short: %d bytes, want 6", len(payload))
	}
	return State{
		Lightness: binary.LittleEndian.Uint16(payload[0:2]),
		X:         binary.LittleEndian.Uint16(payload[2:4]),
		Y:         binary.LittleEndian.Uint16(payload[4:6]),
	}, nil
}

// decodeState decodes a xyL SET or STATUS payload. The SET shape is the
// STATUS shape plus a trailing tid byte, so DecodeStatus's minimum-length
// check accepts both.
func decodeState(ctx model.Ctx, payload []byte) (State, error) {
	return DecodeStatus(payload)
}

// Server wraps a generic light server registry specialized for Light xyL.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the xyL server adapter.
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
	case model.OpLightXylGet:
		s.reply(in)
		return
	case model.OpLightXylSet, model.OpLightXylSetUnack:
		s.state.Lightness = in.State.Lightness
		s.state.X = in.State.X
		s.state.Y = in.State.Y
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, s.state)
			if notifyApp != nil {
				notifyApp(s.state)
			}
		}
		if in.Ctx.Opcode != model.OpLightXylSetUnack {
			s.reply(in)
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpLightXylStatus, EncodeStatus(s.state))
		}
	}
}

func (s *Server) reply(in model.ServerInbound[State]) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightXylStatus, EncodeStatus(s.state))
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
