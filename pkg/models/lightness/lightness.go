// Package lightness adapts the generic light client/server model
// registries to the Light Lightness model, grounded on meshx_gen_client.c
// and meshx_light_lightness_srv.c.
package lightness

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// State is the decoded Light Lightness state-change union.
type State struct {
	Lightness       uint16
	TargetLightness uint16
	RemainingTime   uint8
	HasTarget       bool

	DefaultLightness uint16
	RangeMin         uint16
	RangeMax         uint16
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 9

// Client wraps a generic light client registry specialized for Light
// Lightness.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the Lightness client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the Lightness client
// model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.LightLightnessCli, decodeState, cb)
}

// decodeState parses a STATUS payload (or, on timeout, the originally-sent
// SET payload, which shares STATUS's prefix) into a State.
func decodeState(ctx model.Ctx, payload []byte) (State, error) { return DecodeStatus(payload) }

// Get requests the current lightness from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightLightnessGet, dst, netIdx, appIdx, nil)
}

// Set requests dst transition to the given lightness, acknowledged.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, lightness uint16, tid uint8) error {
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf[0:2], lightness)
	buf[2] = tid
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightLightnessSet, dst, netIdx, appIdx, buf)
}

// DecodeStatus decodes a LIGHT_LIGHTNESS_STATUS payload.
func DecodeStatus(payload []byte) (State, error) {
	if len(payload) < 2 {
		return State{}, fmt.Errorf("lightness status payload too short: %d bytes", len(payload))
	}
	s := State{Lightness: binary.LittleEndian.Uint16(payload[0:2])}
	if len(payload) >= 5 {
		s.HasTarget = true
		s.TargetLightness = binary.LittleEndian.Uint16(payload[2:4])
		s.RemainingTime = payload[4]
	}
	return s, nil
}

// EncodeStatus encodes a LIGHT_LIGHTNESS_STATUS payload.
func EncodeStatus(s State) []byte {
	buf := make([]byte, 2, 5)
	binary.LittleEndian.PutUint16(buf[0:2], s.Lightness)
	if !s.HasTarget {
		return buf
	}
	buf = append(buf, 0, 0, s.RemainingTime)
	binary.LittleEndian.PutUint16(buf[2:4], s.TargetLightness)
	return buf
}

// EncodeRangeStatus encodes a LIGHT_LIGHTNESS_RANGE_STATUS payload: u8
// status_code; u16 range_min; u16 range_max.
func EncodeRangeStatus(statusCode uint8, s State) []byte {
	buf := make([]byte, 5)
	buf[0] = statusCode
	binary.LittleEndian.PutUint16(buf[1:3], s.RangeMin)
	binary.LittleEndian.PutUint16(buf[3:5], s.RangeMax)
	return buf
}

// Server wraps a generic light server registry specialized for Light
// Lightness.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the Lightness server adapter.
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
	case model.OpLightLightnessGet:
		s.reply(in)
		return
	case model.OpLightLightnessSet, model.OpLightLightnessSetUnack:
		s.state.Lightness = in.State.Lightness
		s.state.TargetLightness = in.State.TargetLightness
		s.state.RemainingTime = in.State.RemainingTime
		s.state.HasTarget = in.State.HasTarget
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, s.state)
			if notifyApp != nil {
				notifyApp(s.state)
			}
		}
		if in.Ctx.Opcode != model.OpLightLightnessSetUnack {
			s.reply(in)
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpLightLightnessStatus, EncodeStatus(s.state))
		}
	case model.OpLightLightnessRangeGet:
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLightnessRangeStatus, EncodeRangeStatus(0x00, s.state))
	}
}

func (s *Server) reply(in model.ServerInbound[State]) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLightnessStatus, EncodeStatus(s.state))
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
