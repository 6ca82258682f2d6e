// Package lc adapts the generic light client/server model registries to
// the Light LC (Light Control) model, grounded on meshx_gen_client.c and
// meshx_light_lc_srv.c.
package lc

import (
	"context"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// Mode mirrors the Light LC Mode enumeration.
type Mode uint8

const (
	ModeOff Mode = 0x00
	ModeOn  Mode = 0x01
)

// State is the decoded Light LC state-change union.
type State struct {
	Mode           Mode
	OccupancyMode  Mode
	LightOnOff     uint8
	TargetOnOff    uint8
	RemainingTime  uint8
	HasTarget      bool
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 13

// Client wraps a generic light client registry specialized for Light LC.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the LC client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the LC client model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.LightLcCli, decodeState, cb)
}

// GetMode requests the current LC mode from dst.
func (c *Client) GetMode(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightLcModeGet, dst, netIdx, appIdx, nil)
}

// SetMode requests dst adopt the given LC mode, acknowledged.
func (c *Client) SetMode(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, m Mode) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightLcModeSet, dst, netIdx, appIdx, []byte{byte(m)})
}

// SetLightOnOff requests dst adopt the given light on/off state,
// acknowledged.
func (c *Client) SetLightOnOff(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, onOff uint8, tid uint8) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpLightLcLightOnOffSet, dst, netIdx, appIdx, []byte{onOff, tid})
}

// DecodeModeStatus decodes a LIGHT_LC_MODE_STATUS payload.
func DecodeModeStatus(payload []byte) (Mode, error) {
	if len(payload) < 1 {
		return 0, fmt.Errorf("lc mode status payload too short: %d bytes", len(payload))
	}
	return Mode(payload[0]), nil
}

// EncodeModeStatus encodes a LIGHT_LC_MODE_STATUS payload.
func EncodeModeStatus(m Mode) []byte { return []byte{byte(m)} }

// DecodeLightOnOffStatus decodes a LIGHT_LC_LIGHT_ONOFF_STATUS payload.
func DecodeLightOnOffStatus(payload []byte) (State, error) {
	if len(payload) < 1 {
		return State{}, fmt.Errorf("lc light onoff status payload too short: %d bytes", len(payload))
	}
	s := State{LightOnOff: payload[0]}
	if len(payload) >= 3 {
		s.HasTarget = true
		s.TargetOnOff = payload[1]
		s.RemainingTime = payload[2]
	}
	return s, nil
}

// EncodeLightOnOffStatus encodes a LIGHT_LC_LIGHT_ONOFF_STATUS payload.
func EncodeLightOnOffStatus(s State) []byte {
	if !s.HasTarget {
		return []byte{s.LightOnOff}
	}
	return []byte{s.LightOnOff, s.TargetOnOff, s.RemainingTime}
}

// decodeState decodes the payload for whichever LC opcode ctx carries, so
// the same function serves client STATUS decode, server SET decode, and
// TXCM timeout re-decode of a client's own last SET.
func decodeState(ctx model.Ctx, payload []byte) (State, error) {
	switch ctx.Opcode {
	case model.OpLightLcModeSet, model.OpLightLcModeSetUnack, model.OpLightLcModeStatus:
		m, err := DecodeModeStatus(payload)
		return State{Mode: m}, err
	case model.OpLightLcOMSet, model.OpLightLcOMSetUnack, model.OpLightLcOMStatus:
		m, err := DecodeModeStatus(payload)
		return State{OccupancyMode: m}, err
	case model.OpLightLcLightOnOffSet, model.OpLightLcLightOnOffSetUnack, model.OpLightLcLightOnOffStatus:
		return DecodeLightOnOffStatus(payload)
	default:
		return State{}, fmt.Errorf("lc: no decoder for opcode %#x", ctx.Opcode)
	}
}

// Server wraps a generic light server registry specialized for Light LC.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the LC server adapter.
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
	case model.OpLightLcModeGet:
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLcModeStatus, EncodeModeStatus(s.state.Mode))
		return
	case model.OpLightLcModeSet, model.OpLightLcModeSetUnack:
		s.state.Mode = in.State.Mode
		s.notify(in, notifyApp)
		if in.Ctx.Opcode != model.OpLightLcModeSetUnack {
			s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLcModeStatus, EncodeModeStatus(s.state.Mode))
		}
	case model.OpLightLcOMGet:
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLcOMStatus, EncodeModeStatus(s.state.OccupancyMode))
		return
	case model.OpLightLcOMSet, model.OpLightLcOMSetUnack:
		s.state.OccupancyMode = in.State.OccupancyMode
		s.notify(in, notifyApp)
		if in.Ctx.Opcode != model.OpLightLcOMSetUnack {
			s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLcOMStatus, EncodeModeStatus(s.state.OccupancyMode))
		}
	case model.OpLightLcLightOnOffGet:
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLcLightOnOffStatus, EncodeLightOnOffStatus(s.state))
		return
	case model.OpLightLcLightOnOffSet, model.OpLightLcLightOnOffSetUnack:
		s.state.LightOnOff = in.State.LightOnOff
		s.state.TargetOnOff = in.State.TargetOnOff
		s.state.RemainingTime = in.State.RemainingTime
		s.state.HasTarget = in.State.HasTarget
		s.notify(in, notifyApp)
		if in.Ctx.Opcode != model.OpLightLcLightOnOffSetUnack {
			s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpLightLcLightOnOffStatus, EncodeLightOnOffStatus(s.state))
		}
	}
	if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
		s.reg.PublishStatus(context.Background(), in.Ref, model.OpLightLcLightOnOffStatus, EncodeLightOnOffStatus(s.state))
	}
}

func (s *Server) notify(in model.ServerInbound[State], notifyApp func(State)) {
	if s.reg.ShouldNotify(in.Ref, in.Ctx) {
		s.reg.NotifyElementStateChange(StateChangeKey, s.state)
		if notifyApp != nil {
			notifyApp(s.state)
		}
	}
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
