// Package power adapts the generic client/server model registries to the
// Generic Power OnOff and Generic Power Level models, grounded on
// meshx_gen_client.c and meshx_gen_power_level_srv.c. The two families
// share a registry instance here because their state changes are always
// reported together in the original firmware's power-up coalescing.
package power

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// OnPowerUp mirrors the Generic On Power Up enumeration.
type OnPowerUp uint8

const (
	OnPowerUpOff     OnPowerUp = 0x00
	OnPowerUpDefault OnPowerUp = 0x01
	OnPowerUpRestore OnPowerUp = 0x02
)

// State is the decoded Generic Power state-change union.
type State struct {
	OnPowerUp OnPowerUp

	PowerLevel       uint16
	TargetPowerLevel uint16
	RemainingTime    uint8
	HasTarget        bool

	LastPowerLevel    uint16
	DefaultPowerLevel uint16
	RangeMin          uint16
	RangeMax          uint16
	RangeStatusCode   uint8
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 3

// Client wraps a generic client registry specialized for the Power
// families.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the Power client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// RegisterPowerOnOff subscribes the application callback for the Generic
// Power OnOff client model.
func (c *Client) RegisterPowerOnOff(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.GenPowerOnOffCli, decodeState, cb)
}

// RegisterPowerLevel subscribes the application callback for the Generic
// Power Level client model.
func (c *Client) RegisterPowerLevel(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.GenPowerLevelCli, decodeState, cb)
}

// GetOnPowerUp requests the current on-power-up behaviour from dst.
func (c *Client) GetOnPowerUp(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenOnPowerUpGet, dst, netIdx, appIdx, nil)
}

// SetOnPowerUp requests dst adopt the given on-power-up behaviour,
// acknowledged.
func (c *Client) SetOnPowerUp(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, v OnPowerUp) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenOnPowerUpSet, dst, netIdx, appIdx, []byte{byte(v)})
}

// GetPowerLevel requests the current power level from dst.
func (c *Client) GetPowerLevel(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenPowerLevelGet, dst, netIdx, appIdx, nil)
}

// SetPowerLevel requests dst transition to the given power level,
// acknowledged.
func (c *Client) SetPowerLevel(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, level uint16, tid uint8) error {
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf[0:2], level)
	buf[2] = tid
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenPowerLevelSet, dst, netIdx, appIdx, buf)
}

// DecodeOnPowerUpStatus decodes a Generic On Power Up Status payload.
func DecodeOnPowerUpStatus(payload []byte) (OnPowerUp, error) {
	if len(payload) < 1 {
		return 0, fmt.Errorf("on power up status payload too short: %d bytes", len(payload))
	}
	return OnPowerUp(payload[0]), nil
}

// EncodeOnPowerUpStatus encodes a Generic On Power Up Status payload.
func EncodeOnPowerUpStatus(v OnPowerUp) []byte { return []byte{byte(v)} }

// DecodePowerLevelStatus decodes a Generic Power Level Status payload.
func DecodePowerLevelStatus(payload []byte) (State, error) {
	if len(payload) < 2 {
		return State{}, fmt.Errorf("power level status payload too short: %d bytes", len(payload))
	}
	s := State{PowerLevel: binary.LittleEndian.Uint16(payload[0:2])}
	if len(payload) >= 5 {
		s.HasTarget = true
		s.TargetPowerLevel = binary.LittleEndian.Uint16(payload[2:4])
		s.RemainingTime = payload[4]
	}
	return s, nil
}

// EncodePowerLevelStatus encodes a Generic Power Level Status payload.
func EncodePowerLevelStatus(s State) []byte {
	buf := make([]byte, 2, 5)
	binary.LittleEndian.PutUint16(buf[0:2], s.PowerLevel)
	if !s.HasTarget {
		return buf
	}
	buf = append(buf, 0, 0, s.RemainingTime)
	binary.LittleEndian.PutUint16(buf[2:4], s.TargetPowerLevel)
	return buf
}

// decodeState decodes the payload for whichever Power opcode ctx carries,
// so the same function serves client STATUS decode, server SET decode, and
// TXCM timeout re-decode of a client's own last SET.
func decodeState(ctx model.Ctx, payload []byte) (State, error) {
	switch ctx.Opcode {
	case model.OpGenOnPowerUpSet, model.OpGenOnPowerUpSetUnack, model.OpGenOnPowerUpStatus:
		v, err := DecodeOnPowerUpStatus(payload)
		return State{OnPowerUp: v}, err
	case model.OpGenPowerLevelSet, model.OpGenPowerLevelSetUnack, model.OpGenPowerLevelStatus:
		return DecodePowerLevelStatus(payload)
	default:
		return State{}, fmt.Errorf("power: no decoder for opcode %#x", ctx.Opcode)
	}
}

// Server wraps a generic server registry specialized for the Power
// families.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the Power server adapter.
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
	case model.OpGenOnPowerUpGet:
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenOnPowerUpStatus, EncodeOnPowerUpStatus(s.state.OnPowerUp))
		return
	case model.OpGenOnPowerUpSet, model.OpGenOnPowerUpSetUnack:
		s.state.OnPowerUp = in.State.OnPowerUp
		s.notify(in, notifyApp)
		if in.Ctx.Opcode != model.OpGenOnPowerUpSetUnack {
			s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenOnPowerUpStatus, EncodeOnPowerUpStatus(s.state.OnPowerUp))
		}
	case model.OpGenPowerLevelGet:
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenPowerLevelStatus, EncodePowerLevelStatus(s.state))
		return
	case model.OpGenPowerLevelSet, model.OpGenPowerLevelSetUnack:
		s.state.PowerLevel = in.State.PowerLevel
		s.state.TargetPowerLevel = in.State.TargetPowerLevel
		s.state.RemainingTime = in.State.RemainingTime
		s.state.HasTarget = in.State.HasTarget
		s.notify(in, notifyApp)
		if in.Ctx.Opcode != model.OpGenPowerLevelSetUnack {
			s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenPowerLevelStatus, EncodePowerLevelStatus(s.state))
		}
	}
	if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
		s.reg.PublishStatus(context.Background(), in.Ref, model.OpGenPowerLevelStatus, EncodePowerLevelStatus(s.state))
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
