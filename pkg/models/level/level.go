// Package level adapts the generic client/server model registries to the
// Generic Level model, grounded on meshx_gen_client.c and
// meshx_gen_level_srv.c.
package level

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// State is the decoded Generic Level state-change union.
type State struct {
	Level         int16
	TargetLevel   int16
	RemainingTime uint8
	HasTarget     bool
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 2

// Client wraps a generic client registry specialized for Generic Level.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the Level client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the Level client model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.GenLevelCli, decodeState, cb)
}

// decodeState parses a STATUS payload (or, on timeout, the originally-sent
// SET payload, which shares STATUS's prefix) into a State.
func decodeState(ctx model.Ctx, payload []byte) (State, error) { return DecodeStatus(payload) }

// Get requests the current level from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenLevelGet, dst, netIdx, appIdx, nil)
}

// Set requests dst transition to the given level, acknowledged.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, level int16, tid uint8) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenLevelSet, dst, netIdx, appIdx, encodeSet(level, tid))
}

// SetUnack requests dst transition to the given level, unacknowledged.
func (c *Client) SetUnack(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, level int16, tid uint8) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenLevelSetUnack, dst, netIdx, appIdx, encodeSet(level, tid))
}

func encodeSet(level int16, tid uint8) []byte {
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(level))
	buf[2] = tid
	return buf
}

// DecodeStatus decodes a STATUS payload into a State.
func DecodeStatus(payload []byte) (State, error) {
	if len(payload) < 2 {
		return State{}, fmt.Errorf("level status payload too short: %d bytes", len(payload))
	}
	s := State{Level: int16(binary.LittleEndian.Uint16(payload[0:2]))}
	if len(payload) >= 5 {
		s.HasTarget = true
		s.TargetLevel = int16(binary.LittleEndian.Uint16(payload[2:4]))
		s.RemainingTime = payload[4]
	}
	return s, nil
}

// EncodeStatus encodes a State into a STATUS payload.
func EncodeStatus(s State) []byte {
	buf := make([]byte, 2, 5)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(s.Level))
	if !s.HasTarget {
		return buf
	}
	buf = append(buf, 0, 0, s.RemainingTime)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(s.TargetLevel))
	return buf
}

// Server wraps a generic server registry specialized for Generic Level.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the Level server adapter.
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
	case model.OpGenLevelGet:
		s.reply(in)
		return
	case model.OpGenLevelSet, model.OpGenLevelSetUnack, model.OpGenDeltaSet, model.OpGenDeltaSetUnack, model.OpGenMoveSet, model.OpGenMoveSetUnack:
		s.state = in.State
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, s.state)
			if notifyApp != nil {
				notifyApp(s.state)
			}
		}
		unack := in.Ctx.Opcode == model.OpGenLevelSetUnack || in.Ctx.Opcode == model.OpGenDeltaSetUnack || in.Ctx.Opcode == model.OpGenMoveSetUnack
		if !unack {
			s.reply(in)
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpGenLevelStatus, EncodeStatus(s.state))
		}
	}
}

func (s *Server) reply(in model.ServerInbound[State]) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenLevelStatus, EncodeStatus(s.state))
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
