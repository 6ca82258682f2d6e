// Package onoff adapts the generic client/server model registries to the
// Generic OnOff model, grounded on meshx_gen_client.c and
// meshx_onoff_server.c.
package onoff

import (
	"context"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// State is the decoded Generic OnOff state-change union carried between the
// base registry and the application.
type State struct {
	OnOff          uint8
	TargetOnOff    uint8
	RemainingTime  uint8
	HasTarget      bool
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 1

// Client wraps a generic client registry specialized for Generic OnOff.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the OnOff client adapter over a shared generic
// client registry instance.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the OnOff client model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.GenOnOffCli, decodeState, cb)
}

// decodeState parses a STATUS payload (or, on timeout, the originally-sent
// SET payload, which shares STATUS's prefix) into a State.
func decodeState(ctx model.Ctx, payload []byte) (State, error) { return DecodeStatus(payload) }

// Get requests the current OnOff state from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenOnOffGet, dst, netIdx, appIdx, nil)
}

// Set requests dst transition to onOff, acknowledged.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, onOff uint8, tid uint8) error {
	payload := []byte{onOff, tid}
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenOnOffSet, dst, netIdx, appIdx, payload)
}

// SetUnack requests dst transition to onOff, unacknowledged.
func (c *Client) SetUnack(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, onOff uint8, tid uint8) error {
	payload := []byte{onOff, tid}
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenOnOffSetUnack, dst, netIdx, appIdx, payload)
}

// DecodeStatus decodes a STATUS payload into a State.
func DecodeStatus(payload []byte) (State, error) {
	if len(payload) < 1 {
		return State{}, fmt.Errorf("onoff status payload too short: %d bytes", len(payload))
	}
	s := State{OnOff: payload[0]}
	if len(payload) >= 3 {
		s.HasTarget = true
		s.TargetOnOff = payload[1]
		s.RemainingTime = payload[2]
	}
	return s, nil
}

// EncodeStatus encodes a State into a STATUS payload.
func EncodeStatus(s State) []byte {
	if !s.HasTarget {
		return []byte{s.OnOff}
	}
	return []byte{s.OnOff, s.TargetOnOff, s.RemainingTime}
}

// Server wraps a generic server registry specialized for Generic OnOff.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the OnOff server adapter.
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

// handle implements the per-opcode server policy from §4.3.2: update state,
// conditionally notify the element, conditionally reply with STATUS, and
// publish to the configured publish address when the source differs from
// it.
func (s *Server) handle(in model.ServerInbound[State], notifyApp func(State)) {
	switch in.Ctx.Opcode {
	case model.OpGenOnOffGet:
		s.reply(in)
		return
	case model.OpGenOnOffSet, model.OpGenOnOffSetUnack:
		s.state = in.State
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, s.state)
			if notifyApp != nil {
				notifyApp(s.state)
			}
		}
		sendReply := in.Ctx.Opcode != model.OpGenOnOffSetUnack
		if sendReply {
			s.reply(in)
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpGenOnOffStatus, EncodeStatus(s.state))
		}
	}
}

func (s *Server) reply(in model.ServerInbound[State]) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenOnOffStatus, EncodeStatus(s.state))
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }

// Restore sets the server's state from a persisted blob without triggering
// notifications, mirroring meshx_gen_on_off_srv_state_restore.
func (s *Server) Restore(blob []byte) error {
	st, err := DecodeStatus(blob)
	if err != nil {
		return err
	}
	s.state = st
	return nil
}

// Persist returns the byte blob to hand to the NVS element-context store.
func (s *Server) Persist() []byte { return EncodeStatus(s.state) }
