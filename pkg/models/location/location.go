// Package location adapts the generic client/server model registries to
// the Generic Location model (global fields only), grounded on
// meshx_gen_client.c and meshx_gen_location_srv.c.
package location

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// State is the decoded Generic Location Global state.
type State struct {
	Latitude  int32
	Longitude int32
	Altitude  int16
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 4

// Client wraps a generic client registry specialized for Generic Location.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the Location client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the Location client
// model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.GenLocationCli, decodeState, cb)
}

// decodeState parses a STATUS payload (or, on timeout, the originally-sent
// SET payload, which is bit-identical) into a State.
func decodeState(ctx model.Ctx, payload []byte) (State, error) { return DecodeStatus(payload) }

// Get requests the current global location from dst.
func (c *Client) Get(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenLocGlobalGet, dst, netIdx, appIdx, nil)
}

// Set requests dst adopt the given global location, acknowledged.
func (c *Client) Set(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, s State) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenLocGlobalSet, dst, netIdx, appIdx, EncodeStatus(s))
}

// DecodeStatus decodes a Generic Location Global Status payload: i32
// latitude; i32 longitude; i16 altitude (10 bytes).
func DecodeStatus(payload []byte) (State, error) {
	if len(payload) < 10 {
		return State{}, fmt.Errorf("location status payload too short: %d bytes, want 10", len(payload))
	}
	return State{
		Latitude:  int32(binary.LittleEndian.Uint32(payload[0:4])),
		Longitude: int32(binary.LittleEndian.Uint32(payload[4:8])),
		Altitude:  int16(binary.LittleEndian.Uint16(payload[8:10])),
	}, nil
}

// EncodeStatus encodes a Generic Location Global Status payload.
func EncodeStatus(s State) []byte {
	buf := make([]byte, 10)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(s.Latitude))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(s.Longitude))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(s.Altitude))
	return buf
}

// Server wraps a generic server registry specialized for Generic Location.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	state State
}

// NewServer constructs and registers the Location server adapter.
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
	case model.OpGenLocGlobalGet:
		s.reply(in)
		return
	case model.OpGenLocGlobalSet, model.OpGenLocGlobalSetUnack:
		s.state = in.State
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, s.state)
			if notifyApp != nil {
				notifyApp(s.state)
			}
		}
		if in.Ctx.Opcode != model.OpGenLocGlobalSetUnack {
			s.reply(in)
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpGenLocGlobalStatus, EncodeStatus(s.state))
		}
	}
}

func (s *Server) reply(in model.ServerInbound[State]) {
	s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenLocGlobalStatus, EncodeStatus(s.state))
}

// State exposes the server's current state (used by NVS restore/save).
func (s *Server) State() State { return s.state }
