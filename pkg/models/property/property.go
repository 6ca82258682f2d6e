// Package property adapts the generic client/server model registries to
// the Generic User Property and Generic Admin Property models, grounded
// on meshx_gen_client.c and meshx_gen_property_srv.c.
package property

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/model"
)

// Access mirrors the Generic User Access enumeration.
type Access uint8

const (
	AccessProhibited Access = 0x00
	AccessRead       Access = 0x01
	AccessWrite      Access = 0x02
	AccessReadWrite  Access = 0x03
)

// State is one property's id/access/value triple.
type State struct {
	PropertyID uint16
	Access     Access
	Value      []byte
}

// StateChangeKey is the EL_STATE_CH event key this adapter publishes.
const StateChangeKey bus.EventKey = 5

// Client wraps a generic client registry specialized for the Property
// families.
type Client struct {
	reg *model.ClientRegistry[State]
}

// NewClient constructs the Property client adapter.
func NewClient(reg *model.ClientRegistry[State]) *Client {
	return &Client{reg: reg}
}

// Register subscribes the application callback for the Property client
// model.
func (c *Client) Register(cb func(model.InboundParam[State])) error {
	return c.reg.Construct(model.GenPropCli, decodeState, cb)
}

// GetUser requests the named user property from dst.
func (c *Client) GetUser(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx, propertyID uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, propertyID)
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenUserPropGet, dst, netIdx, appIdx, buf)
}

// SetUser requests dst adopt the given user property value, acknowledged.
func (c *Client) SetUser(ctx context.Context, handle model.ModelHandle, dst, netIdx, appIdx uint16, s State) error {
	return c.reg.PlatSendMsg(ctx, handle, model.OpGenUserPropSet, dst, netIdx, appIdx, EncodeUserStatus(s))
}

// DecodeUserStatus decodes a Generic User Property Status payload: u16
// property id; u8 access; N bytes value.
func DecodeUserStatus(payload []byte) (State, error) {
	if len(payload) < 3 {
		return State{}, fmt.Errorf("user property status payload too short: %d bytes", len(payload))
	}
	s := State{
		PropertyID: binary.LittleEndian.Uint16(payload[0:2]),
		Access:     Access(payload[2]),
	}
	if len(payload) > 3 {
		s.Value = append([]byte(nil), payload[3:]...)
	}
	return s, nil
}

// EncodeUserStatus encodes a Generic User Property Status payload.
func EncodeUserStatus(s State) []byte {
	buf := make([]byte, 3+len(s.Value))
	binary.LittleEndian.PutUint16(buf[0:2], s.PropertyID)
	buf[2] = byte(s.Access)
	copy(buf[3:], s.Value)
	return buf
}

// decodeState decodes the payload for whichever Property opcode ctx
// carries. Get opcodes carry a bare 2-byte property id rather than the
// 3+N-byte id/access/value triple Set and Status use.
func decodeState(ctx model.Ctx, payload []byte) (State, error) {
	switch ctx.Opcode {
	case model.OpGenUserPropGet, model.OpGenAdminPropGet:
		if len(payload) < 2 {
			return State{}, fmt.Errorf("property get payload too short: %d bytes, want 2", len(payload))
		}
		return State{PropertyID: binary.LittleEndian.Uint16(payload[0:2])}, nil
	default:
		return DecodeUserStatus(payload)
	}
}

// Server wraps a generic server registry specialized for the Property
// families.
type Server struct {
	reg   *model.ServerRegistry[State]
	ref   model.ModelReference
	props map[uint16]State
}

// NewServer constructs and registers the Property server adapter.
func NewServer(reg *model.ServerRegistry[State], ref model.ModelReference, notifyApp func(State)) (*Server, error) {
	s := &Server{reg: reg, ref: ref, props: make(map[uint16]State)}
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
	case model.OpGenUserPropGet, model.OpGenAdminPropGet:
		p := s.props[in.State.PropertyID]
		s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenUserPropStatus, EncodeUserStatus(p))
		return
	case model.OpGenUserPropSet, model.OpGenUserPropSetUnack, model.OpGenAdminPropSet, model.OpGenAdminPropSetUnack:
		if s.props[in.State.PropertyID].Access == AccessRead {
			return
		}
		s.props[in.State.PropertyID] = in.State
		if s.reg.ShouldNotify(in.Ref, in.Ctx) {
			s.reg.NotifyElementStateChange(StateChangeKey, in.State)
			if notifyApp != nil {
				notifyApp(in.State)
			}
		}
		unack := in.Ctx.Opcode == model.OpGenUserPropSetUnack || in.Ctx.Opcode == model.OpGenAdminPropSetUnack
		if !unack {
			s.reg.SendStatus(context.Background(), in.Ref, in.Ctx, model.OpGenUserPropStatus, EncodeUserStatus(in.State))
		}
		if in.Ref.PubAddr != model.AddrUnassigned && in.Ctx.SrcAddr != in.Ref.PubAddr {
			s.reg.PublishStatus(context.Background(), in.Ref, model.OpGenUserPropStatus, EncodeUserStatus(in.State))
		}
	}
}

// Properties exposes the server's current property table (used by NVS
// restore/save).
func (s *Server) Properties() map[uint16]State { return s.props }
