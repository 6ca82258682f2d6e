// Package model implements the base client/server model registries that
// the original firmware expressed as a CRTP template hierarchy. Here a
// single generic registry type is parameterized by the per-family inbound
// state type, with the opcode classifier and send path supplied as plain
// struct fields instead of virtual methods — no inheritance tree is
// needed.
package model

import "context"

// Ctx is the per-message addressing and opcode context carried with every
// inbound or outbound access-layer message.
type Ctx struct {
	SrcAddr uint16
	DstAddr uint16
	NetIdx  uint16
	AppIdx  uint16
	Opcode  uint32
}

const (
	AddrUnassigned uint16 = 0x0000
	AddrUnicastLo  uint16 = 0x0001
	AddrUnicastHi  uint16 = 0x7FFF
	AddrGroupLo    uint16 = 0xC000
	AddrGroupHi    uint16 = 0xFF00
	AddrBroadcast  uint16 = 0xFFFF
)

// IsUnicast reports whether addr falls in the unicast range.
func IsUnicast(addr uint16) bool {
	return addr >= AddrUnicastLo && addr <= AddrUnicastHi
}

// IsGroup reports whether addr falls in the group range.
func IsGroup(addr uint16) bool {
	return addr >= AddrGroupLo && addr <= AddrGroupHi
}

// IsBroadcast reports whether addr is the all-nodes broadcast address.
func IsBroadcast(addr uint16) bool {
	return addr == AddrBroadcast
}

// ModelHandle opaquely identifies one model instance to the transport. The
// core never interprets its fields beyond addressing a (element, model)
// pair; it is passed back to the transport verbatim.
type ModelHandle struct {
	ElementIndex uint16
	ModelID      uint32
}

// ModelReference is the composed record of one model instance within an
// element, created when the element table is built and never destroyed
// during operation.
type ModelReference struct {
	ElementIndex uint16
	ModelID      uint32
	PubAddr      uint16
	Handle       ModelHandle
}

// OpcodeClass classifies a family's opcodes by static allow-list lookup,
// never by bit pattern.
type OpcodeClass struct {
	// Unack is the set of SET_UNACK-style opcodes that never expect an ACK.
	Unack map[uint32]struct{}
	// GetReq is the set of GET-style opcodes.
	GetReq map[uint32]struct{}
	// Status is the set of valid outbound STATUS opcodes a server may emit.
	Status map[uint32]struct{}
}

// IsUnack reports whether opcode is in the family's unacknowledged set.
func (c OpcodeClass) IsUnack(opcode uint32) bool {
	_, ok := c.Unack[opcode]
	return ok
}

// IsGetReq reports whether opcode is a GET request.
func (c OpcodeClass) IsGetReq(opcode uint32) bool {
	_, ok := c.GetReq[opcode]
	return ok
}

// IsValidStatus reports whether opcode is an allowed outbound STATUS for
// this family.
func (c OpcodeClass) IsValidStatus(opcode uint32) bool {
	_, ok := c.Status[opcode]
	return ok
}

// ClientDecodeFunc turns an inbound frame's raw payload into the family's
// InboundParam[S] union, returned as `any` so the transport can hand it to
// the bus without knowing S.
type ClientDecodeFunc func(ctx Ctx, handle ModelHandle, event ClientEvent, payload []byte) (any, error)

// ServerDecodeFunc turns an inbound frame's raw payload into the family's
// ServerInbound[S] union.
type ServerDecodeFunc func(ctx Ctx, ref ModelReference, payload []byte) (any, error)

// Transport is the SPI the core requires from the underlying mesh stack
// (§6.1). The core never owns access/network-layer concerns: it only
// asks the transport to move an already-encoded payload.
type Transport interface {
	// SendModelMsg dispatches a client-originated message for the given
	// model instance.
	SendModelMsg(ctx context.Context, handle ModelHandle, opcode uint32, dst, netIdx, appIdx uint16, isGet bool, payload []byte) error

	// ServerModelSend dispatches a server-originated reply or publication.
	ServerModelSend(ctx context.Context, handle ModelHandle, msgCtx Ctx, opcode uint32, payload []byte) error

	// IsGroupSubscribed reports whether the model instance is subscribed to
	// the given group address.
	IsGroupSubscribed(handle ModelHandle, addr uint16) bool

	// PrimaryElementAddress returns the node's primary element's unicast
	// address.
	PrimaryElementAddress() uint16

	// RegisterClientDecoder wires modelID's inbound decode function, called
	// once per family client adapter at Construct time so inbound frames for
	// that model reach FROM_BLE as a decoded InboundParam[S].
	RegisterClientDecoder(modelID uint32, fn ClientDecodeFunc)

	// RegisterServerDecoder wires ref's inbound decode function, called once
	// per family server adapter at Construct time.
	RegisterServerDecoder(ref ModelReference, fn ServerDecodeFunc)
}
