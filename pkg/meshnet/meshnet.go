package meshnet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/metrics"
	"github.com/meshx-project/meshx/pkg/model"
	"github.com/meshx-project/meshx/pkg/transport"
)

// Bridge implements model.Transport over a byte-oriented transport.Transport
// bearer: it frames outbound SendModelMsg/ServerModelSend calls, and decodes
// inbound bearer bytes back into FROM_BLE bus publishes via per-model
// decoders that concrete model adapters register at construction time.
type Bridge struct {
	bearer      transport.Transport
	bus         *bus.Bus
	log         *logger.Logger
	primaryAddr uint16

	mu             sync.RWMutex
	clientDecoders map[uint32]model.ClientDecodeFunc
	serverDecoders map[uint32]model.ServerDecodeFunc
	elementOf      map[uint32]uint16 // modelID -> elementIndex, for server replies/publishes
	groupSubs      map[uint32]map[uint16]struct{}
}

// NewBridge constructs a Bridge. primaryAddr is the node's primary element
// address, returned from PrimaryElementAddress.
func NewBridge(bearer transport.Transport, b *bus.Bus, primaryAddr uint16) *Bridge {
	return &Bridge{
		bearer:         bearer,
		bus:            b,
		log:            logger.Global(),
		primaryAddr:    primaryAddr,
		clientDecoders: make(map[uint32]model.ClientDecodeFunc),
		serverDecoders: make(map[uint32]model.ServerDecodeFunc),
		elementOf:      make(map[uint32]uint16),
		groupSubs:      make(map[uint32]map[uint16]struct{}),
	}
}

// RegisterClientDecoder wires modelID's inbound STATUS decoding, called once
// per family client adapter at Construct time.
func (br *Bridge) RegisterClientDecoder(modelID uint32, fn model.ClientDecodeFunc) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.clientDecoders[modelID] = fn
}

// RegisterServerDecoder wires ref's inbound GET/SET decoding, called once per
// family server adapter at Construct time.
func (br *Bridge) RegisterServerDecoder(ref model.ModelReference, fn model.ServerDecodeFunc) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.serverDecoders[ref.ModelID] = fn
	br.elementOf[ref.ModelID] = ref.ElementIndex
}

// Subscribe records that handle's model instance has joined group address
// addr, consulted by IsGroupSubscribed.
func (br *Bridge) Subscribe(handle model.ModelHandle, addr uint16) {
	br.mu.Lock()
	defer br.mu.Unlock()
	subs, ok := br.groupSubs[handle.ModelID]
	if !ok {
		subs = make(map[uint16]struct{})
		br.groupSubs[handle.ModelID] = subs
	}
	subs[addr] = struct{}{}
}

// Unsubscribe removes a prior Subscribe.
func (br *Bridge) Unsubscribe(handle model.ModelHandle, addr uint16) {
	br.mu.Lock()
	defer br.mu.Unlock()
	delete(br.groupSubs[handle.ModelID], addr)
}

// IsGroupSubscribed implements model.Transport.
func (br *Bridge) IsGroupSubscribed(handle model.ModelHandle, addr uint16) bool {
	br.mu.RLock()
	defer br.mu.RUnlock()
	_, ok := br.groupSubs[handle.ModelID][addr]
	return ok
}

// PrimaryElementAddress implements model.Transport.
func (br *Bridge) PrimaryElementAddress() uint16 {
	return br.primaryAddr
}

// SendModelMsg implements model.Transport: it frames a client-originated
// request and writes it to the bearer.
func (br *Bridge) SendModelMsg(ctx context.Context, handle model.ModelHandle, opcode uint32, dst, netIdx, appIdx uint16, isGet bool, payload []byte) error {
	f := frame{
		elementIndex: handle.ElementIndex,
		modelID:      handle.ModelID,
		ctx: model.Ctx{
			SrcAddr: br.primaryAddr,
			DstAddr: dst,
			NetIdx:  netIdx,
			AppIdx:  appIdx,
			Opcode:  opcode,
		},
		isGet:   isGet,
		payload: payload,
	}
	_, err := br.bearer.Send(ctx, encodeFrame(f))
	if err != nil {
		metrics.IncFrame(metrics.DirectionOutbound, metrics.StatusFailed)
		return fmt.Errorf("%w: send model msg: %v", meshxerr.ErrPlatform, err)
	}
	metrics.IncFrame(metrics.DirectionOutbound, metrics.StatusSuccess)
	return nil
}

// ServerModelSend implements model.Transport: it frames a server-originated
// STATUS reply or publication using the addressing already resolved in
// msgCtx by the caller (ServerRegistry.SendStatus/PublishStatus).
func (br *Bridge) ServerModelSend(ctx context.Context, handle model.ModelHandle, msgCtx model.Ctx, opcode uint32, payload []byte) error {
	msgCtx.Opcode = opcode
	f := frame{
		elementIndex: handle.ElementIndex,
		modelID:      handle.ModelID,
		ctx:          msgCtx,
		payload:      payload,
	}
	_, err := br.bearer.Send(ctx, encodeFrame(f))
	if err != nil {
		metrics.IncFrame(metrics.DirectionOutbound, metrics.StatusFailed)
		return fmt.Errorf("%w: server model send: %v", meshxerr.ErrPlatform, err)
	}
	metrics.IncFrame(metrics.DirectionOutbound, metrics.StatusSuccess)
	return nil
}

// Run blocks receiving frames off the bearer and publishing each to
// FROM_BLE until ctx is canceled or its deadline passes, and then returns
// nil. Any other receive error is logged and the loop keeps reading (the
// bearer owns reconnect policy, not this loop).
func (br *Bridge) Run(ctx context.Context) error {
	for {
		data, err := br.bearer.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			br.log.Warn("meshnet bridge receive error", "error", err)
			continue
		}
		if err := br.dispatch(data); err != nil {
			metrics.IncFrame(metrics.DirectionInbound, metrics.StatusFailed)
			br.log.Warn("meshnet bridge dispatch error", "error", err)
			continue
		}
		metrics.IncFrame(metrics.DirectionInbound, metrics.StatusSuccess)
	}
}

func (br *Bridge) dispatch(data []byte) error {
	f, err := decodeFrame(data)
	if err != nil {
		return err
	}

	br.mu.RLock()
	clientDecode, isClient := br.clientDecoders[f.modelID]
	serverDecode, isServer := br.serverDecoders[f.modelID]
	elementIndex := br.elementOf[f.modelID]
	br.mu.RUnlock()

	handle := model.ModelHandle{ElementIndex: f.elementIndex, ModelID: f.modelID}

	switch {
	case isClient:
		v, err := clientDecode(f.ctx, handle, model.EventOK, f.payload)
		if err != nil {
			return fmt.Errorf("decode client frame for model 0x%04x: %w", f.modelID, err)
		}
		br.bus.Publish(bus.FromBLE, bus.EventKey(f.modelID), v)
		return nil
	case isServer:
		ref := model.ModelReference{ElementIndex: elementIndex, ModelID: f.modelID, Handle: handle}
		v, err := serverDecode(f.ctx, ref, f.payload)
		if err != nil {
			return fmt.Errorf("decode server frame for model 0x%04x: %w", f.modelID, err)
		}
		br.bus.Publish(bus.FromBLE, bus.EventKey(f.modelID), v)
		return nil
	default:
		return fmt.Errorf("%w: no decoder registered for model id 0x%04x", meshxerr.ErrNotFound, f.modelID)
	}
}
