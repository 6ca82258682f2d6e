package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/txcm"
)

// ClientEvent distinguishes a normal inbound delivery from a retry-exhausted
// timeout notification.
type ClientEvent int

const (
	EventOK ClientEvent = iota
	EventTimeout
)

// InboundParam is the decoded payload handed from the transport through the
// bus to a client registry's dispatcher, and on to the application
// callback. S is the per-family state-change union (e.g. the CTL client's
// lightness/temperature/delta_uv/range fields).
type InboundParam[S any] struct {
	Ctx   Ctx
	Model ModelHandle
	Event ClientEvent
	State S
}

// ClientCallback is the application hook invoked once per inbound delivery
// or timeout for a model the caller has constructed.
type ClientCallback[S any] func(InboundParam[S])

// ClientRegistry is the client-variant base model registry (§4.3.1),
// generic over one family's state-change type S.
type ClientRegistry[S any] struct {
	family  string
	allowed map[uint32]struct{}
	class   OpcodeClass

	txcm      *txcm.Txcm
	bus       *bus.Bus
	transport Transport
	log       *logger.Logger

	platInit     func() error
	platInitOnce sync.Once
	platInitErr  error

	mu         sync.Mutex
	callbacks  map[uint32]ClientCallback[S]
	decoders   map[uint32]func(Ctx, []byte) (S, error)
	subHandles map[uint32]bus.Handle
}

// NewClientRegistry constructs a client registry for one model family.
// platInit, if non-nil, is invoked exactly once across the registry's
// lifetime, on the first successful Construct call. The registry
// subscribes to TXCM/TxcmMsgTimeout for its whole lifetime so a retry
// timeout for any of this family's model IDs is re-projected into the
// owning callback, even though the model ID isn't known until Construct.
func NewClientRegistry[S any](family string, allowed map[uint32]struct{}, class OpcodeClass, tx *txcm.Txcm, b *bus.Bus, transport Transport, platInit func() error) *ClientRegistry[S] {
	r := &ClientRegistry[S]{
		family:     family,
		allowed:    allowed,
		class:      class,
		txcm:       tx,
		bus:        b,
		transport:  transport,
		log:        logger.Global(),
		platInit:   platInit,
		callbacks:  make(map[uint32]ClientCallback[S]),
		decoders:   make(map[uint32]func(Ctx, []byte) (S, error)),
		subHandles: make(map[uint32]bus.Handle),
	}
	b.Subscribe(bus.Txcm, bus.EventKey(bus.TxcmMsgTimeout), func(data any) error {
		return r.dispatchTimeout(data)
	})
	return r
}

// Construct validates modelID against the family allow-list, registers cb
// (replacing any prior registration for the same model ID), wires decode
// into the transport so inbound frames for modelID are turned into
// InboundParam[S] before they reach the bus, and subscribes the family
// dispatcher to FROM_BLE/<modelID> on first registration. decode parses a
// STATUS payload (or, for a timed-out SET, the originally-sent payload)
// into S.
func (r *ClientRegistry[S]) Construct(modelID uint32, decode func(Ctx, []byte) (S, error), cb ClientCallback[S]) error {
	if _, ok := r.allowed[modelID]; !ok {
		return fmt.Errorf("%w: model id 0x%04x not valid for %s client", meshxerr.ErrNotSupported, modelID, r.family)
	}
	if cb == nil {
		return fmt.Errorf("%w: nil callback", meshxerr.ErrInvalidArg)
	}

	r.platInitOnce.Do(func() {
		if r.platInit != nil {
			r.platInitErr = r.platInit()
		}
	})
	if r.platInitErr != nil {
		return fmt.Errorf("%w: %v", meshxerr.ErrPlatform, r.platInitErr)
	}

	r.mu.Lock()
	_, existed := r.subHandles[modelID]
	r.callbacks[modelID] = cb
	r.decoders[modelID] = decode
	r.mu.Unlock()

	r.transport.RegisterClientDecoder(modelID, func(ctx Ctx, handle ModelHandle, event ClientEvent, payload []byte) (any, error) {
		state, err := decode(ctx, payload)
		if err != nil {
			return nil, err
		}
		return InboundParam[S]{Ctx: ctx, Model: handle, Event: event, State: state}, nil
	})

	if !existed {
		h := r.bus.Subscribe(bus.FromBLE, bus.EventKey(modelID), func(data any) error {
			p, ok := data.(InboundParam[S])
			if !ok {
				return fmt.Errorf("%w: unexpected FROM_BLE payload type for %s", meshxerr.ErrInvalidArg, r.family)
			}
			return r.dispatch(p)
		})
		r.mu.Lock()
		r.subHandles[modelID] = h
		r.mu.Unlock()
	}
	return nil
}

// Destruct unsubscribes modelID from the bus. The model reference itself is
// never torn down during operation; this only stops further dispatch.
func (r *ClientRegistry[S]) Destruct(modelID uint32) {
	r.mu.Lock()
	h, ok := r.subHandles[modelID]
	delete(r.subHandles, modelID)
	delete(r.callbacks, modelID)
	r.mu.Unlock()
	if ok {
		r.bus.Unsubscribe(bus.FromBLE, bus.EventKey(modelID), h)
	}
}

// dispatch is the family's static base_from_ble_msg_handle (§4.3.1).
func (r *ClientRegistry[S]) dispatch(p InboundParam[S]) error {
	r.mu.Lock()
	cb, ok := r.callbacks[p.Model.ModelID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no callback for model id 0x%04x", meshxerr.ErrNotFound, p.Model.ModelID)
	}

	r.handleAck(p.Ctx.SrcAddr)
	cb(p)
	return nil
}

func (r *ClientRegistry[S]) handleAck(srcAddr uint16) {
	if err := r.txcm.RequestSend(txcm.KindAck, srcAddr, 0, 0, 0, nil, nil); err != nil {
		r.log.Warn("client registry failed to post ack signal", "family", r.family, "src", srcAddr, "error", err)
	}
}

// dispatchTimeout re-projects a TXCM retry-exhaustion event into the owning
// model's app callback with Event=EventTimeout, decoding the originally-sent
// payload into State so the callback observes the last-known value it was
// trying to send (§7). TXCM publishes each TimeoutEvent once and every
// ClientRegistry receives it through its own subscription, so events for
// model IDs this registry doesn't own are silently ignored.
func (r *ClientRegistry[S]) dispatchTimeout(data any) error {
	ev, ok := data.(txcm.TimeoutEvent)
	if !ok {
		return nil
	}

	r.mu.Lock()
	cb, ok := r.callbacks[ev.ModelID]
	decode := r.decoders[ev.ModelID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	var state S
	if decode != nil && len(ev.Payload) > 0 {
		st, err := decode(Ctx{DstAddr: ev.DestAddr, Opcode: ev.Opcode}, ev.Payload)
		if err != nil {
			r.log.Warn("client registry failed to decode timed-out payload", "family", r.family, "model_id", ev.ModelID, "error", err)
		} else {
			state = st
		}
	}

	cb(InboundParam[S]{
		Ctx:   Ctx{DstAddr: ev.DestAddr, Opcode: ev.Opcode},
		Model: ModelHandle{ElementIndex: ev.ElementIndex, ModelID: ev.ModelID},
		Event: EventTimeout,
		State: state,
	})
	return nil
}

// PlatSendMsg implements plat_send_msg (§4.3.1): it classifies opcode and
// routes the already-encoded payload through TXCM as DIRECT_SEND (opcode is
// unacknowledged, or dst is not unicast) or ENQ_SEND (otherwise).
func (r *ClientRegistry[S]) PlatSendMsg(ctx context.Context, handle ModelHandle, opcode uint32, dst, netIdx, appIdx uint16, payload []byte) error {
	isGet := r.class.IsGetReq(opcode)
	isUnack := r.class.IsUnack(opcode)

	sendFn := func(sctx context.Context, pl []byte) error {
		if err := r.transport.SendModelMsg(sctx, handle, opcode, dst, netIdx, appIdx, isGet, pl); err != nil {
			return fmt.Errorf("%w: %v", meshxerr.ErrPlatform, err)
		}
		return nil
	}

	if isUnack || !IsUnicast(dst) {
		return r.txcm.RequestSend(txcm.KindDirectSend, dst, handle.ElementIndex, handle.ModelID, opcode, payload, sendFn)
	}
	return r.txcm.RequestSend(txcm.KindEnqSend, dst, handle.ElementIndex, handle.ModelID, opcode, payload, sendFn)
}
