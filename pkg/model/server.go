package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/meshxerr"
)

// ServerInbound is the decoded payload a server dispatcher hands to the
// registered application callback. S is the per-family SET-state type.
type ServerInbound[S any] struct {
	Ctx   Ctx
	Ref   ModelReference
	State S
}

// ServerCallback decides, per §4.3.2, whether to notify the owning element,
// send a STATUS reply, and/or publish to the model's configured publish
// address. The registry only supplies dispatch and send plumbing; the
// per-opcode policy lives in the concrete model adapter that provides this
// callback.
type ServerCallback[S any] func(ServerInbound[S])

// ServerRegistry is the server-variant base model registry (§4.3.2),
// generic over one family's SET-state type S.
type ServerRegistry[S any] struct {
	family  string
	allowed map[uint32]struct{}
	class   OpcodeClass

	bus       *bus.Bus
	transport Transport
	log       *logger.Logger

	platInit     func() error
	platInitOnce sync.Once
	platInitErr  error

	mu         sync.Mutex
	callbacks  map[uint32]ServerCallback[S]
	refs       map[uint32]ModelReference
	subHandles map[uint32]bus.Handle
}

// NewServerRegistry constructs a server registry for one model family.
func NewServerRegistry[S any](family string, allowed map[uint32]struct{}, class OpcodeClass, b *bus.Bus, transport Transport, platInit func() error) *ServerRegistry[S] {
	return &ServerRegistry[S]{
		family:     family,
		allowed:    allowed,
		class:      class,
		bus:        b,
		transport:  transport,
		log:        logger.Global(),
		platInit:   platInit,
		callbacks:  make(map[uint32]ServerCallback[S]),
		refs:       make(map[uint32]ModelReference),
		subHandles: make(map[uint32]bus.Handle),
	}
}

// Construct validates ref.ModelID against the family allow-list, stores the
// reference and callback (re-registration replaces), wires decode into the
// transport so inbound GET/SET frames for ref.ModelID are turned into
// ServerInbound[S] before they reach the bus, and subscribes on first
// registration. decode is skipped for an empty payload (a GET that carries
// no parameters), which dispatches with a zero-value State.
func (r *ServerRegistry[S]) Construct(ref ModelReference, decode func(Ctx, []byte) (S, error), cb ServerCallback[S]) error {
	if _, ok := r.allowed[ref.ModelID]; !ok {
		return fmt.Errorf("%w: model id 0x%04x not valid for %s server", meshxerr.ErrNotSupported, ref.ModelID, r.family)
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
	_, existed := r.subHandles[ref.ModelID]
	r.callbacks[ref.ModelID] = cb
	r.refs[ref.ModelID] = ref
	r.mu.Unlock()

	r.transport.RegisterServerDecoder(ref, func(ctx Ctx, decRef ModelReference, payload []byte) (any, error) {
		var state S
		if len(payload) > 0 {
			st, err := decode(ctx, payload)
			if err != nil {
				return nil, err
			}
			state = st
		}
		return ServerInbound[S]{Ctx: ctx, Ref: decRef, State: state}, nil
	})

	if !existed {
		h := r.bus.Subscribe(bus.FromBLE, bus.EventKey(ref.ModelID), func(data any) error {
			p, ok := data.(ServerInbound[S])
			if !ok {
				return fmt.Errorf("%w: unexpected FROM_BLE payload type for %s", meshxerr.ErrInvalidArg, r.family)
			}
			return r.dispatch(p)
		})
		r.mu.Lock()
		r.subHandles[ref.ModelID] = h
		r.mu.Unlock()
	}
	return nil
}

// Destruct unsubscribes modelID from the bus.
func (r *ServerRegistry[S]) Destruct(modelID uint32) {
	r.mu.Lock()
	h, ok := r.subHandles[modelID]
	delete(r.subHandles, modelID)
	delete(r.callbacks, modelID)
	delete(r.refs, modelID)
	r.mu.Unlock()
	if ok {
		r.bus.Unsubscribe(bus.FromBLE, bus.EventKey(modelID), h)
	}
}

func (r *ServerRegistry[S]) dispatch(p ServerInbound[S]) error {
	r.mu.Lock()
	cb, ok := r.callbacks[p.Ref.ModelID]
	ref := r.refs[p.Ref.ModelID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no callback for model id 0x%04x", meshxerr.ErrNotFound, p.Ref.ModelID)
	}
	p.Ref = ref
	cb(p)
	return nil
}

// NotifyElementStateChange publishes a decoded state change for application
// consumption (EL_STATE_CH/<key>).
func (r *ServerRegistry[S]) NotifyElementStateChange(key bus.EventKey, data any) {
	r.bus.Publish(bus.ElStateCh, key, data)
}

// ShouldNotify implements the addressing rule in §4.3.2: unicast or
// subscribed-group destinations always notify; broadcast notifies only when
// the opcode is a qualifying SET (never a GET).
func (r *ServerRegistry[S]) ShouldNotify(ref ModelReference, ctx Ctx) bool {
	switch {
	case IsUnicast(ctx.DstAddr):
		return true
	case IsGroup(ctx.DstAddr):
		return r.transport.IsGroupSubscribed(ref.Handle, ctx.DstAddr)
	case IsBroadcast(ctx.DstAddr):
		return !r.class.IsGetReq(ctx.Opcode)
	default:
		return false
	}
}

// SendStatus implements plat_send_msg for the server side: validates
// opcode against the family's STATUS allow-list, then hands the payload to
// the transport addressed back to ctx.SrcAddr.
func (r *ServerRegistry[S]) SendStatus(ctx context.Context, ref ModelReference, msgCtx Ctx, opcode uint32, payload []byte) error {
	if !r.class.IsValidStatus(opcode) {
		return fmt.Errorf("%w: opcode 0x%04x not a valid %s status", meshxerr.ErrNotSupported, opcode, r.family)
	}
	reply := Ctx{SrcAddr: msgCtx.DstAddr, DstAddr: msgCtx.SrcAddr, NetIdx: msgCtx.NetIdx, AppIdx: msgCtx.AppIdx, Opcode: opcode}
	if err := r.transport.ServerModelSend(ctx, ref.Handle, reply, opcode, payload); err != nil {
		return fmt.Errorf("%w: %v", meshxerr.ErrPlatform, err)
	}
	return nil
}

// PublishStatus implements the publish-on-behalf-of-publisher path: it sends
// a STATUS to ref.PubAddr, used when the inbound source differs from the
// model's configured publish address.
func (r *ServerRegistry[S]) PublishStatus(ctx context.Context, ref ModelReference, opcode uint32, payload []byte) error {
	if ref.PubAddr == AddrUnassigned {
		return nil
	}
	if !r.class.IsValidStatus(opcode) {
		return fmt.Errorf("%w: opcode 0x%04x not a valid %s status", meshxerr.ErrNotSupported, opcode, r.family)
	}
	pubCtx := Ctx{SrcAddr: r.transport.PrimaryElementAddress(), DstAddr: ref.PubAddr, Opcode: opcode}
	if err := r.transport.ServerModelSend(ctx, ref.Handle, pubCtx, opcode, payload); err != nil {
		return fmt.Errorf("%w: %v", meshxerr.ErrPlatform, err)
	}
	return nil
}
