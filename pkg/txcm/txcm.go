// Package txcm implements the Transmit Control Module: a single-worker
// reliable-send state machine sitting in front of a mesh transport. It owns
// a bounded circular queue, retries each head item up to MaxRetry times,
// correlates ACKs by destination address, and de-duplicates identical
// in-flight sends.
package txcm

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/metrics"
)

// DefaultQueueLen is the default bounded queue capacity.
const DefaultQueueLen = 10

// DefaultMaxRetry is the default per-item retry budget.
const DefaultMaxRetry = 3

// MaxPayloadLen bounds a single item's payload, mirroring the firmware's
// fixed-size transmit buffer.
const MaxPayloadLen = 64

// MsgState is the lifecycle state of a single queued item.
type MsgState int

const (
	StateNew MsgState = iota
	StateSending
	StateWaitingAck
	StateAcked
	StateNack
)

func (s MsgState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSending:
		return "SENDING"
	case StateWaitingAck:
		return "WAITING_ACK"
	case StateAcked:
		return "ACK"
	case StateNack:
		return "NACK"
	default:
		return "UNKNOWN"
	}
}

// MsgType distinguishes messages that expect an acknowledgement from ones
// that do not.
type MsgType int

const (
	Acked MsgType = iota
	Unacked
)

// SendFunc is the transport-facing send callback carried by an Item. It is
// invoked with the item's payload and must return an error (wrapped with
// meshxerr.ErrPlatform) on transport failure.
type SendFunc func(ctx context.Context, payload []byte) error

// Item is one outbound request, queued or in flight.
type Item struct {
	DestAddr     uint16
	ElementIndex uint16
	ModelID      uint32
	Opcode       uint32
	RetryCount   int
	MsgState     MsgState
	MsgType      MsgType
	SendFn       SendFunc
	Payload      []byte
}

// TimeoutEvent is published on bus.Txcm/TxcmMsgTimeout when a queued item
// exhausts its retry budget. It carries the model identity and original
// payload of the item that timed out, so the owning family's client
// registry can attribute the timeout and decode the last-known state it
// was trying to send.
type TimeoutEvent struct {
	ElementIndex uint16
	ModelID      uint32
	Opcode       uint32
	DestAddr     uint16
	Payload      []byte
}

// signalKind identifies what the worker loop should do with a posted signal.
type signalKind int

const (
	sigEnqSend signalKind = iota
	sigDirectSend
	sigResend
	sigAck
)

type signal struct {
	kind    signalKind
	item    Item
	ackAddr uint16
}

// Txcm is the reliable-send worker. Construct with New, start the worker
// with Init, and submit work with RequestSend.
type Txcm struct {
	log *logger.Logger
	bus *bus.Bus

	maxRetry int
	qLen     int

	sigCh chan signal
	once  sync.Once

	mu    sync.Mutex
	queue []Item
}

// New constructs a Txcm with the given queue capacity and retry budget.
// Pass 0 for either to take the package defaults.
func New(b *bus.Bus, log *logger.Logger, queueLen, maxRetry int) *Txcm {
	if queueLen <= 0 {
		queueLen = DefaultQueueLen
	}
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetry
	}
	if log == nil {
		log = logger.Global()
	}
	return &Txcm{
		log:      log,
		bus:      b,
		maxRetry: maxRetry,
		qLen:     queueLen,
		sigCh:    make(chan signal, queueLen+1),
	}
}

// Init starts the worker goroutine. It is idempotent; subsequent calls are
// no-ops, replacing the original's magic-sentinel double-init guard.
func (t *Txcm) Init(ctx context.Context) {
	t.once.Do(func() {
		go t.run(ctx)
	})
}

// RequestSend posts a signal to the worker. It returns ErrNoMem only if the
// signal channel itself is full (backpressure at the submission boundary);
// the bounded transmit queue is enforced inside the worker. elementIndex,
// modelID and opcode identify the model instance and access-layer opcode
// the payload was encoded for; they are stamped onto the queued Item so a
// later retry-exhaustion can publish a TimeoutEvent carrying that identity.
// Only KindEnqSend and KindDirectSend use them — pass zero values for
// KindAck and KindResend.
func (t *Txcm) RequestSend(kind signalKindPublic, destAddr uint16, elementIndex uint16, modelID uint32, opcode uint32, payload []byte, sendFn SendFunc) error {
	if kind == KindEnqSend || kind == KindDirectSend {
		if sendFn == nil {
			return fmt.Errorf("%w: send_fn is nil", meshxerr.ErrInvalidArg)
		}
		if len(payload) > MaxPayloadLen {
			return fmt.Errorf("%w: payload exceeds %d bytes", meshxerr.ErrInvalidArg, MaxPayloadLen)
		}
	}

	cp := append([]byte(nil), payload...)
	s := signal{item: Item{DestAddr: destAddr, ElementIndex: elementIndex, ModelID: modelID, Opcode: opcode, Payload: cp, SendFn: sendFn}, ackAddr: destAddr}
	switch kind {
	case KindEnqSend:
		s.kind = sigEnqSend
		s.item.MsgType = Acked
	case KindDirectSend:
		s.kind = sigDirectSend
		s.item.MsgType = Unacked
	case KindResend:
		s.kind = sigResend
	case KindAck:
		s.kind = sigAck
	default:
		return fmt.Errorf("%w: unknown signal kind", meshxerr.ErrInvalidArg)
	}

	select {
	case t.sigCh <- s:
		return nil
	default:
		return meshxerr.ErrNoMem
	}
}

// signalKindPublic is the public signal-kind enum accepted by RequestSend.
type signalKindPublic int

const (
	KindEnqSend signalKindPublic = iota
	KindDirectSend
	KindResend
	KindAck
)

func (t *Txcm) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-t.sigCh:
			t.handle(ctx, s)
		}
	}
}

func (t *Txcm) handle(ctx context.Context, s signal) {
	switch s.kind {
	case sigEnqSend:
		t.handleEnqOrDirect(ctx, s.item)
	case sigDirectSend:
		t.handleEnqOrDirect(ctx, s.item)
	case sigResend:
		t.handleResend(ctx)
	case sigAck:
		t.handleAck(ctx, s.ackAddr)
	}
}

func (t *Txcm) handleEnqOrDirect(ctx context.Context, item Item) {
	t.mu.Lock()
	for _, q := range t.queue {
		if q.DestAddr == item.DestAddr && bytes.Equal(q.Payload, item.Payload) {
			t.mu.Unlock()
			return // dedup: already queued, no-op success
		}
	}
	if len(t.queue) >= t.qLen {
		t.mu.Unlock()
		t.log.Warn("txcm queue full, dropping enqueue", "dest", item.DestAddr)
		return
	}
	item.MsgState = StateNew
	// maxRetry+1 total attempts are offered to the transport before a NACK:
	// the initial send plus up to maxRetry resends, so maxRetry counts
	// resends rather than total attempts.
	item.RetryCount = t.maxRetry + 1
	t.queue = append(t.queue, item)
	t.mu.Unlock()

	metrics.IncTxcmRetry("enq_send")
	t.frontTrySend(ctx, false)
}

func (t *Txcm) handleResend(ctx context.Context) {
	metrics.IncTxcmRetry("resend")
	t.frontTrySend(ctx, true)
}

func (t *Txcm) handleAck(ctx context.Context, ackAddr uint16) {
	t.mu.Lock()
	if len(t.queue) == 0 {
		t.mu.Unlock()
		return
	}
	head := t.queue[0]
	if head.DestAddr == ackAddr {
		t.queue = t.queue[1:]
	} else {
		t.log.Warn("txcm ack address mismatch, dropping", "head_dest", head.DestAddr, "ack_addr", ackAddr)
	}
	t.mu.Unlock()

	t.frontTrySend(ctx, false)
}

// frontTrySend implements the algorithm in §4.2: it returns true if the
// attempt resulted in a timeout (retries exhausted).
func (t *Txcm) frontTrySend(ctx context.Context, resend bool) bool {
	t.mu.Lock()
	if len(t.queue) == 0 {
		t.mu.Unlock()
		return false
	}
	if !resend && t.queue[0].MsgState != StateNew {
		t.mu.Unlock()
		return false
	}

	item := t.queue[0]
	t.queue = t.queue[1:]

	item.RetryCount--
	if item.RetryCount < 0 {
		item.MsgState = StateNack
		t.mu.Unlock()

		metrics.IncTxcmTimeout()
		t.bus.Publish(bus.Txcm, bus.EventKey(bus.TxcmMsgTimeout), TimeoutEvent{
			ElementIndex: item.ElementIndex,
			ModelID:      item.ModelID,
			Opcode:       item.Opcode,
			DestAddr:     item.DestAddr,
			Payload:      item.Payload,
		})
		t.frontTrySend(ctx, false)
		return true
	}

	item.MsgState = StateSending
	t.mu.Unlock()

	err := item.SendFn(ctx, item.Payload)
	if err != nil {
		t.log.Warn("txcm send failed", "dest", item.DestAddr, "error", err)
		t.mu.Lock()
		item.MsgState = StateNack
		t.mu.Unlock()
		return false
	}

	if item.MsgType == Acked {
		item.MsgState = StateWaitingAck
		t.mu.Lock()
		t.queue = append([]Item{item}, t.queue...)
		t.mu.Unlock()
	}
	// Unacked items are discarded after a successful send.

	return false
}

// QueueLen returns the current number of items in the transmit queue
// (test/diagnostic use).
func (t *Txcm) QueueLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Peek returns a copy of the head item without removing it. ok is false if
// the queue is empty — an explicit optional, not an overloaded error, per
// the decision to separate "expected empty" from real failures.
func (t *Txcm) Peek() (item Item, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return Item{}, false
	}
	return t.queue[0], true
}
