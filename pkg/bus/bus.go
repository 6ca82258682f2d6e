// Package bus implements the synchronous publish/subscribe dispatcher that
// decouples the transport, TXCM and model layers. Subscribers register for
// a (topic, key) pair; publish invokes every matching callback in
// registration order on the publisher's own goroutine.
package bus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/metrics"
)

// Topic is the coarse message category, mirroring the original firmware's
// CONTROL_TASK_MSG_CODE taxonomy.
type Topic string

const (
	// FromBLE carries decoded access-layer messages arriving off the transport,
	// keyed by model ID.
	FromBLE Topic = "FROM_BLE"
	// ToBLE carries encoded access-layer messages about to be handed to the
	// transport, keyed by model ID.
	ToBLE Topic = "TO_BLE"
	// ElStateCh carries element state-change notifications, keyed by a
	// model-specific state-change code.
	ElStateCh Topic = "EL_STATE_CH"
	// Txcm carries TXCM lifecycle events (currently only timeout), keyed by
	// TxcmEvent.
	Txcm Topic = "TXCM"
)

// TxcmEvent is the EventKey space used under the Txcm topic.
type TxcmEvent uint32

// TxcmMsgTimeout fires when a queued item exhausts its retry budget.
const TxcmMsgTimeout TxcmEvent = 1

// EventKey scopes a subscription within a Topic. For FromBLE/ToBLE this is
// a model ID; for ElStateCh it is a model-defined state-change code; for
// Txcm it is a TxcmEvent.
type EventKey uint32

// Callback handles one published event. A returned error is logged and does
// not prevent subsequent callbacks in the same publish from running.
type Callback func(data any) error

// Handle identifies a single subscription for later removal. Go function
// values are not comparable, so Subscribe hands back a token instead of
// requiring callers to keep the func identity around.
type Handle uint64

type subscription struct {
	handle Handle
	cb     Callback
}

// Bus is the process-wide pub/sub dispatcher. The zero value is not usable;
// construct with New.
type Bus struct {
	log *logger.Logger

	mu   sync.RWMutex
	subs map[Topic]map[EventKey][]subscription
	next Handle

	// pubMu serializes Publish calls within a single topic, matching the
	// guarantee that callbacks for one topic never run concurrently with
	// each other even if publishers run on different goroutines.
	pubMu map[Topic]*sync.Mutex
}

// New constructs an empty Bus.
func New(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Global()
	}
	b := &Bus{
		log:   log,
		subs:  make(map[Topic]map[EventKey][]subscription),
		pubMu: make(map[Topic]*sync.Mutex),
	}
	for _, t := range []Topic{FromBLE, ToBLE, ElStateCh, Txcm} {
		b.pubMu[t] = &sync.Mutex{}
	}
	return b
}

// Subscribe registers cb to run whenever (topic, key) is published, in
// registration order relative to other subscribers of the same key.
func (b *Bus) Subscribe(topic Topic, key EventKey, cb Callback) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	h := b.next

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[EventKey][]subscription)
	}
	b.subs[topic][key] = append(b.subs[topic][key], subscription{handle: h, cb: cb})
	return h
}

// Unsubscribe removes a previously registered subscription. It is a no-op
// if the handle is unknown (already removed, or never valid).
func (b *Bus) Unsubscribe(topic Topic, key EventKey, h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, ok := b.subs[topic]
	if !ok {
		return
	}
	list, ok := keys[key]
	if !ok {
		return
	}
	for i, s := range list {
		if s.handle == h {
			keys[key] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Publish synchronously invokes every subscriber of (topic, key) in
// registration order, on the calling goroutine. Callback panics are
// recovered and logged so one misbehaving subscriber cannot take down the
// publisher; callback errors are logged and do not interrupt the remaining
// subscribers.
func (b *Bus) Publish(topic Topic, key EventKey, data any) {
	metrics.IncBusPublish(string(topic))
	traceID := uuid.NewString()

	mu := b.pubMu[topic]
	if mu == nil {
		// Unregistered topic; still safe to fan out, just uncontended.
		mu = &sync.Mutex{}
	}
	mu.Lock()
	defer mu.Unlock()

	b.mu.RLock()
	var list []subscription
	if keys, ok := b.subs[topic]; ok {
		list = append(list, keys[key]...)
	}
	b.mu.RUnlock()

	for _, s := range list {
		b.invoke(topic, key, traceID, s, data)
	}
}

func (b *Bus) invoke(topic Topic, key EventKey, traceID string, s subscription, data any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("bus subscriber panicked", "topic", topic, "key", key, "trace_id", traceID, "recover", r)
		}
	}()
	if err := s.cb(data); err != nil {
		b.log.Warn("bus subscriber returned error", "topic", topic, "key", key, "trace_id", traceID, "error", err)
	}
}
