// Package simulator provides an in-memory transport.Transport used by
// pkg/meshnet and pkg/node tests and as the "simulator" bearer of
// `cmd/meshx serve`,
// grounded on the teacher's Transport interface shape but with a direct
// call-through instead of real radio I/O.
package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/meshx-project/meshx/pkg/transport"
)

// Transport is a loopback-style in-memory transport.Transport. Two
// instances can be wired together with Pipe so that one side's Send
// arrives on the other's Receive, or a single instance can be used alone,
// in which case Send only counts toward Statistics.
type Transport struct {
	mu           sync.Mutex
	connected    bool
	peer         *Transport
	inbox        chan []byte
	eventHandler transport.EventHandler
	stats        transport.Statistics
}

// New constructs a disconnected simulator transport.
func New() *Transport {
	return &Transport{inbox: make(chan []byte, 64)}
}

// Pipe wires a and b so each one's Send delivers to the other's Receive.
func Pipe(a, b *Transport) {
	a.peer = b
	b.peer = a
}

func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = true
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	return nil
}

func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Send delivers data to the wired peer's inbox (if any) and always counts
// toward Statistics, letting a test use a single unpaired Transport purely
// to capture what was sent.
func (t *Transport) Send(ctx context.Context, data []byte) (int, error) {
	t.mu.Lock()
	t.stats.BytesSent += uint64(len(data))
	t.stats.MessagesSent++
	peer := t.peer
	t.mu.Unlock()

	if peer != nil {
		peer.deliver(data)
	}
	return len(data), nil
}

func (t *Transport) deliver(data []byte) {
	t.mu.Lock()
	t.stats.BytesReceived += uint64(len(data))
	t.stats.MessagesReceived++
	handler := t.eventHandler
	t.mu.Unlock()

	select {
	case t.inbox <- data:
	default:
	}
	if handler != nil {
		handler.OnEvent(transport.Event{Type: transport.EventDataReceived, Transport: t, Data: data, Timestamp: time.Time{}})
	}
}

func (t *Transport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case data := <-t.inbox:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transport) Configure(config transport.Config) error { return nil }

func (t *Transport) Info() transport.Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := transport.StateDisconnected
	if t.connected {
		state = transport.StateConnected
	}
	return transport.Info{ID: "simulator", Type: "simulator", State: state, Statistics: t.stats}
}

func (t *Transport) SetEventHandler(handler transport.EventHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eventHandler = handler
}
