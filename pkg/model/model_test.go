package model

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/txcm"
)

type fakeTransport struct {
	mu        sync.Mutex
	sent      []sentMsg
	groupSubs map[uint16]bool
}

type sentMsg struct {
	handle ModelHandle
	opcode uint32
	dst    uint16
	isGet  bool
	isServ bool
}

func (f *fakeTransport) SendModelMsg(ctx context.Context, handle ModelHandle, opcode uint32, dst, netIdx, appIdx uint16, isGet bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{handle: handle, opcode: opcode, dst: dst, isGet: isGet})
	return nil
}

func (f *fakeTransport) ServerModelSend(ctx context.Context, handle ModelHandle, msgCtx Ctx, opcode uint32, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{handle: handle, opcode: opcode, dst: msgCtx.DstAddr, isServ: true})
	return nil
}

func (f *fakeTransport) IsGroupSubscribed(handle ModelHandle, addr uint16) bool {
	return f.groupSubs[addr]
}

func (f *fakeTransport) PrimaryElementAddress() uint16 { return 0x0001 }

func (f *fakeTransport) RegisterClientDecoder(modelID uint32, fn ClientDecodeFunc) {}

func (f *fakeTransport) RegisterServerDecoder(ref ModelReference, fn ServerDecodeFunc) {}

const (
	opGet      = 0x8201
	opSet      = 0x8202
	opSetUnack = 0x8203
	opStatus   = 0x8204
	onOffCli   = 0x1001
)

func testClass() OpcodeClass {
	return OpcodeClass{
		Unack:  map[uint32]struct{}{opSetUnack: {}},
		GetReq: map[uint32]struct{}{opGet: {}},
		Status: map[uint32]struct{}{opStatus: {}},
	}
}

type onOffState struct{ On bool }

func decodeOnOffState(Ctx, []byte) (onOffState, error) { return onOffState{}, nil }

func TestClientConstructRejectsUnknownModelID(t *testing.T) {
	b := bus.New(nil)
	tx := txcm.New(b, nil, 10, 3)
	ft := &fakeTransport{}
	reg := NewClientRegistry[onOffState]("generic", map[uint32]struct{}{onOffCli: {}}, testClass(), tx, b, ft, nil)

	err := reg.Construct(0x9999, decodeOnOffState, func(InboundParam[onOffState]) {})
	if !errors.Is(err, meshxerr.ErrNotSupported) {
		t.Fatalf("got %v, want ErrNotSupported", err)
	}
}

func TestClientDispatchInvokesAckThenCallback(t *testing.T) {
	b := bus.New(nil)
	tx := txcm.New(b, nil, 10, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tx.Init(ctx)

	ft := &fakeTransport{}
	reg := NewClientRegistry[onOffState]("generic", map[uint32]struct{}{onOffCli: {}}, testClass(), tx, b, ft, nil)

	called := make(chan InboundParam[onOffState], 1)
	if err := reg.Construct(onOffCli, decodeOnOffState, func(p InboundParam[onOffState]) { called <- p }); err != nil {
		t.Fatalf("Construct: %v", err)
	}

	b.Publish(bus.FromBLE, bus.EventKey(onOffCli), InboundParam[onOffState]{
		Ctx:   Ctx{SrcAddr: 0x0003},
		Model: ModelHandle{ModelID: onOffCli},
		Event: EventOK,
		State: onOffState{On: true},
	})

	select {
	case p := <-called:
		if !p.State.On {
			t.Fatal("callback received wrong state")
		}
	case <-time.After(time.Second):
		t.Fatal("callback was not invoked")
	}
}

func TestClientDirectSendForUnackOpcode(t *testing.T) {
	b := bus.New(nil)
	tx := txcm.New(b, nil, 10, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tx.Init(ctx)

	ft := &fakeTransport{}
	reg := NewClientRegistry[onOffState]("generic", map[uint32]struct{}{onOffCli: {}}, testClass(), tx, b, ft, nil)
	reg.Construct(onOffCli, decodeOnOffState, func(InboundParam[onOffState]) {})

	handle := ModelHandle{ModelID: onOffCli}
	if err := reg.PlatSendMsg(context.Background(), handle, opSetUnack, 0x0003, 0, 0, []byte("x")); err != nil {
		t.Fatalf("PlatSendMsg: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		ft.mu.Lock()
		n := len(ft.sent)
		ft.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if tx.QueueLen() != 0 {
		t.Fatalf("unacked send left %d items queued, want 0", tx.QueueLen())
	}
}

func TestClientEnqSendForAckedUnicast(t *testing.T) {
	b := bus.New(nil)
	tx := txcm.New(b, nil, 10, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tx.Init(ctx)

	ft := &fakeTransport{}
	reg := NewClientRegistry[onOffState]("generic", map[uint32]struct{}{onOffCli: {}}, testClass(), tx, b, ft, nil)
	reg.Construct(onOffCli, decodeOnOffState, func(InboundParam[onOffState]) {})

	handle := ModelHandle{ModelID: onOffCli}
	if err := reg.PlatSendMsg(context.Background(), handle, opSet, 0x0003, 0, 0, []byte("x")); err != nil {
		t.Fatalf("PlatSendMsg: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if item, ok := tx.Peek(); ok && item.MsgState == txcm.StateWaitingAck {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("acked unicast send never reached WAITING_ACK")
}

func TestClientGroupAddressAlwaysDirectSend(t *testing.T) {
	b := bus.New(nil)
	tx := txcm.New(b, nil, 10, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tx.Init(ctx)

	ft := &fakeTransport{}
	reg := NewClientRegistry[onOffState]("generic", map[uint32]struct{}{onOffCli: {}}, testClass(), tx, b, ft, nil)
	reg.Construct(onOffCli, decodeOnOffState, func(InboundParam[onOffState]) {})

	handle := ModelHandle{ModelID: onOffCli}
	// opSet is acked, but dst is a group address, so it must still be
	// DIRECT_SEND (no WAITING_ACK state should ever be observed).
	if err := reg.PlatSendMsg(context.Background(), handle, opSet, 0xC001, 0, 0, []byte("x")); err != nil {
		t.Fatalf("PlatSendMsg: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if tx.QueueLen() != 0 {
		t.Fatalf("group-addressed acked send left %d items queued, want 0", tx.QueueLen())
	}
}

func TestServerShouldNotifyRules(t *testing.T) {
	ft := &fakeTransport{groupSubs: map[uint16]bool{0xC001: true, 0xC002: false}}
	b := bus.New(nil)
	reg := NewServerRegistry[onOffState]("generic", map[uint32]struct{}{0x1000: {}}, testClass(), b, ft, nil)

	ref := ModelReference{ModelID: 0x1000, Handle: ModelHandle{ModelID: 0x1000}}

	if !reg.ShouldNotify(ref, Ctx{DstAddr: 0x0005}) {
		t.Error("unicast should notify")
	}
	if !reg.ShouldNotify(ref, Ctx{DstAddr: 0xC001}) {
		t.Error("subscribed group should notify")
	}
	if reg.ShouldNotify(ref, Ctx{DstAddr: 0xC002}) {
		t.Error("unsubscribed group should not notify")
	}
	if !reg.ShouldNotify(ref, Ctx{DstAddr: 0xFFFF, Opcode: opSet}) {
		t.Error("broadcast SET should notify")
	}
	if reg.ShouldNotify(ref, Ctx{DstAddr: 0xFFFF, Opcode: opGet}) {
		t.Error("broadcast GET should not notify")
	}
}

func TestServerSendStatusRejectsNonStatusOpcode(t *testing.T) {
	ft := &fakeTransport{}
	b := bus.New(nil)
	reg := NewServerRegistry[onOffState]("generic", map[uint32]struct{}{0x1000: {}}, testClass(), b, ft, nil)
	ref := ModelReference{ModelID: 0x1000, Handle: ModelHandle{ModelID: 0x1000}}

	err := reg.SendStatus(context.Background(), ref, Ctx{}, opSet, nil)
	if !errors.Is(err, meshxerr.ErrNotSupported) {
		t.Fatalf("got %v, want ErrNotSupported", err)
	}
}

func TestServerDispatchRoutesToCallback(t *testing.T) {
	ft := &fakeTransport{}
	b := bus.New(nil)
	reg := NewServerRegistry[onOffState]("generic", map[uint32]struct{}{0x1000: {}}, testClass(), b, ft, nil)
	ref := ModelReference{ModelID: 0x1000, PubAddr: 0x0010, Handle: ModelHandle{ModelID: 0x1000}}

	got := make(chan ServerInbound[onOffState], 1)
	if err := reg.Construct(ref, decodeOnOffState, func(p ServerInbound[onOffState]) { got <- p }); err != nil {
		t.Fatalf("Construct: %v", err)
	}

	b.Publish(bus.FromBLE, bus.EventKey(0x1000), ServerInbound[onOffState]{
		Ctx:   Ctx{SrcAddr: 0x0003, DstAddr: 0x0001, Opcode: opSet},
		Ref:   ModelReference{ModelID: 0x1000},
		State: onOffState{On: true},
	})

	select {
	case p := <-got:
		if p.Ref.PubAddr != 0x0010 {
			t.Fatalf("dispatch did not fill in stored ref, got %+v", p.Ref)
		}
	case <-time.After(time.Second):
		t.Fatal("server callback was not invoked")
	}
}
