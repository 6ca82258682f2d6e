package meshnet

import (
	"context"
	"testing"
	"time"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/model"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/transport/simulator"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	f := frame{
		elementIndex: 1,
		modelID:      model.GenOnOffSrv,
		ctx:          model.Ctx{SrcAddr: 2, DstAddr: 1, NetIdx: 0, AppIdx: 0, Opcode: model.OpGenOnOffSet},
		isGet:        false,
		payload:      []byte{1, 7},
	}
	got, err := decodeFrame(encodeFrame(f))
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if got.elementIndex != f.elementIndex || got.modelID != f.modelID || got.ctx != f.ctx || got.isGet != f.isGet {
		t.Fatalf("got %+v, want %+v", got, f)
	}
	if len(got.payload) != 2 || got.payload[0] != 1 || got.payload[1] != 7 {
		t.Fatalf("payload mismatch: %v", got.payload)
	}
}

func TestDecodeFrameRejectsShortHeader(t *testing.T) {
	if _, err := decodeFrame([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short frame")
	}
}

func TestBridgeDispatchesServerFrameToBus(t *testing.T) {
	logger.SetGlobal(logger.New(logger.Config{Level: "error"}))
	b := bus.New(logger.Global())

	sim := simulator.New()
	br := NewBridge(sim, b, 1)

	ref := model.ModelReference{ElementIndex: 1, ModelID: model.GenOnOffSrv, Handle: model.ModelHandle{ElementIndex: 1, ModelID: model.GenOnOffSrv}}
	br.RegisterServerDecoder(ref, func(ctx model.Ctx, ref model.ModelReference, payload []byte) (any, error) {
		st, err := onoff.DecodeStatus(payload)
		if err != nil {
			return nil, err
		}
		return model.ServerInbound[onoff.State]{Ctx: ctx, Ref: ref, State: st}, nil
	})

	received := make(chan model.ServerInbound[onoff.State], 1)
	b.Subscribe(bus.FromBLE, bus.EventKey(model.GenOnOffSrv), func(data any) error {
		received <- data.(model.ServerInbound[onoff.State])
		return nil
	})

	f := frame{
		elementIndex: 1,
		modelID:      model.GenOnOffSrv,
		ctx:          model.Ctx{SrcAddr: 2, DstAddr: 1, Opcode: model.OpGenOnOffSetUnack},
		payload:      []byte{1},
	}
	if err := br.dispatch(encodeFrame(f)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	select {
	case got := <-received:
		if got.State.OnOff != 1 {
			t.Fatalf("got OnOff=%d, want 1", got.State.OnOff)
		}
	case <-time.After(time.Second):
		t.Fatal("server frame was never published to the bus")
	}
}

func TestBridgeSendModelMsgWritesFramedBytesToBearer(t *testing.T) {
	a, sideB := simulator.New(), simulator.New()
	simulator.Pipe(a, sideB)

	b := bus.New(logger.Global())
	br := NewBridge(a, b, 1)

	handle := model.ModelHandle{ElementIndex: 1, ModelID: model.GenOnOffCli}
	if err := br.SendModelMsg(context.Background(), handle, model.OpGenOnOffGet, 2, 0, 0, true, nil); err != nil {
		t.Fatalf("SendModelMsg: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	data, err := sideB.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	f, err := decodeFrame(data)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if f.modelID != model.GenOnOffCli || f.ctx.Opcode != model.OpGenOnOffGet || !f.isGet {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestIsGroupSubscribed(t *testing.T) {
	b := bus.New(logger.Global())
	br := NewBridge(simulator.New(), b, 1)
	handle := model.ModelHandle{ElementIndex: 1, ModelID: model.GenOnOffSrv}

	if br.IsGroupSubscribed(handle, 0xC001) {
		t.Fatal("expected not subscribed before Subscribe")
	}
	br.Subscribe(handle, 0xC001)
	if !br.IsGroupSubscribed(handle, 0xC001) {
		t.Fatal("expected subscribed after Subscribe")
	}
	br.Unsubscribe(handle, 0xC001)
	if br.IsGroupSubscribed(handle, 0xC001) {
		t.Fatal("expected not subscribed after Unsubscribe")
	}
}
