package replcmd

import (
	"context"
	"strings"
	"testing"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/nvs"
	"github.com/meshx-project/meshx/pkg/txcm"
)

func TestDispatchUnregisteredModuleReturnsNotFound(t *testing.T) {
	r := NewRegistry()
	res := r.Dispatch(context.Background(), 99, 0, 0, nil)
	if res.Code != -4 {
		t.Fatalf("code = %d, want -4 (ErrNotFound)", res.Code)
	}
}

func TestDispatchArgcMismatchReturnsInvalidArg(t *testing.T) {
	r := NewRegistry()
	r.Register(ModuleTxcm, TxcmCmdQueueLen, func(ctx context.Context, args []string) (string, error) {
		return "ok", nil
	})
	res := r.Dispatch(context.Background(), int(ModuleTxcm), int(TxcmCmdQueueLen), 2, []string{"only-one"})
	if res.Code != -1 {
		t.Fatalf("code = %d, want -1 (ErrInvalidArg)", res.Code)
	}
}

func TestTxcmModuleEnqSend(t *testing.T) {
	b := bus.New(logger.Global())
	tx := txcm.New(b, logger.Global(), 0, 0)
	tx.Init(context.Background())

	r := NewRegistry()
	RegisterTxcm(r, tx)

	res := r.Dispatch(context.Background(), int(ModuleTxcm), int(TxcmCmdEnqSend), 2, []string{"0x0003", "aabb"})
	if res.Code != 0 {
		t.Fatalf("enq_send code = %d, output = %s", res.Code, res.Output)
	}
}

func TestNvsModuleProductInfoRoundTrip(t *testing.T) {
	store, err := nvs.Open(":memory:", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.SetProductInfo(0x1111, 0x2222); err != nil {
		t.Fatalf("set product info: %v", err)
	}

	r := NewRegistry()
	RegisterNvs(r, store)

	res := r.Dispatch(context.Background(), int(ModuleNvs), int(NvsCmdProductInfo), 0, nil)
	if res.Code != 0 {
		t.Fatalf("code = %d, output = %s", res.Code, res.Output)
	}
	if !strings.Contains(res.Output, "0x1111") || !strings.Contains(res.Output, "0x2222") {
		t.Fatalf("output = %q, want cid/pid", res.Output)
	}
}

func TestREPLRunsOneLineAndReportsResult(t *testing.T) {
	store, err := nvs.Open(":memory:", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := NewRegistry()
	RegisterNvs(r, store)

	in := strings.NewReader("ut 4 0 0\n")
	var out strings.Builder
	if err := REPL(context.Background(), r, in, &out); err != nil {
		t.Fatalf("repl: %v", err)
	}
	if !strings.HasPrefix(out.String(), "0 cid=") {
		t.Fatalf("output = %q", out.String())
	}
}
