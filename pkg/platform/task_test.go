package platform

import (
	"context"
	"testing"
	"time"
)

func TestTaskStartRunsFunction(t *testing.T) {
	ran := make(chan struct{})
	tk := NewTask("t1", func(ctx context.Context) { close(ran) })
	tk.Start(context.Background())

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task function never ran")
	}
}

func TestTaskStopCancelsContext(t *testing.T) {
	canceled := make(chan struct{})
	tk := NewTask("t2", func(ctx context.Context) {
		<-ctx.Done()
		close(canceled)
	})
	tk.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	tk.Stop()

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("task context was never canceled")
	}
	if tk.Started() {
		t.Fatal("Started() should report false after Stop")
	}
}

func TestTaskStartTwiceIsNoOp(t *testing.T) {
	runs := make(chan struct{}, 2)
	block := make(chan struct{})
	tk := NewTask("t3", func(ctx context.Context) {
		runs <- struct{}{}
		<-block
	})
	tk.Start(context.Background())
	tk.Start(context.Background())
	close(block)
	tk.Stop()

	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
}

func TestTaskStopBeforeStartIsNoOp(t *testing.T) {
	tk := NewTask("t4", func(ctx context.Context) {})
	tk.Stop()
}
