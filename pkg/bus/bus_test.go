package bus

import (
	"errors"
	"sync"
	"testing"
)

func TestPublishInvokesInRegistrationOrder(t *testing.T) {
	b := New(nil)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		b.Subscribe(ElStateCh, 1, func(data any) error {
			order = append(order, i)
			return nil
		})
	}

	b.Publish(ElStateCh, 1, "payload")

	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestUnsubscribeRemovesOnlyThatHandle(t *testing.T) {
	b := New(nil)

	var calls int
	h1 := b.Subscribe(FromBLE, 0x1001, func(data any) error { calls++; return nil })
	b.Subscribe(FromBLE, 0x1001, func(data any) error { calls++; return nil })

	b.Unsubscribe(FromBLE, 0x1001, h1)
	b.Publish(FromBLE, 0x1001, nil)

	if calls != 1 {
		t.Fatalf("got %d calls, want 1", calls)
	}
}

func TestPublishIsolatesSubscriberErrorsAndPanics(t *testing.T) {
	b := New(nil)

	var ran bool
	b.Subscribe(Txcm, EventKey(TxcmMsgTimeout), func(data any) error {
		return errors.New("boom")
	})
	b.Subscribe(Txcm, EventKey(TxcmMsgTimeout), func(data any) error {
		panic("also boom")
	})
	b.Subscribe(Txcm, EventKey(TxcmMsgTimeout), func(data any) error {
		ran = true
		return nil
	})

	b.Publish(Txcm, EventKey(TxcmMsgTimeout), nil)

	if !ran {
		t.Fatal("third subscriber did not run after earlier error/panic")
	}
}

func TestDifferentKeysDoNotCrossTalk(t *testing.T) {
	b := New(nil)

	var gotA, gotB bool
	b.Subscribe(ElStateCh, 1, func(data any) error { gotA = true; return nil })
	b.Subscribe(ElStateCh, 2, func(data any) error { gotB = true; return nil })

	b.Publish(ElStateCh, 1, nil)

	if !gotA || gotB {
		t.Fatalf("gotA=%v gotB=%v, want true/false", gotA, gotB)
	}
}

func TestConcurrentPublishSameTopicIsSerialized(t *testing.T) {
	b := New(nil)

	var mu sync.Mutex
	active := 0
	maxActive := 0
	b.Subscribe(FromBLE, 1, func(data any) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish(FromBLE, 1, nil)
		}()
	}
	wg.Wait()

	if maxActive > 1 {
		t.Fatalf("observed %d concurrent invocations within one topic, want 1", maxActive)
	}
}
