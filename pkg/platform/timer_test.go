package platform

import (
	"testing"
	"time"
)

func TestTimerOneShotFiresOnce(t *testing.T) {
	fired := make(chan struct{}, 10)
	tm := NewTimer("t1", 10*time.Millisecond, false, func() { fired <- struct{}{} })
	tm.Start()
	defer tm.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("one-shot timer never fired")
	}

	select {
	case <-fired:
		t.Fatal("one-shot timer fired a second time")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimerPeriodicFiresMultipleTimes(t *testing.T) {
	fired := make(chan struct{}, 10)
	tm := NewTimer("t2", 10*time.Millisecond, true, func() { fired <- struct{}{} })
	tm.Start()
	defer tm.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("periodic timer only fired %d times", i)
		}
	}
}

func TestTimerStopPreventsFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	tm := NewTimer("t3", 20*time.Millisecond, false, func() { fired <- struct{}{} })
	tm.Start()
	tm.Stop()

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestTimerRestartDebouncesBursts(t *testing.T) {
	fired := make(chan struct{}, 10)
	tm := NewTimer("t4", 30*time.Millisecond, false, func() { fired <- struct{}{} })
	tm.Start()
	time.Sleep(10 * time.Millisecond)
	tm.Restart()
	time.Sleep(10 * time.Millisecond)
	tm.Restart()

	select {
	case <-fired:
		t.Fatal("debounced timer fired before the final restart's deadline")
	case <-time.After(15 * time.Millisecond):
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debounced timer never fired")
	}
}
