// Package platform provides idiomatic Go replacements for the RTOS timer
// and task primitives the original firmware drives through
// meshx_rtos_timer.h, meshx_task.h, and FreeRTOS_meshx_utils.c. A real
// semaphore wrapper is deliberately not included: Go's sync.Mutex and
// chan struct{} already cover the two suspension points named for TXCM and
// the control task, so a wrapper package would add nothing but call sites
// read the way the original platform-abstraction layer's do.
package platform

import (
	"sync"
	"time"
)

// Timer is a named, cancelable one-shot or periodic timer, replacing
// os_timer_create/os_timer_restart/os_timer_delete.
type Timer struct {
	name     string
	period   time.Duration
	periodic bool
	fn       func()

	mu    sync.Mutex
	timer *time.Timer
	stop  chan struct{}
}

// NewTimer constructs a Timer named name that invokes fn after period.
// When periodic is true the timer re-arms itself after every fire,
// matching the original's MESHX_NVS_RELOAD_ONE_SHOT=false stability timer;
// when false it fires once, matching a one-shot retry/ack timer.
func NewTimer(name string, period time.Duration, periodic bool, fn func()) *Timer {
	return &Timer{name: name, period: period, periodic: periodic, fn: fn}
}

// Name returns the timer's name, for logging call sites.
func (t *Timer) Name() string { return t.name }

// Start arms the timer. Calling Start on an already-running timer first
// stops it, matching os_timer_restart's re-arm semantics.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	stop := make(chan struct{})
	t.stop = stop
	t.timer = time.AfterFunc(t.period, func() { t.fire(stop) })
}

// Restart re-arms the timer from now, discarding any pending fire. This is
// the direct analogue of os_timer_restart, used by the NVS stability timer
// to debounce bursts of writes into a single commit.
func (t *Timer) Restart() { t.Start() }

// Stop cancels the timer. Safe to call on a timer that was never started
// or already fired.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) fire(stop chan struct{}) {
	select {
	case <-stop:
		return
	default:
	}
	t.fn()

	if !t.periodic {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != stop {
		return
	}
	t.timer = time.AfterFunc(t.period, func() { t.fire(stop) })
}
