// Package rules is the per-element automation layer above the model
// framework: Lua scripts subscribed to EL_STATE_CH react to an element's
// decoded state change and may call back into registered Go send
// functions, grounded on the teacher's gopher-lua rule engine but
// repurposed from a gateway message filter to a state-change hook.
package rules

import (
	"encoding/json"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/meshx-project/meshx/pkg/bus"
)

// Engine runs one Lua script against element state changes published on
// EL_STATE_CH.
type Engine struct {
	mu         sync.Mutex
	l          *lua.LState
	b          *bus.Bus
	subHandles []subHandle
}

type subHandle struct {
	key    bus.EventKey
	handle bus.Handle
}

// New loads scriptPath into a fresh Lua state and subscribes on_state_change
// (if the script defines it) to every key in keys. The script may also
// register native Go callables via RegisterSendFunc before state changes
// start arriving.
func New(scriptPath string, b *bus.Bus, keys []bus.EventKey) (*Engine, error) {
	l := lua.NewState()
	l.OpenLibs()

	if err := l.DoFile(scriptPath); err != nil {
		l.Close()
		return nil, fmt.Errorf("rules: load %s: %w", scriptPath, err)
	}

	e := &Engine{l: l, b: b}
	for _, key := range keys {
		k := key
		h := b.Subscribe(bus.ElStateCh, k, func(data any) error {
			return e.dispatch(k, data)
		})
		e.subHandles = append(e.subHandles, subHandle{key: k, handle: h})
	}
	return e, nil
}

// RegisterSendFunc exposes a native Go function to the script under name, so
// a rule can trigger further model sends (e.g. "switch 0x0003 went ON, set
// light 0x0007 CTL warm"). Call before state changes are expected to fire.
func (e *Engine) RegisterSendFunc(name string, fn lua.LGFunction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.l.SetGlobal(name, e.l.NewFunction(fn))
}

// dispatch calls the script's on_state_change(key, json) hook, if defined,
// with the state JSON-marshaled since the state union's concrete type
// varies per family and Lua has no use for Go struct tags.
func (e *Engine) dispatch(key bus.EventKey, data any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.l.GetGlobal("on_state_change")
	if fn.Type() != lua.LTFunction {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("rules: marshal state for key %d: %w", key, err)
	}

	e.l.Push(fn)
	e.l.Push(lua.LNumber(key))
	e.l.Push(lua.LString(payload))
	if err := e.l.PCall(2, 0, nil); err != nil {
		return fmt.Errorf("rules: on_state_change(%d): %w", key, err)
	}
	return nil
}

// Close unsubscribes from every key and closes the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.subHandles {
		e.b.Unsubscribe(bus.ElStateCh, s.key, s.handle)
	}
	e.l.Close()
	return nil
}
