// Package replcmd implements the unit-test command adapter: a single
// `ut <module_id> <cmd_id> <argc> [args...]` entry point dispatching to
// handlers registered per module, grounded on unit_test.c/unit_test.h.
// The core only registers module 3 (TXCM) and module 4 (NVS); any other
// module id is ErrNotFound.
package replcmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/meshx-project/meshx/pkg/meshxerr"
)

// Module ids the core registers commands under.
const (
	ModuleTxcm ModuleID = 3
	ModuleNvs  ModuleID = 4
)

// ModuleID identifies a registered command module.
type ModuleID int

// CmdID identifies a command within a module.
type CmdID int

// HandlerFunc runs one command with its raw string args, returning output
// text for the REPL/CLI to print. A returned error is translated to a
// negative status code by Dispatch per the error taxonomy.
type HandlerFunc func(ctx context.Context, args []string) (string, error)

// Registry maps (module, cmd) pairs to handlers.
type Registry struct {
	modules map[ModuleID]map[CmdID]HandlerFunc
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[ModuleID]map[CmdID]HandlerFunc)}
}

// Register wires cmd under module, overwriting any prior registration.
func (r *Registry) Register(module ModuleID, cmd CmdID, fn HandlerFunc) {
	cmds, ok := r.modules[module]
	if !ok {
		cmds = make(map[CmdID]HandlerFunc)
		r.modules[module] = cmds
	}
	cmds[cmd] = fn
}

// Result is the outcome of one Dispatch call: Code 0 on success, negative
// on error, mirroring the original's ut command return convention.
type Result struct {
	Code   int
	Output string
}

// Dispatch runs the handler registered for (moduleID, cmdID) against argv,
// validating argc matches len(argv) the way the original `ut` command's
// caller-supplied argc guards against a malformed invocation.
func (r *Registry) Dispatch(ctx context.Context, moduleID, cmdID, argc int, argv []string) Result {
	if argc != len(argv) {
		return errResult(meshxerr.ErrInvalidArg, "argc does not match supplied argument count")
	}

	cmds, ok := r.modules[ModuleID(moduleID)]
	if !ok {
		return errResult(meshxerr.ErrNotFound, fmt.Sprintf("module %d not registered", moduleID))
	}
	fn, ok := cmds[CmdID(cmdID)]
	if !ok {
		return errResult(meshxerr.ErrNotFound, fmt.Sprintf("module %d has no cmd %d", moduleID, cmdID))
	}

	out, err := fn(ctx, argv)
	if err != nil {
		return errResult(err, err.Error())
	}
	return Result{Code: 0, Output: out}
}

func errResult(err error, msg string) Result {
	return Result{Code: statusCode(err), Output: msg}
}

// statusCode maps a sentinel error to a negative status code, matching the
// original's `0 on success, negative on invalid-arg/not-found/module error`
// convention.
func statusCode(err error) int {
	switch {
	case errors.Is(err, meshxerr.ErrInvalidArg):
		return -1
	case errors.Is(err, meshxerr.ErrNoMem):
		return -2
	case errors.Is(err, meshxerr.ErrInvalidState):
		return -3
	case errors.Is(err, meshxerr.ErrNotFound):
		return -4
	case errors.Is(err, meshxerr.ErrNotSupported):
		return -5
	case errors.Is(err, meshxerr.ErrTimeout):
		return -6
	case errors.Is(err, meshxerr.ErrPlatform):
		return -7
	default:
		return -8
	}
}

// ParseArgc parses a decimal argc argument, for CLI/REPL front-ends.
func ParseArgc(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: argc %q is not an integer", meshxerr.ErrInvalidArg, s)
	}
	return n, nil
}
