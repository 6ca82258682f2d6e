// Package meshxerr defines the sentinel error taxonomy shared by every
// MeshX subsystem, wrapped with context via fmt.Errorf and checked with
// errors.Is at call sites.
package meshxerr

import "errors"

var (
	// ErrInvalidArg indicates a caller passed a malformed or out-of-range argument.
	ErrInvalidArg = errors.New("meshx: invalid argument")

	// ErrNoMem indicates an allocation or bounded-queue capacity was exhausted.
	ErrNoMem = errors.New("meshx: no memory")

	// ErrInvalidState indicates an operation was attempted on an uninitialized
	// or already-torn-down component.
	ErrInvalidState = errors.New("meshx: invalid state")

	// ErrNotFound indicates a lookup (model, element, subscription) failed.
	ErrNotFound = errors.New("meshx: not found")

	// ErrNotSupported indicates a model ID or opcode is outside the family's
	// allow-list.
	ErrNotSupported = errors.New("meshx: not supported")

	// ErrTimeout indicates a TXCM item exhausted its retry budget without an ACK.
	ErrTimeout = errors.New("meshx: timeout")

	// ErrPlatform indicates the underlying transport or storage layer failed.
	ErrPlatform = errors.New("meshx: platform error")
)
