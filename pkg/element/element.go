// Package element holds the node's element composition table, grounded on
// board.c's element/model wiring in the original firmware.
package element

import (
	"fmt"

	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/model"
)

// Descriptor describes one addressable element and the models it hosts.
type Descriptor struct {
	Index  uint16
	Models []model.ModelReference
}

// Table is the node's immutable-after-Start element composition table.
type Table struct {
	elements []Descriptor
	started  bool
}

// NewTable constructs an element table from descriptors. The table is
// mutable via Add until Freeze is called.
func NewTable(descriptors ...Descriptor) *Table {
	t := &Table{elements: append([]Descriptor(nil), descriptors...)}
	return t
}

// Add appends an element descriptor. It returns ErrInvalidState once the
// table has been frozen, mirroring "Model Reference ... destroyed never
// during operation" — composition is a construction-time-only concern.
func (t *Table) Add(d Descriptor) error {
	if t.started {
		return fmt.Errorf("%w: element table frozen after Start", meshxerr.ErrInvalidState)
	}
	t.elements = append(t.elements, d)
	return nil
}

// Freeze locks the table against further composition, called by
// node.Node.Start.
func (t *Table) Freeze() { t.started = true }

// Elements returns the full composition table.
func (t *Table) Elements() []Descriptor {
	return t.elements
}

// ByIndex looks up one element by its index.
func (t *Table) ByIndex(index uint16) (Descriptor, bool) {
	for _, e := range t.elements {
		if e.Index == index {
			return e, true
		}
	}
	return Descriptor{}, false
}

// ModelByID looks up a model reference within elementIndex by model ID.
func (t *Table) ModelByID(elementIndex uint16, modelID uint32) (model.ModelReference, bool) {
	e, ok := t.ByIndex(elementIndex)
	if !ok {
		return model.ModelReference{}, false
	}
	for _, m := range e.Models {
		if m.ModelID == modelID {
			return m, true
		}
	}
	return model.ModelReference{}, false
}

// PrimaryAddress returns the Index of the first element in the table, in
// composition order, used as the node's primary unicast address, or
// model.AddrUnassigned if the table is empty.
func (t *Table) PrimaryAddress() uint16 {
	if len(t.elements) == 0 {
		return model.AddrUnassigned
	}
	return t.elements[0].Index
}
