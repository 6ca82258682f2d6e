package element

import (
	"errors"
	"testing"

	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/model"
)

func TestAddAndLookup(t *testing.T) {
	tbl := NewTable()
	ref := model.ModelReference{ElementIndex: 1, ModelID: 0x1000, Handle: model.ModelHandle{ElementIndex: 1, ModelID: 0x1000}}
	if err := tbl.Add(Descriptor{Index: 0x0001, Models: []model.ModelReference{ref}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	d, ok := tbl.ByIndex(0x0001)
	if !ok || len(d.Models) != 1 {
		t.Fatalf("ByIndex failed: %+v, ok=%v", d, ok)
	}

	m, ok := tbl.ModelByID(0x0001, 0x1000)
	if !ok || m.ModelID != 0x1000 {
		t.Fatalf("ModelByID failed: %+v, ok=%v", m, ok)
	}
}

func TestModelByIDMissingElementOrModel(t *testing.T) {
	tbl := NewTable(Descriptor{Index: 0x0001})
	if _, ok := tbl.ModelByID(0x0002, 0x1000); ok {
		t.Fatal("expected no match for unknown element index")
	}
	if _, ok := tbl.ModelByID(0x0001, 0x9999); ok {
		t.Fatal("expected no match for unknown model id")
	}
}

func TestFreezeRejectsFurtherAdds(t *testing.T) {
	tbl := NewTable()
	tbl.Freeze()
	err := tbl.Add(Descriptor{Index: 1})
	if !errors.Is(err, meshxerr.ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestPrimaryAddress(t *testing.T) {
	empty := NewTable()
	if empty.PrimaryAddress() != model.AddrUnassigned {
		t.Fatal("expected AddrUnassigned for an empty table")
	}

	tbl := NewTable(Descriptor{Index: 0x0003})
	if tbl.PrimaryAddress() != 0x0003 {
		t.Fatalf("got %#x, want 0x0003", tbl.PrimaryAddress())
	}
}
