package node

import (
	"context"
	"testing"
	"time"

	"github.com/meshx-project/meshx/pkg/element"
	"github.com/meshx-project/meshx/pkg/model"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/transport/simulator"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	ref := model.ModelReference{ElementIndex: 1, ModelID: model.GenOnOffSrv, Handle: model.ModelHandle{ElementIndex: 1, ModelID: model.GenOnOffSrv}}
	cfg := Config{
		CompanyID:      0x0059,
		ProductID:      0x0001,
		PrimaryAddress: 1,
		Elements:       []element.Descriptor{{Index: 1, Models: []model.ModelReference{ref}}},
	}
	n, err := New(cfg, simulator.New())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { n.Stop() })
	return n
}

func TestNewWiresAllTenFamilyRegistries(t *testing.T) {
	n := newTestNode(t)
	reg := n.Registries()
	if reg.OnOffClient == nil || reg.OnOffServer == nil || reg.CtlClient == nil || reg.CtlServer == nil ||
		reg.PropertyServer == nil || reg.LcServer == nil {
		t.Fatal("expected every family registry to be non-nil")
	}
}

func TestStartFreezesElementTableAndRejectsDoubleStart(t *testing.T) {
	n := newTestNode(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := n.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := n.elements.Add(element.Descriptor{Index: 2}); err == nil {
		t.Fatal("expected Add to fail after Start froze the element table")
	}
	if err := n.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestOnOffServerConstructsAgainstNodeRegistry(t *testing.T) {
	n := newTestNode(t)
	ref := model.ModelReference{ElementIndex: 1, ModelID: model.GenOnOffSrv, Handle: model.ModelHandle{ElementIndex: 1, ModelID: model.GenOnOffSrv}}
	srv, err := onoff.NewServer(n.Registries().OnOffServer, ref, nil)
	if err != nil {
		t.Fatalf("onoff.NewServer: %v", err)
	}
	if srv.State().OnOff != 0 {
		t.Fatalf("expected zero-value initial state, got %+v", srv.State())
	}
}
