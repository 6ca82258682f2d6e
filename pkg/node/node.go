// Package node is the top-level MeshX node orchestrator, the Go analogue of
// the teacher's core.Engine/core.Gateway: it owns the bus, the TXCM worker,
// the meshnet bridge, the element composition table, the NVS store and
// every family's base model registry, and drives their lifecycle together.
// Concrete per-element model adapters (pkg/models/*) are constructed by the
// application against the registries Node exposes; Node itself never knows
// which opcodes a family speaks.
package node

import (
	"context"
	"fmt"
	"time"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/element"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/meshnet"
	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/metrics"
	"github.com/meshx-project/meshx/pkg/model"
	"github.com/meshx-project/meshx/pkg/models/ctl"
	"github.com/meshx-project/meshx/pkg/models/hsl"
	"github.com/meshx-project/meshx/pkg/models/lc"
	"github.com/meshx-project/meshx/pkg/models/level"
	"github.com/meshx-project/meshx/pkg/models/lightness"
	"github.com/meshx-project/meshx/pkg/models/location"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/models/power"
	"github.com/meshx-project/meshx/pkg/models/property"
	"github.com/meshx-project/meshx/pkg/models/xyl"
	"github.com/meshx-project/meshx/pkg/nvs"
	"github.com/meshx-project/meshx/pkg/platform"
	"github.com/meshx-project/meshx/pkg/transport"
	"github.com/meshx-project/meshx/pkg/txcm"
)

// Config configures a Node. It is what pkg/config decodes from YAML/env
// into before calling New.
type Config struct {
	// CompanyID/ProductID are reconciled against the NVS store at Start;
	// a mismatch from a prior run erases all persisted element state.
	CompanyID uint16
	ProductID uint16

	// NVSPath is the SQLite-backed store's file path. An empty path uses
	// an in-memory database (":memory:"), useful for tests.
	NVSPath string
	// NVSCommitTimeout is the stability-timer debounce before an
	// auto-commit; zero disables the timer.
	NVSCommitTimeout time.Duration

	// PrimaryAddress is this node's primary element's unicast address.
	PrimaryAddress uint16

	// TxcmQueueLen/TxcmMaxRetry tune the reliable-send worker; zero takes
	// the package defaults.
	TxcmQueueLen int
	TxcmMaxRetry int

	// Elements is the element composition table, frozen at Start.
	Elements []element.Descriptor
}

// Registries bundles the ten family base registries Node constructs. The
// application builds its concrete pkg/models/* adapters against these.
type Registries struct {
	OnOffClient  *model.ClientRegistry[onoff.State]
	OnOffServer  *model.ServerRegistry[onoff.State]
	LevelClient  *model.ClientRegistry[level.State]
	LevelServer  *model.ServerRegistry[level.State]
	PowerClient  *model.ClientRegistry[power.State]
	PowerServer  *model.ServerRegistry[power.State]
	LocationClient *model.ClientRegistry[location.State]
	LocationServer *model.ServerRegistry[location.State]
	PropertyServer *model.ServerRegistry[property.State]

	LightnessClient *model.ClientRegistry[lightness.State]
	LightnessServer *model.ServerRegistry[lightness.State]
	CtlClient       *model.ClientRegistry[ctl.State]
	CtlServer       *model.ServerRegistry[ctl.State]
	HslClient       *model.ClientRegistry[hsl.State]
	HslServer       *model.ServerRegistry[hsl.State]
	XylClient       *model.ClientRegistry[xyl.State]
	XylServer       *model.ServerRegistry[xyl.State]
	LcClient        *model.ClientRegistry[lc.State]
	LcServer        *model.ServerRegistry[lc.State]
}

// Node is a constructed, not-yet-started MeshX node.
type Node struct {
	cfg Config
	log *logger.Logger

	Bus    *bus.Bus
	Txcm   *txcm.Txcm
	Bridge *meshnet.Bridge
	Store  *nvs.Store

	elements *element.Table
	reg      Registries

	bearer  transport.Transport
	runTask *platform.Task
}

// New wires Bus, Txcm, the NVS store and the meshnet bridge over bearer,
// and constructs all ten family registries against that bridge. It does not
// start the Txcm worker or the bridge's receive loop; call Start for that.
func New(cfg Config, bearer transport.Transport) (*Node, error) {
	log := logger.Global().Module("node")
	b := bus.New(log.Module("bus"))
	tx := txcm.New(b, log.Module("txcm"), cfg.TxcmQueueLen, cfg.TxcmMaxRetry)

	path := cfg.NVSPath
	if path == "" {
		path = ":memory:"
	}
	store, err := nvs.Open(path, cfg.NVSCommitTimeout)
	if err != nil {
		return nil, fmt.Errorf("node: open nvs: %w", err)
	}
	if err := store.SetProductInfo(cfg.CompanyID, cfg.ProductID); err != nil {
		store.Close()
		return nil, fmt.Errorf("node: reconcile product info: %w", err)
	}

	bridge := meshnet.NewBridge(bearer, b, cfg.PrimaryAddress)

	elements := element.NewTable(cfg.Elements...)

	n := &Node{
		cfg:      cfg,
		log:      log,
		Bus:      b,
		Txcm:     tx,
		Bridge:   bridge,
		Store:    store,
		elements: elements,
		bearer:   bearer,
	}
	n.reg = Registries{
		OnOffClient:    model.NewClientRegistry[onoff.State]("generic_onoff", model.GenericClientModelIDs, model.GenericClass, tx, b, bridge, nil),
		OnOffServer:    model.NewServerRegistry[onoff.State]("generic_onoff", model.GenericServerModelIDs, model.GenericClass, b, bridge, nil),
		LevelClient:    model.NewClientRegistry[level.State]("generic_level", model.GenericClientModelIDs, model.GenericClass, tx, b, bridge, nil),
		LevelServer:    model.NewServerRegistry[level.State]("generic_level", model.GenericServerModelIDs, model.GenericClass, b, bridge, nil),
		PowerClient:    model.NewClientRegistry[power.State]("generic_power", model.GenericClientModelIDs, model.GenericClass, tx, b, bridge, nil),
		PowerServer:    model.NewServerRegistry[power.State]("generic_power", model.GenericServerModelIDs, model.GenericClass, b, bridge, nil),
		LocationClient: model.NewClientRegistry[location.State]("generic_location", model.GenericClientModelIDs, model.GenericClass, tx, b, bridge, nil),
		LocationServer: model.NewServerRegistry[location.State]("generic_location", model.GenericServerModelIDs, model.GenericClass, b, bridge, nil),
		PropertyServer: model.NewServerRegistry[property.State]("generic_property", model.GenericServerModelIDs, model.GenericClass, b, bridge, nil),

		LightnessClient: model.NewClientRegistry[lightness.State]("light_lightness", model.LightClientModelIDs, model.LightClass, tx, b, bridge, nil),
		LightnessServer: model.NewServerRegistry[lightness.State]("light_lightness", model.LightServerModelIDs, model.LightClass, b, bridge, nil),
		CtlClient:       model.NewClientRegistry[ctl.State]("light_ctl", model.LightClientModelIDs, model.LightClass, tx, b, bridge, nil),
		CtlServer:       model.NewServerRegistry[ctl.State]("light_ctl", model.LightServerModelIDs, model.LightClass, b, bridge, nil),
		HslClient:       model.NewClientRegistry[hsl.State]("light_hsl", model.LightClientModelIDs, model.LightClass, tx, b, bridge, nil),
		HslServer:       model.NewServerRegistry[hsl.State]("light_hsl", model.LightServerModelIDs, model.LightClass, b, bridge, nil),
		XylClient:       model.NewClientRegistry[xyl.State]("light_xyl", model.LightClientModelIDs, model.LightClass, tx, b, bridge, nil),
		XylServer:       model.NewServerRegistry[xyl.State]("light_xyl", model.LightServerModelIDs, model.LightClass, b, bridge, nil),
		LcClient:        model.NewClientRegistry[lc.State]("light_lc", model.LightClientModelIDs, model.LightClass, tx, b, bridge, nil),
		LcServer:        model.NewServerRegistry[lc.State]("light_lc", model.LightServerModelIDs, model.LightClass, b, bridge, nil),
	}

	return n, nil
}

// Registries returns the ten family base registries.
func (n *Node) Registries() Registries { return n.reg }

// Elements returns the node's element composition table.
func (n *Node) Elements() *element.Table { return n.elements }

// Start freezes the element table, connects the bearer, starts the TXCM
// worker and launches the meshnet bridge's receive loop as a
// pkg/platform.Task. It is an error to call Start twice.
func (n *Node) Start(ctx context.Context) error {
	if n.runTask != nil {
		return fmt.Errorf("%w: node already started", meshxerr.ErrInvalidState)
	}
	n.elements.Freeze()

	if err := n.bearer.Connect(ctx); err != nil {
		return fmt.Errorf("node: connect bearer: %w", err)
	}
	metrics.SetNodeConnected(true)
	n.Txcm.Init(ctx)

	n.runTask = platform.NewTask("meshnet_bridge", func(taskCtx context.Context) {
		if err := n.Bridge.Run(taskCtx); err != nil {
			n.log.Error("meshnet bridge run loop exited", "error", err)
		}
	})
	n.runTask.Start(ctx)
	return nil
}

// Status summarizes node state for the debug/status HTTP surface.
type Status struct {
	PrimaryAddress uint16 `json:"primary_address"`
	ElementCount   int    `json:"element_count"`
	Connected      bool   `json:"connected"`
}

// Status reports the node's current state.
func (n *Node) Status() Status {
	return Status{
		PrimaryAddress: n.cfg.PrimaryAddress,
		ElementCount:   len(n.elements.Elements()),
		Connected:      n.bearer.IsConnected(),
	}
}

// SendRaw dispatches an already-encoded payload directly through the
// meshnet bridge, bypassing TXCM reliability tracking. It exists for
// debug/status tooling (pkg/api/rest); application code should send
// through a family's typed Client instead.
func (n *Node) SendRaw(ctx context.Context, elementIndex uint16, modelID, opcode uint32, dst, netIdx, appIdx uint16, isGet bool, payload []byte) error {
	handle := model.ModelHandle{ElementIndex: elementIndex, ModelID: modelID}
	return n.Bridge.SendModelMsg(ctx, handle, opcode, dst, netIdx, appIdx, isGet, payload)
}

// Stop halts the bridge's receive loop and closes the bearer and NVS store.
func (n *Node) Stop() error {
	if n.runTask != nil {
		n.runTask.Stop()
	}
	metrics.SetNodeConnected(false)
	if err := n.bearer.Close(); err != nil {
		n.log.Warn("node: close bearer", "error", err)
	}
	return n.Store.Close()
}
