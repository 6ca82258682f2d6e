package main

import (
	"fmt"

	"github.com/meshx-project/meshx/pkg/element"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/model"
	"github.com/meshx-project/meshx/pkg/models/onoff"
	"github.com/meshx-project/meshx/pkg/node"
)

// demoElements composes a single-element board exposing a Generic OnOff
// server, the minimal composition needed to exercise a running node
// end-to-end. A real deployment's board composition is application code,
// the same way board.c wires models per target in the original firmware;
// this is the CLI's stand-in for that per-product step.
func demoElements(primaryAddr uint16) []element.Descriptor {
	ref := model.ModelReference{
		ElementIndex: primaryAddr,
		ModelID:      model.GenOnOffSrv,
		PubAddr:      model.AddrUnassigned,
		Handle:       model.ModelHandle{ElementIndex: primaryAddr, ModelID: model.GenOnOffSrv},
	}
	return []element.Descriptor{
		{Index: primaryAddr, Models: []model.ModelReference{ref}},
	}
}

// wireDemoServers constructs the concrete model adapters for demoElements
// against n's registries, logging every state change to make `meshx serve`
// observable without a REST/WS client attached.
func wireDemoServers(n *node.Node) error {
	log := logger.Global()
	reg := n.Registries()

	descs := n.Elements().Elements()
	if len(descs) == 0 {
		return fmt.Errorf("demo board: no elements composed")
	}
	ref, ok := n.Elements().ModelByID(descs[0].Index, model.GenOnOffSrv)
	if !ok {
		return fmt.Errorf("demo board: onoff server reference not composed")
	}

	_, err := onoff.NewServer(reg.OnOffServer, ref, func(s onoff.State) {
		log.Info("onoff state changed", "element", ref.ElementIndex, "on_off", s.OnOff)
	})
	return err
}
