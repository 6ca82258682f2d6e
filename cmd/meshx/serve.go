package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meshx-project/meshx/pkg/api/rest"
	"github.com/meshx-project/meshx/pkg/api/ws"
	"github.com/meshx-project/meshx/pkg/config"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/node"
	"github.com/meshx-project/meshx/pkg/rules"
	"github.com/meshx-project/meshx/pkg/telemetry/mqtt"
	"github.com/meshx-project/meshx/pkg/transport"
	"github.com/meshx-project/meshx/pkg/transport/ble"
	"github.com/meshx-project/meshx/pkg/transport/simulator"
)

func newServeCmd() *cobra.Command {
	var rulesScript string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a MeshX node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rulesScript)
		},
	}
	cmd.Flags().StringVar(&rulesScript, "rules", "", "Lua automation script path")
	return cmd
}

func newTransportRegistry() transport.Registry {
	r := transport.NewRegistry()
	r.Register(simulator.NewFactory())
	r.Register(ble.NewFactory())
	return r
}

func runServe(rulesScript string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.SetGlobal(logger.New(logger.Config{
		Level: cfg.Logging.Level, Format: cfg.Logging.Format,
		Output: cfg.Logging.Output, File: cfg.Logging.File,
	}))
	log := logger.Global()

	tr := newTransportRegistry()
	bearer, err := tr.Create(transport.Config{
		Type: cfg.Transport.Type, Address: cfg.Transport.Address, Options: cfg.Transport.Options,
	})
	if err != nil {
		return fmt.Errorf("create transport: %w", err)
	}

	nodeCfg := cfg.Node.ToNodeConfig()
	nodeCfg.Elements = demoElements(nodeCfg.PrimaryAddress)

	n, err := node.New(nodeCfg, bearer)
	if err != nil {
		return fmt.Errorf("construct node: %w", err)
	}
	if err := wireDemoServers(n); err != nil {
		return fmt.Errorf("wire demo board: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("start node: %w", err)
	}

	var restServer *rest.Server
	var wsServer *ws.Server
	if cfg.API.Enabled {
		restServer = rest.NewServer(n, cfg.API)
		if err := restServer.Start(); err != nil {
			return fmt.Errorf("start rest server: %w", err)
		}
		wsServer = ws.NewServer(n.Bus, ws.DefaultServerConfig())
		if err := wsServer.Start(); err != nil {
			return fmt.Errorf("start ws server: %w", err)
		}
	}

	var ruleEngine *rules.Engine
	if rulesScript != "" {
		ruleEngine, err = rules.New(rulesScript, n.Bus, stateChangeKeys())
		if err != nil {
			return fmt.Errorf("load rules script: %w", err)
		}
	}

	var telemetryBridge *mqtt.Bridge
	if cfg.MQTT.Enabled {
		telemetryBridge = mqtt.NewBridge(mqtt.Config{BrokerURL: cfg.MQTT.BrokerURL, NodeID: cfg.MQTT.NodeID}, n.Bus)
		if err := telemetryBridge.Connect(); err != nil {
			return fmt.Errorf("connect mqtt telemetry: %w", err)
		}
	}

	log.Info("meshx node running", "primary_address", nodeCfg.PrimaryAddress, "transport", cfg.Transport.Type)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("meshx node shutting down")
	if telemetryBridge != nil {
		telemetryBridge.Close()
	}
	if ruleEngine != nil {
		ruleEngine.Close()
	}
	if wsServer != nil {
		wsServer.Stop(context.Background())
	}
	if restServer != nil {
		restServer.Stop(context.Background())
	}
	return n.Stop()
}
