package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meshx-project/meshx/pkg/bus"
	"github.com/meshx-project/meshx/pkg/logger"
	"github.com/meshx-project/meshx/pkg/nvs"
	"github.com/meshx-project/meshx/pkg/replcmd"
	"github.com/meshx-project/meshx/pkg/txcm"
)

// newUnitTestRegistry builds a replcmd.Registry against a standalone TXCM
// worker and an in-memory NVS store, the same module 3/module 4 surface
// unit_test.c exercises in the original firmware — independent of any
// running node, per the CLI surface being "out of core scope".
func newUnitTestRegistry(ctx context.Context) (*replcmd.Registry, func(), error) {
	log := logger.Global()
	b := bus.New(log)
	tx := txcm.New(b, log, 0, 0)
	tx.Init(ctx)

	store, err := nvs.Open(":memory:", 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open nvs: %w", err)
	}

	r := replcmd.NewRegistry()
	replcmd.RegisterTxcm(r, tx)
	replcmd.RegisterNvs(r, store)

	cleanup := func() { store.Close() }
	return r, cleanup, nil
}

func newUtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ut <module_id> <cmd_id> <argc> [args...]",
		Short: "Run one unit-test command against module 3 (TXCM) or module 4 (NVS)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			moduleID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("module_id: %w", err)
			}
			cmdID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("cmd_id: %w", err)
			}
			argc, err := replcmd.ParseArgc(args[2])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			r, cleanup, err := newUnitTestRegistry(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res := r.Dispatch(ctx, moduleID, cmdID, argc, args[3:])
			fmt.Printf("%d %s\n", res.Code, res.Output)
			if res.Code != 0 {
				return fmt.Errorf("ut command failed with code %d", res.Code)
			}
			return nil
		},
	}
}
