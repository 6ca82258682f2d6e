package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	goserial "go.bug.st/serial"

	"github.com/meshx-project/meshx/pkg/replcmd"
)

func newReplCmd() *cobra.Command {
	var serialPort string
	var baudRate int
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive unit-test command console",
		Long: `repl reads "ut <module_id> <cmd_id> <argc> [args...]" lines and prints
"<code> <output>" responses, one per line, over stdin/stdout by default or
over a serial port with --serial, matching the original target's UART
debug console.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(serialPort, baudRate)
		},
	}
	cmd.Flags().StringVar(&serialPort, "serial", "", "serial port to use instead of stdin/stdout (e.g. /dev/ttyUSB0)")
	cmd.Flags().IntVar(&baudRate, "baud", 115200, "serial baud rate")
	return cmd
}

func runRepl(serialPort string, baudRate int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, cleanup, err := newUnitTestRegistry(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if serialPort == "" {
		return replcmd.REPL(ctx, r, os.Stdin, os.Stdout)
	}

	port, err := goserial.Open(serialPort, &goserial.Mode{BaudRate: baudRate})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", serialPort, err)
	}
	defer port.Close()

	return replcmd.REPL(ctx, r, port, port)
}
