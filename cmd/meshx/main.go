// meshx is the MeshX node's CLI entrypoint: `serve` runs a node with its
// debug/status HTTP surface, automation rules and MQTT telemetry;
// `config validate`/`config init` manage the YAML config file; `ut` and
// `repl` expose the unit-test command adapter, grounded on the teacher's
// cmd/comx cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	buildTime = "dev"
	gitCommit = "unknown"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:     "meshx",
		Short:   "MeshX - embedded BLE Mesh node framework",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(),
		newConfigCmd(),
		newUtCmd(),
		newReplCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("meshx %s\n", version)
			fmt.Printf("  Commit: %s\n", gitCommit)
			fmt.Printf("  Built:  %s\n", buildTime)
		},
	}
}
