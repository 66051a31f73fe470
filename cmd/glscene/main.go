// Command glscene loads a scene described in HCL and renders it through one
// of the glscene device backends.
//
// Usage:
//
//	glscene render scene.hcl --frames 3
//	glscene check scene.wgsl.hcl --backend noop
//	glscene run scene.hcl --fps 30 --reload --metrics-addr :9090
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/glscene"
	"github.com/gogpu/glscene/backend/wgpu"
)

// Version information set at build time.
var version = "dev"

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "glscene",
		Short: "Render retained-mode GL scenes described in HCL",
		Long: `glscene mounts an HCL scene file into a scene graph and renders
it on a device backend.

Backends:
  recorder  records every device call, accepts GLSL sources
  noop      wgpu HAL noop device, compiles WGSL sources with naga`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		renderCmd(),
		checkCmd(),
		runCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	glscene.SetLogger(l)
	wgpu.SetLogger(l)
}
