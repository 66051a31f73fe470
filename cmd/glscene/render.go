package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gogpu/glscene"
	"github.com/gogpu/glscene/backend"
	"github.com/gogpu/glscene/hclscene"
)

func renderCmd() *cobra.Command {
	var (
		bf      backendFlags
		frames  int
		log     bool
		metrics bool
		vars    []string
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Mount a scene and render a fixed number of frames",
		Long: `Mount a scene file and render it a fixed number of times.

With the recorder backend the recorded device calls are printed with --log.
Otherwise a summary of each frame and of the backend is printed.

Examples:
  glscene render scene.hcl
  glscene render scene.hcl --frames 2 --log
  glscene render scene.wgsl.hcl --backend noop --width 640 --height 480
  glscene render scene.hcl --var tint=[1,0,0,1]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], bf, vars, frames, log, metrics)
		},
	}

	addBackendFlags(cmd, &bf, backend.BackendRecorder)
	cmd.Flags().IntVarP(&frames, "frames", "n", 1, "Number of frames to render")
	cmd.Flags().BoolVar(&log, "log", false, "Print the recorded device calls (recorder backend)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print the scene metrics after rendering")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Set a scene variable as name=value (HCL expression)")

	return cmd
}

func addBackendFlags(cmd *cobra.Command, f *backendFlags, def string) {
	cmd.Flags().StringVarP(&f.name, "backend", "b", def, fmt.Sprintf("Device backend (%s)", strings.Join(backend.Available(), ", ")))
	cmd.Flags().Uint32Var(&f.width, "width", 0, "Render target width, 0 for the backend default")
	cmd.Flags().Uint32Var(&f.height, "height", 0, "Render target height, 0 for the backend default")
}

func runRender(ctx context.Context, path string, bf backendFlags, vars []string, frames int, log, metrics bool) error {
	if frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", frames)
	}
	elems, err := loadScene(path, vars)
	if err != nil {
		return err
	}

	dev, err := openBackend(bf)
	if err != nil {
		return err
	}
	defer dev.Close()

	var reg *prometheus.Registry
	var opts []glscene.Option
	if metrics {
		reg = prometheus.NewRegistry()
		opts = append(opts, glscene.WithMetrics(reg))
	}
	root := glscene.NewRoot(dev, opts...)
	drv := glscene.NewDriver(root)
	if err := hclscene.Mount(ctx, drv, elems); err != nil {
		return fmt.Errorf("mount %s: %w", path, err)
	}

	for i := range frames {
		st, err := root.RenderFrame(ctx)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if !log {
			fmt.Printf("frame %d: nodes=%d hidden=%d draws=%d vao_hits=%d vao_misses=%d\n",
				i, st.Nodes, st.Hidden, st.DrawCalls, st.VAOHits, st.VAOMisses)
		}
	}

	report(os.Stdout, dev, log)
	if reg != nil {
		return printMetrics(os.Stdout, reg)
	}
	return nil
}
