package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gogpu/glscene"
	"github.com/gogpu/glscene/backend"
	"github.com/gogpu/glscene/hclscene"
)

type runFlags struct {
	backend     backendFlags
	vars        []string
	fps         int
	duration    time.Duration
	reload      bool
	metricsAddr string
}

func runCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Render a scene continuously at a fixed frame rate",
		Long: `Mount a scene file and render it once per display tick until
interrupted or until --duration elapses.

With --reload the file is re-read when it changes and the mounted tree
is updated in place: nodes whose tag and key still match keep their
device resources and only receive the changed props. A file that no
longer parses is reported and the previous scene keeps rendering.

Examples:
  glscene run scene.hcl --fps 60
  glscene run scene.hcl --reload --duration 30s
  glscene run scene.hcl --metrics-addr :9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), args[0], f)
		},
	}

	addBackendFlags(cmd, &f.backend, backend.BackendRecorder)
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "Set a scene variable as name=value (HCL expression)")
	cmd.Flags().IntVar(&f.fps, "fps", 60, "Frames per second")
	cmd.Flags().DurationVarP(&f.duration, "duration", "d", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVarP(&f.reload, "reload", "r", false, "Reload the scene when the file changes")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runLoop(ctx context.Context, path string, f runFlags) error {
	if f.fps < 1 {
		return fmt.Errorf("--fps must be at least 1, got %d", f.fps)
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if f.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}

	modTime := fileModTime(path)
	elems, err := loadScene(path, f.vars)
	if err != nil {
		return err
	}
	dev, err := openBackend(f.backend)
	if err != nil {
		return err
	}
	defer dev.Close()

	reg := prometheus.NewRegistry()
	root := glscene.NewRoot(dev, glscene.WithMetrics(reg))
	drv := glscene.NewDriver(root)
	if err := hclscene.Mount(ctx, drv, elems); err != nil {
		return fmt.Errorf("mount %s: %w", path, err)
	}

	if f.metricsAddr != "" {
		srv := serveMetrics(f.metricsAddr, reg)
		defer srv.Close()
	}

	ticker := time.NewTicker(time.Second / time.Duration(f.fps))
	defer ticker.Stop()

	if !f.reload {
		err = root.Run(ctx, ticker.C)
	} else {
		err = reloadLoop(ctx, path, f.vars, drv, elems, modTime, ticker.C)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	report(os.Stdout, dev, false)
	return err
}

// reloadLoop renders one frame per tick and syncs the tree whenever the
// file's modification time differs from the last one seen. elems is the
// tree loaded at modTime.
func reloadLoop(ctx context.Context, path string, vars []string, drv *glscene.Driver, elems []*hclscene.Element, modTime time.Time, ticks <-chan time.Time) error {
	log := glscene.Logger()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
		}

		if mt := fileModTime(path); !mt.Equal(modTime) {
			modTime = mt
			next, err := loadScene(path, vars)
			if err != nil {
				log.Warn("scene reload failed, keeping previous scene", "path", path, "err", err)
			} else {
				if err := hclscene.Sync(ctx, drv, elems, next); err != nil {
					return fmt.Errorf("sync %s: %w", path, err)
				}
				elems = next
				log.Info("scene reloaded", "path", path, "elements", len(next))
			}
		}

		if _, err := drv.Root().RenderFrame(ctx); err != nil {
			return err
		}
	}
}

func fileModTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

func serveMetrics(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glscene.Logger().Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	glscene.Logger().Info("serving metrics", "addr", addr)
	return srv
}
