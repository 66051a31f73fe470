package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/glscene"
	"github.com/gogpu/glscene/backend"
	"github.com/gogpu/glscene/hclscene"
)

func checkCmd() *cobra.Command {
	var (
		bf   backendFlags
		vars []string
	)

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Build every shader in a scene and render one frame",
		Long: `Parse a scene file, mount it and render a single frame.

Shader compile and link failures are reported with the device log.
The noop backend compiles WGSL through naga, so check catches shader
errors without a GPU.

Examples:
  glscene check scene.wgsl.hcl
  glscene check scene.hcl --backend recorder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0], bf, vars)
		},
	}

	addBackendFlags(cmd, &bf, backend.BackendNoop)
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Set a scene variable as name=value (HCL expression)")

	return cmd
}

func runCheck(ctx context.Context, path string, bf backendFlags, vars []string) error {
	elems, err := loadScene(path, vars)
	if err != nil {
		return err
	}
	dev, err := openBackend(bf)
	if err != nil {
		return err
	}
	defer dev.Close()

	root := glscene.NewRoot(dev)
	if err := hclscene.Mount(ctx, glscene.NewDriver(root), elems); err != nil {
		return describe(path, err)
	}
	if _, err := root.RenderFrame(ctx); err != nil {
		return describe(path, err)
	}
	fmt.Printf("%s: ok (%d top-level elements, %s backend)\n", path, len(elems), bf.name)
	return nil
}

// describe turns a shader build failure into a message that leads with
// the device log.
func describe(path string, err error) error {
	var ce *glscene.CompileError
	var le *glscene.LinkError
	switch {
	case errors.As(err, &ce):
		return fmt.Errorf("%s: %s shader does not compile:\n%s", path, ce.Stage, ce.Log)
	case errors.As(err, &le):
		return fmt.Errorf("%s: program does not link:\n%s", path, le.Log)
	case glscene.IsUsageError(err):
		return fmt.Errorf("%s: invalid scene: %w", path, err)
	default:
		return fmt.Errorf("%s: %w", path, err)
	}
}
