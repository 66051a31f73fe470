package main

import (
	"fmt"
	"io"

	"github.com/gogpu/glscene/backend"
	"github.com/gogpu/glscene/backend/wgpu"
	"github.com/gogpu/glscene/gl/recorder"
)

type backendFlags struct {
	name          string
	width, height uint32
}

func openBackend(f backendFlags) (backend.Device, error) {
	return backend.Open(f.name, backend.Config{Width: f.width, Height: f.height})
}

// report writes the backend's own view of the work done.
func report(w io.Writer, dev backend.Device, log bool) {
	switch d := dev.(type) {
	case *recorder.Recorder:
		if log {
			fmt.Fprint(w, d.Log())
			return
		}
		live := d.Live()
		fmt.Fprintf(w, "recorder: %d commands, live buffers=%d shaders=%d programs=%d vertex_arrays=%d\n",
			len(d.Commands()), live.Buffers, live.Shaders, live.Programs, live.VertexArrays)
	case *wgpu.Device:
		st := d.Stats()
		width, height := d.Size()
		fmt.Fprintf(w, "wgpu %dx%d: passes=%d draws=%d pipelines=%d buffers=%d programs=%d vertex_arrays=%d\n",
			width, height, st.Passes, st.Draws, st.Pipelines, st.Buffers, st.Programs, st.VertexArrays)
	}
}
