// Package backend is a registry of device backends selectable by name.
//
// Backend packages register a factory from init():
//
//	import _ "github.com/gogpu/glscene/gl/recorder"   // "recorder"
//	import _ "github.com/gogpu/glscene/backend/wgpu"  // "noop"
//
// A device is then opened by name, typically from a command-line flag:
//
//	dev, err := backend.Open(backend.BackendNoop, backend.Config{Width: 640, Height: 480})
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//	root := glscene.NewRoot(dev)
package backend
