// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import "github.com/gogpu/glscene/backend"

func init() {
	backend.Register(backend.BackendRecorder, func(backend.Config) (backend.Device, error) {
		return New(), nil
	})
}

// Close implements backend.Device. A recorder holds no native resources,
// so Close only drops the recorded commands.
func (r *Recorder) Close() {
	r.Reset()
}
