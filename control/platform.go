// File: control/platform.go
// License: Apache-2.0
//
// Process-level debug probes shared by every engine instance.

package control

import "runtime"

// RegisterPlatformProbes installs runtime introspection probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}
