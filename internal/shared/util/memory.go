package util

import "runtime"

// RuntimeSnapshot is a point-in-time view of process resource usage,
// logged at the end of long operations.
type RuntimeSnapshot struct {
	HeapMB     uint64
	Goroutines int
}

func TakeRuntimeSnapshot() RuntimeSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeSnapshot{
		HeapMB:     m.HeapAlloc >> 20,
		Goroutines: runtime.NumGoroutine(),
	}
}
