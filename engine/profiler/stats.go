package profiler

import "runtime"

// Runtime is a snapshot of Go runtime counters for the debug overlay.
type Runtime struct {
	HeapAlloc  uint64
	Mallocs    uint64
	NumGC      uint32
	Goroutines int
	CPUs       int
}

func ReadRuntime() Runtime {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Runtime{
		HeapAlloc:  m.HeapAlloc,
		Mallocs:    m.Mallocs,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
	}
}
