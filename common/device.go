package common

import (
	"runtime"
)

// Backend names where array computations run.
type Backend string

const (
	// CPUBackend runs on host memory with goroutine parallelism.
	CPUBackend Backend = "cpu"
	// CUDABackend is recognised so configurations can name it, but the engine
	// has no accelerator path and rejects it.
	CUDABackend Backend = "cuda"
)

// Device is the explicit compute affinity threaded through every image-level
// call. There is no package-level default: the zero value means "CPU, one
// worker per core".
type Device struct {
	// Backend selects the compute backend. Empty means CPUBackend.
	Backend Backend `json:"backend" yaml:"backend"`
	// Workers bounds the number of goroutines. 0 means runtime.NumCPU(),
	// 1 forces serial execution.
	Workers int `json:"workers" yaml:"workers"`
}

// CPU returns a CPU device with the given worker bound.
func CPU(workers int) Device {
	return Device{Backend: CPUBackend, Workers: workers}
}

// Validate checks that the device can be used by the engine.
func (d Device) Validate(op string) error {
	switch d.Backend {
	case "", CPUBackend:
	default:
		return NewUnsupportedConfigError(op, "backend %q is not available", d.Backend)
	}
	if d.Workers < 0 {
		return NewUnsupportedConfigError(op, "workers must be >= 0, got %d", d.Workers)
	}
	return nil
}

// workers resolves the effective goroutine count.
func (d Device) workers() int {
	if d.Workers > 0 {
		return d.Workers
	}
	return runtime.NumCPU()
}
