package monitor

import "errors"

var (
	ErrAlreadyRegistered = errors.New("a machine with this name is already registered")
	ErrNilMachine        = errors.New("machine cannot be nil")
	ErrMachineNotFound   = errors.New("machine not found")
	ErrStaleSnapshot     = errors.New("snapshot is older than the exported one")

	// ErrStart indicates that the console server failed to start.
	ErrStart = errors.New("failed to start monitor server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("failed to shutdown monitor server gracefully")
)
