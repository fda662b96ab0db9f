package service

// Service is a long-lived background subsystem owned by the host loop
// Audio playback and hand-tracking connections are services
//
// Lifecycle:
//  1. Construction (from config)
//  2. Start() - acquire devices, launch goroutines
//  3. [runtime operation, polled by the frame loop]
//  4. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Start begins service operation
	// A missing device should degrade gracefully rather than fail
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}
