package testutil

import "context"

// TestComponent is a test fixture with a start/stop lifecycle and
// resettable state.
type TestComponent interface {
	// Name identifies the component in failure messages.
	Name() string
	// Start brings the component up.
	Start(ctx context.Context) error
	// Stop releases the component's resources.
	Stop(ctx context.Context) error

	// Reset restores the component to its initial state.
	// This is typically used between test cases to ensure test isolation.
	Reset(ctx context.Context) error

	// Snapshot captures the current state of the component.
	// The returned data can be passed to Restore() to return to this state.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore restores the component to a previously captured state.
	// The snapshot parameter should be a value returned by Snapshot().
	Restore(ctx context.Context, snapshot interface{}) error
}
