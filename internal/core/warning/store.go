// Package warning implements acknowledgeable user warnings.
//
// A warning is keyed by an operation-specific string (e.g. one key per
// sale). The first attempt fails with a PENDING_WARNING error; once the
// key is acknowledged the operation proceeds on retry.
package warning

import "context"

// Store tracks which warning keys have been acknowledged.
type Store interface {
	// Check reports whether the warning must still be raised
	// (true = not yet acknowledged).
	Check(ctx context.Context, key string) (bool, error)

	// Acknowledge records that the user accepted the warning.
	Acknowledge(ctx context.Context, key string) error
}
