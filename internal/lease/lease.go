// Package lease provides named, expiring, exclusive leases used to keep at
// most one status watcher run in flight.
package lease

import (
	"context"
	"errors"
	"time"
)

// ErrHeld is returned by TryAcquire when another holder owns the lease
var ErrHeld = errors.New("lease is held by another owner")

// Manager hands out leases by name
type Manager interface {
	// TryAcquire takes the lease called name for at most ttl. It does not wait:
	// when the lease is already held it returns ErrHeld.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (Lease, error)
}

// Lease is an acquired lease
type Lease interface {
	Name() string

	// Release gives the lease up. Releasing a lease that already expired and
	// was taken by someone else leaves the new holder untouched.
	Release(ctx context.Context) error
}
