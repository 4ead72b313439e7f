package allocation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the snapshot reads and the narrow per-pair mutation
// the solver needs. The snapshot methods are read-only; ApplyAssignment is
// the single mutating surface and is transactional per pair.
type Repository interface {
	// PendingRequests snapshots every request still in status pending.
	PendingRequests(ctx context.Context) ([]RequestCandidate, error)
	// AvailableResources snapshots every resource in status available.
	AvailableResources(ctx context.Context) ([]ResourceCandidate, error)
	// ApplyAssignment atomically approves one request and assigns one
	// resource, re-checking both are still in the expected state. A
	// conflict or vanished row fails with ErrInvalidState / ErrNotFound
	// and leaves both untouched.
	ApplyAssignment(ctx context.Context, requestID, resourceID uuid.UUID, cost float64, markInProgress bool) error
}
