package allocation

import (
	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

// RequestCandidate is the slice of a pending resource request the solver
// needs: identity, location, urgency.
type RequestCandidate struct {
	ID       uuid.UUID `json:"id"`
	Location geo.Point `json:"location"`
	Priority int       `json:"priority"`
	Quantity int       `json:"quantity"`
}

// ResourceCandidate is the slice of an available resource the solver
// needs: identity, location, capacity.
type ResourceCandidate struct {
	ID       uuid.UUID `json:"id"`
	Location geo.Point `json:"location"`
	Capacity int       `json:"capacity"`
}

// Assignment is one accepted request/resource pair with its cost.
type Assignment struct {
	RequestID  uuid.UUID `json:"request_id"`
	ResourceID uuid.UUID `json:"resource_id"`
	Cost       float64   `json:"cost"`
}

// Failure records one skipped pair in a batch, with the reason. Batches
// never abort on a per-item problem.
type Failure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BatchResult carries both the accepted assignments and every per-item
// problem encountered while applying them.
type BatchResult struct {
	Assignments       []Assignment `json:"assignments"`
	Failures          []Failure    `json:"failures"`
	ExcludedRequests  []uuid.UUID  `json:"excluded_requests,omitempty"`
	ExcludedResources []uuid.UUID  `json:"excluded_resources,omitempty"`
	TotalCost         float64      `json:"total_cost"`
}

// AllocateOptions tunes how accepted pairs are applied.
type AllocateOptions struct {
	// MarkInProgress moves approved requests straight to in_progress.
	MarkInProgress bool `json:"mark_in_progress"`
}
