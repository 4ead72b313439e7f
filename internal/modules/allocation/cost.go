package allocation

import (
	"errors"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

// ErrNoCandidates means the matrix would be degenerate: after excluding
// entities with invalid coordinates, one side of the matching is empty.
var ErrNoCandidates = errors.New("no valid candidates")

// CostFunc computes the assignment cost of one request/resource pair. It
// is a replaceable strategy; DefaultCost is the shipped policy.
type CostFunc func(req RequestCandidate, res ResourceCandidate) float64

// DefaultCost is distance * priority / max(capacity, 1): nearer and
// higher-capacity resources cost less for the same request.
func DefaultCost(req RequestCandidate, res ResourceCandidate) float64 {
	capacity := res.Capacity
	if capacity < 1 {
		capacity = 1
	}
	return geo.Distance(req.Location, res.Location) * float64(req.Priority) / float64(capacity)
}

// CostMatrix is the rectangular per-pair cost grid consumed by the solver,
// with the candidate orderings that give its indices meaning.
type CostMatrix struct {
	Costs             [][]float64
	Requests          []RequestCandidate
	Resources         []ResourceCandidate
	ExcludedRequests  []uuid.UUID
	ExcludedResources []uuid.UUID
}

// BuildMatrix filters out candidates with invalid coordinates (reported in
// the excluded lists, never silently matched) and computes the cost of
// every remaining pair. It returns ErrNoCandidates if either side ends up
// empty.
func BuildMatrix(requests []RequestCandidate, resources []ResourceCandidate, cost CostFunc) (*CostMatrix, error) {
	if cost == nil {
		cost = DefaultCost
	}

	m := &CostMatrix{}
	for _, req := range requests {
		if !req.Location.Valid() {
			m.ExcludedRequests = append(m.ExcludedRequests, req.ID)
			continue
		}
		m.Requests = append(m.Requests, req)
	}
	for _, res := range resources {
		if !res.Location.Valid() {
			m.ExcludedResources = append(m.ExcludedResources, res.ID)
			continue
		}
		m.Resources = append(m.Resources, res)
	}
	if len(m.Requests) == 0 || len(m.Resources) == 0 {
		return m, ErrNoCandidates
	}

	m.Costs = make([][]float64, len(m.Requests))
	for i, req := range m.Requests {
		row := make([]float64, len(m.Resources))
		for j, res := range m.Resources {
			row[j] = cost(req, res)
		}
		m.Costs[i] = row
	}
	return m, nil
}
