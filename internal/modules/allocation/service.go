package allocation

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Service defines the batch allocation engine.
type Service interface {
	// Allocate snapshots all pending requests and available resources,
	// solves the minimum-cost matching and applies each accepted pair.
	// Per-pair conflicts are skipped and reported in the result, never
	// fatal; ErrNoCandidates is returned when either side is empty.
	Allocate(ctx context.Context, opts AllocateOptions) (*BatchResult, error)
}

type service struct {
	repo Repository
	cost CostFunc
}

// NewService builds the allocation engine. A nil cost falls back to
// DefaultCost; passing a custom CostFunc swaps the pairing policy without
// touching the solver.
func NewService(repo Repository, cost CostFunc) Service {
	if cost == nil {
		cost = DefaultCost
	}
	return &service{repo: repo, cost: cost}
}

// applyConcurrency bounds the parallel per-pair mutations. Each pair is
// transactional on its own, so the bound only limits connection pressure.
const applyConcurrency = 4

func (s *service) Allocate(ctx context.Context, opts AllocateOptions) (*BatchResult, error) {
	// Solve is read-only over this snapshot; mutations happen after it
	// completes, each one re-checked against the latest committed state.
	requests, err := s.repo.PendingRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot requests: %w", err)
	}
	resources, err := s.repo.AvailableResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot resources: %w", err)
	}

	matrix, err := BuildMatrix(requests, resources, s.cost)
	if err != nil {
		return nil, err
	}
	pairs := Solve(matrix.Costs)

	result := &BatchResult{
		Assignments:       []Assignment{},
		Failures:          []Failure{},
		ExcludedRequests:  matrix.ExcludedRequests,
		ExcludedResources: matrix.ExcludedResources,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(applyConcurrency)
	for _, pair := range pairs {
		assignment := Assignment{
			RequestID:  matrix.Requests[pair.Row].ID,
			ResourceID: matrix.Resources[pair.Col].ID,
			Cost:       pair.Cost,
		}
		g.Go(func() error {
			err := s.repo.ApplyAssignment(gctx, assignment.RequestID, assignment.ResourceID, assignment.Cost, opts.MarkInProgress)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Skip-and-report: a vanished or contended entity never
				// aborts the rest of the batch.
				result.Failures = append(result.Failures, Failure{ID: assignment.RequestID, Reason: err.Error()})
				return nil
			}
			result.Assignments = append(result.Assignments, assignment)
			result.TotalCost += assignment.Cost
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
