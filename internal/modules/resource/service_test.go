package resource

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

type stubRepo struct {
	resources     map[uuid.UUID]*Resource
	requests      map[uuid.UUID]*ResourceRequest
	distributions map[uuid.UUID]*Distribution
	suppliers     []*Supplier
	// casStatus, when set, overrides the stored status at CAS time to
	// simulate a concurrent transition between read and write.
	casStatus RequestStatus
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		resources:     make(map[uuid.UUID]*Resource),
		requests:      make(map[uuid.UUID]*ResourceRequest),
		distributions: make(map[uuid.UUID]*Distribution),
	}
}

func (s *stubRepo) CreateResource(_ context.Context, r *Resource) error {
	s.resources[r.ID] = r
	return nil
}

func (s *stubRepo) GetResource(_ context.Context, id uuid.UUID) (*Resource, error) {
	r, ok := s.resources[id]
	if !ok {
		return nil, fmt.Errorf("resource: %w", apperr.ErrNotFound)
	}
	return r, nil
}

func (s *stubRepo) ListResources(_ context.Context) ([]*Resource, error) {
	var out []*Resource
	for _, r := range s.resources {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) ListByCategoryAndStatus(_ context.Context, category Category, status Status) ([]*Resource, error) {
	var out []*Resource
	for _, r := range s.resources {
		if r.Category == category && r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateResourceCounts(_ context.Context, id uuid.UUID, currentCount, currentWorkload int) (*Resource, error) {
	r, ok := s.resources[id]
	if !ok {
		return nil, fmt.Errorf("resource: %w", apperr.ErrNotFound)
	}
	r.CurrentCount = currentCount
	r.CurrentWorkload = currentWorkload
	r.Status = DeriveStatus(currentCount, currentWorkload, r.Capacity)
	return r, nil
}

func (s *stubRepo) CreateRequest(_ context.Context, req *ResourceRequest) error {
	s.requests[req.ID] = req
	return nil
}

func (s *stubRepo) GetRequest(_ context.Context, id uuid.UUID) (*ResourceRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("request: %w", apperr.ErrNotFound)
	}
	copied := *req
	return &copied, nil
}

func (s *stubRepo) ListRequests(_ context.Context) ([]*ResourceRequest, error) {
	var out []*ResourceRequest
	for _, req := range s.requests {
		out = append(out, req)
	}
	return out, nil
}

func (s *stubRepo) UpdateRequestStatus(_ context.Context, id uuid.UUID, expected, target RequestStatus) error {
	req, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("request %s: %w", id, apperr.ErrNotFound)
	}
	current := req.Status
	if s.casStatus != "" {
		current = s.casStatus
	}
	if current != expected {
		return fmt.Errorf("request %s is %s, expected %s: %w", id, current, expected, apperr.ErrInvalidState)
	}
	req.Status = target
	return nil
}

func (s *stubRepo) ListDistributions(_ context.Context) ([]*Distribution, error) {
	var out []*Distribution
	for _, d := range s.distributions {
		out = append(out, d)
	}
	return out, nil
}

func (s *stubRepo) GetDistribution(_ context.Context, id uuid.UUID) (*Distribution, error) {
	d, ok := s.distributions[id]
	if !ok {
		return nil, fmt.Errorf("distribution: %w", apperr.ErrNotFound)
	}
	return d, nil
}

func (s *stubRepo) IncrementFulfilled(_ context.Context, id uuid.UUID) (*Distribution, error) {
	d, ok := s.distributions[id]
	if !ok {
		return nil, fmt.Errorf("distribution: %w", apperr.ErrNotFound)
	}
	if d.FulfilledRequests >= d.TotalRequests {
		return nil, fmt.Errorf("distribution %s already fully fulfilled (%d/%d): %w",
			id, d.FulfilledRequests, d.TotalRequests, apperr.ErrInvalidState)
	}
	d.FulfilledRequests++
	return d, nil
}

func (s *stubRepo) CreateSupplier(_ context.Context, sup *Supplier) error {
	s.suppliers = append(s.suppliers, sup)
	return nil
}

func (s *stubRepo) ListSuppliers(_ context.Context) ([]*Supplier, error) {
	return s.suppliers, nil
}

func pendingRequest(repo *stubRepo) *ResourceRequest {
	req := &ResourceRequest{
		ID:       uuid.New(),
		Quantity: 2,
		Location: geo.Point{Lon: -61, Lat: 13},
		Status:   RequestPending,
		Priority: 2,
	}
	repo.requests[req.ID] = req
	return req
}

func TestCreateResourceDerivesStatus(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	r, err := svc.CreateResource(context.Background(), CreateResourceRequest{
		Name:         "St. Jude Hospital",
		Category:     "medical",
		Capacity:     100,
		CurrentCount: 20,
		Location:     geo.Point{Lon: -60.98, Lat: 13.85},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusLimited, r.Status, "status comes from the counts, never from input")
}

func TestCreateResourceValidation(t *testing.T) {
	svc := NewService(newStubRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateResourceRequest
	}{
		{"missing name", CreateResourceRequest{Category: "medical", Capacity: 10, Location: geo.Point{Lon: -61, Lat: 13}}},
		{"unknown category", CreateResourceRequest{Name: "x", Category: "vehicles", Capacity: 10, Location: geo.Point{Lon: -61, Lat: 13}}},
		{"negative capacity", CreateResourceRequest{Name: "x", Category: "water", Capacity: -1, Location: geo.Point{Lon: -61, Lat: 13}}},
		{"count over capacity", CreateResourceRequest{Name: "x", Category: "water", Capacity: 10, CurrentCount: 11, Location: geo.Point{Lon: -61, Lat: 13}}},
		{"bad coordinates", CreateResourceRequest{Name: "x", Category: "water", Capacity: 10, Location: geo.Point{Lon: -200, Lat: 13}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateResource(ctx, tc.req)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestAdvanceRequestForward(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	req := pendingRequest(repo)

	updated, err := svc.AdvanceRequest(context.Background(), req.ID.String(), RequestApproved)
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, updated.Status)
	assert.Equal(t, RequestApproved, repo.requests[req.ID].Status)
}

func TestAdvanceRequestNoRegression(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	req := pendingRequest(repo)
	req.Status = RequestInProgress

	_, err := svc.AdvanceRequest(context.Background(), req.ID.String(), RequestApproved)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, RequestInProgress, repo.requests[req.ID].Status)
}

func TestAdvanceRequestTerminalStates(t *testing.T) {
	for _, terminal := range []RequestStatus{RequestCompleted, RequestRejected} {
		repo := newStubRepo()
		svc := NewService(repo)
		req := pendingRequest(repo)
		req.Status = terminal

		_, err := svc.AdvanceRequest(context.Background(), req.ID.String(), RequestInProgress)
		assert.ErrorIs(t, err, apperr.ErrInvalidState, "no way out of %s", terminal)
	}
}

func TestAdvanceRequestLosesRace(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	req := pendingRequest(repo)
	// Another writer moved the request after our read.
	repo.casStatus = RequestApproved

	_, err := svc.AdvanceRequest(context.Background(), req.ID.String(), RequestApproved)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestAdvanceRequestUnknownID(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.AdvanceRequest(context.Background(), uuid.NewString(), RequestApproved)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.AdvanceRequest(context.Background(), "not-a-uuid", RequestApproved)
	assert.True(t, apperr.IsValidation(err))
}

func TestRecordFulfillmentBounded(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	d := &Distribution{ID: uuid.New(), TotalRequests: 2, FulfilledRequests: 1}
	repo.distributions[d.ID] = d

	updated, err := svc.RecordFulfillment(context.Background(), d.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, updated.FulfilledRequests)

	_, err = svc.RecordFulfillment(context.Background(), d.ID.String())
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "fulfilled never exceeds total")
}

func TestCreateSupplierDefaultsActive(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	sup, err := svc.CreateSupplier(context.Background(), &Supplier{Name: "Island Medical Supply"})
	require.NoError(t, err)
	assert.Equal(t, SupplierActive, sup.Status)
	assert.NotEqual(t, uuid.Nil, sup.ID)
}
