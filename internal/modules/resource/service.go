package resource

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
)

// Service defines the resource-store business logic consumed by the
// allocation and incident engines and by the coordination layer.
type Service interface {
	CreateResource(ctx context.Context, req CreateResourceRequest) (*Resource, error)
	GetResource(ctx context.Context, id string) (*Resource, error)
	ListResources(ctx context.Context) ([]*Resource, error)

	CreateRequest(ctx context.Context, req CreateRequestRequest) (*ResourceRequest, error)
	ListRequests(ctx context.Context) ([]*ResourceRequest, error)
	// AdvanceRequest moves a request forward in its lifecycle. Regressions
	// and transitions out of a terminal state fail with ErrInvalidState.
	AdvanceRequest(ctx context.Context, id string, target RequestStatus) (*ResourceRequest, error)

	ListDistributions(ctx context.Context) ([]*Distribution, error)
	// RecordFulfillment counts one more fulfilled request against a
	// distribution, never exceeding its total.
	RecordFulfillment(ctx context.Context, id string) (*Distribution, error)

	CreateSupplier(ctx context.Context, s *Supplier) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateResource(ctx context.Context, req CreateResourceRequest) (*Resource, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	cat := Category(req.Category)
	if !cat.Valid() {
		return nil, apperr.Validation("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.Capacity < 0 || req.CurrentCount < 0 || req.CurrentWorkload < 0 {
		return nil, apperr.Validation("capacity", "counts must be non-negative")
	}
	if req.CurrentCount > req.Capacity {
		return nil, apperr.Validation("current_count", "exceeds capacity")
	}
	if !req.Location.Valid() {
		return nil, apperr.Validation("location", "invalid coordinates")
	}

	r := &Resource{
		ID:              uuid.New(),
		Name:            req.Name,
		Category:        cat,
		Description:     req.Description,
		Status:          DeriveStatus(req.CurrentCount, req.CurrentWorkload, req.Capacity),
		Capacity:        req.Capacity,
		CurrentCount:    req.CurrentCount,
		CurrentWorkload: req.CurrentWorkload,
		Location:        req.Location,
		Address:         req.Address,
	}
	if err := s.repo.CreateResource(ctx, r); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return r, nil
}

func (s *service) GetResource(ctx context.Context, id string) (*Resource, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid resource id")
	}
	return s.repo.GetResource(ctx, rid)
}

func (s *service) ListResources(ctx context.Context) ([]*Resource, error) {
	return s.repo.ListResources(ctx)
}

func (s *service) CreateRequest(ctx context.Context, req CreateRequestRequest) (*ResourceRequest, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity", "must be positive")
	}
	if req.Priority < 0 {
		return nil, apperr.Validation("priority", "must be non-negative")
	}
	if !req.Location.Valid() {
		return nil, apperr.Validation("location", "invalid coordinates")
	}

	r := &ResourceRequest{
		ID:       uuid.New(),
		ItemType: req.ItemType,
		Quantity: req.Quantity,
		Location: req.Location,
		Status:   RequestPending,
		Priority: req.Priority,
	}
	if req.RequesterID != "" {
		requester, err := uuid.Parse(req.RequesterID)
		if err != nil {
			return nil, apperr.Validation("requester_id", "invalid requester id")
		}
		r.RequesterID = &requester
	}
	if err := s.repo.CreateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return r, nil
}

func (s *service) ListRequests(ctx context.Context) ([]*ResourceRequest, error) {
	return s.repo.ListRequests(ctx)
}

func (s *service) AdvanceRequest(ctx context.Context, id string, target RequestStatus) (*ResourceRequest, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid request id")
	}
	req, err := s.repo.GetRequest(ctx, rid)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(target) {
		return nil, fmt.Errorf("request %s: %s -> %s: %w", id, req.Status, target, apperr.ErrInvalidState)
	}
	// CAS on the status read above; a concurrent transition loses the race
	// and surfaces as ErrInvalidState rather than silently regressing.
	if err := s.repo.UpdateRequestStatus(ctx, rid, req.Status, target); err != nil {
		return nil, err
	}
	req.Status = target
	return req, nil
}

func (s *service) ListDistributions(ctx context.Context) ([]*Distribution, error) {
	return s.repo.ListDistributions(ctx)
}

func (s *service) RecordFulfillment(ctx context.Context, id string) (*Distribution, error) {
	did, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid distribution id")
	}
	return s.repo.IncrementFulfilled(ctx, did)
}

func (s *service) CreateSupplier(ctx context.Context, sup *Supplier) (*Supplier, error) {
	if sup.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if sup.Location != nil && !sup.Location.Valid() {
		return nil, apperr.Validation("location", "invalid coordinates")
	}
	if sup.Status == "" {
		sup.Status = SupplierActive
	}
	sup.ID = uuid.New()
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return sup, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}
