package resource

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for resources, requests, distributions
// and suppliers. All status writes go through derived values; there is no
// method that sets a resource status directly.
type Repository interface {
	// Resources
	CreateResource(ctx context.Context, r *Resource) error
	GetResource(ctx context.Context, id uuid.UUID) (*Resource, error)
	ListResources(ctx context.Context) ([]*Resource, error)
	// ListByCategoryAndStatus backs the nearest-facility lookup of the
	// incident workflows.
	ListByCategoryAndStatus(ctx context.Context, category Category, status Status) ([]*Resource, error)
	// UpdateResourceCounts overwrites the count/workload pair and stores
	// the status derived from them, guarded by the previous counts.
	UpdateResourceCounts(ctx context.Context, id uuid.UUID, currentCount, currentWorkload int) (*Resource, error)

	// Requests
	CreateRequest(ctx context.Context, req *ResourceRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*ResourceRequest, error)
	ListRequests(ctx context.Context) ([]*ResourceRequest, error)
	// UpdateRequestStatus performs a compare-and-set: the write only lands
	// if the stored status still equals expected.
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, expected, target RequestStatus) error

	// Distributions
	ListDistributions(ctx context.Context) ([]*Distribution, error)
	GetDistribution(ctx context.Context, id uuid.UUID) (*Distribution, error)
	// IncrementFulfilled adds one fulfilled request, bounded by the total.
	IncrementFulfilled(ctx context.Context, id uuid.UUID) (*Distribution, error)

	// Suppliers
	CreateSupplier(ctx context.Context, s *Supplier) error
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
}
