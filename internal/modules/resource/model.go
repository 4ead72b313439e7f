package resource

import (
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

// Category classifies what a resource can provide.
type Category string

const (
	CategoryShelter  Category = "shelter"
	CategoryMedical  Category = "medical"
	CategorySupplies Category = "supplies"
	CategoryWater    Category = "water"
)

// Valid reports whether c is a known resource category.
func (c Category) Valid() bool {
	switch c {
	case CategoryShelter, CategoryMedical, CategorySupplies, CategoryWater:
		return true
	}
	return false
}

// Status is the availability of a resource. It is always derived from the
// count/workload/capacity triple via DeriveStatus, never set by callers.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusLimited     Status = "limited"
	StatusUnavailable Status = "unavailable"
	StatusAssigned    Status = "assigned"
)

// DeriveStatus computes the availability of a resource purely from its
// counts. Keeping this a pure function removes the class of bugs where a
// stored status drifts from the counts it summarises.
func DeriveStatus(currentCount, currentWorkload, capacity int) Status {
	switch {
	case currentCount <= 0:
		return StatusUnavailable
	case currentWorkload >= capacity:
		return StatusAssigned
	case float64(currentCount) < float64(capacity)*0.25:
		return StatusLimited
	default:
		return StatusAvailable
	}
}

// Resource is a place or team that can satisfy requests: a shelter, a
// medical facility, a supply depot or a water point.
type Resource struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Category           Category   `json:"category"`
	Description        string     `json:"description,omitempty"`
	Status             Status     `json:"status"`
	Capacity           int        `json:"capacity"`
	CurrentCount       int        `json:"current_count"`
	CurrentWorkload    int        `json:"current_workload"`
	Location           geo.Point  `json:"location"`
	Address            string     `json:"address,omitempty"`
	AssignedRequest    *uuid.UUID `json:"assigned_request,omitempty"`
	AssignedIncident   *uuid.UUID `json:"assigned_incident,omitempty"`
	LastAssignmentCost *float64   `json:"last_assignment_cost,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// RequestStatus tracks the lifecycle of a resource request. Transitions
// only move forward; rejection is the explicit cancellation path.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestApproved   RequestStatus = "approved"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestRejected   RequestStatus = "rejected"
)

// requestRank orders the forward-only request lifecycle.
var requestRank = map[RequestStatus]int{
	RequestPending:    0,
	RequestApproved:   1,
	RequestInProgress: 2,
	RequestCompleted:  3,
}

// CanTransition reports whether a request in status s may move to target.
// Rejection is allowed from any non-terminal state; everything else must
// advance, never regress.
func (s RequestStatus) CanTransition(target RequestStatus) bool {
	if s == RequestCompleted || s == RequestRejected {
		return false
	}
	if target == RequestRejected {
		return true
	}
	from, ok := requestRank[s]
	if !ok {
		return false
	}
	to, ok := requestRank[target]
	if !ok {
		return false
	}
	return to > from
}

// ResourceRequest is a demand for a quantity of an (optional) item type at
// a location, created by the incident router or directly by a requester.
type ResourceRequest struct {
	ID          uuid.UUID     `json:"id"`
	ResourceID  *uuid.UUID    `json:"resource_id,omitempty"`
	ItemID      *uuid.UUID    `json:"item_id,omitempty"`
	ItemType    string        `json:"item_type,omitempty"`
	Quantity    int           `json:"quantity"`
	RequesterID *uuid.UUID    `json:"requester_id,omitempty"`
	Location    geo.Point     `json:"location"`
	Status      RequestStatus `json:"status"`
	Priority    int           `json:"priority"` // higher = more urgent
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Distribution is a read-mostly record of aggregate fulfillment for a
// resource over an area. FulfilledRequests never exceeds TotalRequests.
type Distribution struct {
	ID                uuid.UUID  `json:"id"`
	ResourceID        *uuid.UUID `json:"resource_id,omitempty"`
	Location          geo.Point  `json:"location"`
	TotalRequests     int        `json:"total_requests"`
	FulfilledRequests int        `json:"fulfilled_requests"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SupplierCategory classifies what a supplier provides.
type SupplierCategory string

const (
	SupplierMedical   SupplierCategory = "medical"
	SupplierFood      SupplierCategory = "food"
	SupplierShelter   SupplierCategory = "shelter"
	SupplierEquipment SupplierCategory = "equipment"
	SupplierOther     SupplierCategory = "other"
)

// SupplierStatus tracks whether a supplier is usable as a location anchor.
type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
	SupplierPending  SupplierStatus = "pending"
)

// Supplier is a source of inventory. It participates in the cost model as
// a location anchor only; it is never itself assignable.
type Supplier struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Category    SupplierCategory `json:"category"`
	Status      SupplierStatus   `json:"status"`
	Location    *geo.Point       `json:"location,omitempty"`
	ContactName string           `json:"contact_name,omitempty"`
	Email       string           `json:"email,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Address     string           `json:"address,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateResourceRequest is the payload for onboarding a new resource.
type CreateResourceRequest struct {
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Description     string    `json:"description,omitempty"`
	Capacity        int       `json:"capacity"`
	CurrentCount    int       `json:"current_count"`
	CurrentWorkload int       `json:"current_workload"`
	Location        geo.Point `json:"location"`
	Address         string    `json:"address,omitempty"`
}

// CreateRequestRequest is the payload for opening a resource request.
type CreateRequestRequest struct {
	ItemType    string    `json:"item_type,omitempty"`
	Quantity    int       `json:"quantity"`
	RequesterID string    `json:"requester_id,omitempty"`
	Location    geo.Point `json:"location"`
	Priority    int       `json:"priority"`
}

// UpdateRequestStatusRequest advances a request's lifecycle.
type UpdateRequestStatusRequest struct {
	Status string `json:"status"`
}
