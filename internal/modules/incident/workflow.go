package incident

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/notify"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/resource"
)

// Store is the slice of the resource store the workflows need: the
// nearest-facility lookup and request creation. resource.Repository
// satisfies it.
type Store interface {
	ListByCategoryAndStatus(ctx context.Context, category resource.Category, status resource.Status) ([]*resource.Resource, error)
	CreateRequest(ctx context.Context, req *resource.ResourceRequest) error
}

// Workflow handles one incident category: locate the nearest qualified
// resource, open a request, notify the team. A nil request with a nil
// error means unroutable — no qualified resource is available right now.
type Workflow interface {
	Process(ctx context.Context, inc Incident) (*resource.ResourceRequest, error)
}

// WorkflowDeps carries the collaborators shared by every workflow.
type WorkflowDeps struct {
	Store Store
	Bus   notify.Bus
	// PublishFailures counts notification publishes that failed. Publish
	// is fire-and-forget: a failure never rolls back the created request.
	PublishFailures *atomic.Int64
}

// facilityWorkflow is the common shape of the category workflows: each one
// targets a resource category and differs only in that mapping.
type facilityWorkflow struct {
	deps     WorkflowDeps
	category resource.Category
}

// NewMedicalWorkflow routes medical emergencies to the nearest available
// medical facility.
func NewMedicalWorkflow(deps WorkflowDeps) Workflow {
	return &facilityWorkflow{deps: deps, category: resource.CategoryMedical}
}

// NewInfrastructureWorkflow routes infrastructure incidents to the nearest
// available supply depot.
func NewInfrastructureWorkflow(deps WorkflowDeps) Workflow {
	return &facilityWorkflow{deps: deps, category: resource.CategorySupplies}
}

// NewWeatherWorkflow routes weather incidents to the nearest available
// shelter.
func NewWeatherWorkflow(deps WorkflowDeps) Workflow {
	return &facilityWorkflow{deps: deps, category: resource.CategoryShelter}
}

func (w *facilityWorkflow) Process(ctx context.Context, inc Incident) (*resource.ResourceRequest, error) {
	facility, err := w.nearestFacility(ctx, inc.Location)
	if err != nil {
		return nil, err
	}
	if facility == nil {
		return nil, nil // unroutable, distinct from an error
	}

	req := &resource.ResourceRequest{
		ID:         uuid.New(),
		ResourceID: &facility.ID,
		Quantity:   1,
		Location:   inc.Location,
		Status:     resource.RequestPending,
		Priority:   inc.Severity.Priority(),
	}
	if err := w.deps.Store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	w.notifyTeam(ctx, facility.ID, inc, req)
	return req, nil
}

// nearestFacility returns the closest available resource of the workflow's
// category, or nil when none qualifies.
func (w *facilityWorkflow) nearestFacility(ctx context.Context, loc geo.Point) (*resource.Resource, error) {
	candidates, err := w.deps.Store.ListByCategoryAndStatus(ctx, w.category, resource.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	var best *resource.Resource
	bestDistance := 0.0
	for _, c := range candidates {
		if !c.Location.Valid() {
			continue
		}
		d := geo.Distance(loc, c.Location)
		if best == nil || d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best, nil
}

// notifyTeam publishes to the facility's team channel. Failures are logged
// and counted, never surfaced to the routing caller.
func (w *facilityWorkflow) notifyTeam(ctx context.Context, facilityID uuid.UUID, inc Incident, req *resource.ResourceRequest) {
	msg, err := notify.NewMessage("team.notification", TeamNotification{
		IncidentID: inc.ID,
		RequestID:  req.ID,
		Category:   inc.Category,
		Severity:   inc.Severity,
		Location:   inc.Location,
	})
	if err == nil {
		err = w.deps.Bus.Publish(ctx, notify.TeamChannel(facilityID), msg)
	}
	if err != nil {
		if w.deps.PublishFailures != nil {
			w.deps.PublishFailures.Add(1)
		}
		log.Printf("incident %s: notify team %s failed: %v", inc.ID, facilityID, err)
	}
}
