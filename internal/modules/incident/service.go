package incident

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/notify"
)

// Router dispatches incidents to the workflow registered for their
// category. Registration happens at startup; routing itself never
// branches on category strings.
type Router struct {
	workflows       map[Category]Workflow
	publishFailures *atomic.Int64
}

func NewRouter() *Router {
	return &Router{
		workflows:       make(map[Category]Workflow),
		publishFailures: &atomic.Int64{},
	}
}

// Register binds a workflow to a category. Later registrations replace
// earlier ones.
func (r *Router) Register(category Category, wf Workflow) {
	r.workflows[category] = wf
}

// Deps returns the shared collaborators handed to workflow constructors,
// wiring them to this router's publish-failure counter.
func (r *Router) Deps(store Store, bus notify.Bus) WorkflowDeps {
	return WorkflowDeps{Store: store, Bus: bus, PublishFailures: r.publishFailures}
}

// PublishFailures reports how many team notifications failed to publish
// since startup.
func (r *Router) PublishFailures() int64 {
	return r.publishFailures.Load()
}

// Route validates the incoming incident and hands it to its category
// workflow. An unroutable incident is a normal outcome; only bad input or
// collaborator failures return errors.
func (r *Router) Route(ctx context.Context, req RouteIncidentRequest) (*RouteResult, error) {
	inc, err := r.validate(req)
	if err != nil {
		return nil, err
	}

	wf, ok := r.workflows[inc.Category]
	if !ok {
		return nil, apperr.Validation("category", fmt.Sprintf("no workflow registered for %q", inc.Category))
	}

	created, err := wf.Process(ctx, inc)
	if err != nil {
		return nil, fmt.Errorf("route incident %s: %w", inc.ID, err)
	}
	if created == nil {
		return &RouteResult{Unroutable: true}, nil
	}
	return &RouteResult{RequestID: &created.ID}, nil
}

func (r *Router) validate(req RouteIncidentRequest) (Incident, error) {
	inc := Incident{
		Category:    Category(req.Category),
		Severity:    Severity(req.Severity),
		Description: req.Description,
		Location:    req.Location,
		ReportedAt:  time.Now(),
	}
	if req.ID == "" {
		inc.ID = uuid.New()
	} else {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return Incident{}, apperr.Validation("id", "invalid incident id")
		}
		inc.ID = id
	}
	if !inc.Severity.Valid() {
		return Incident{}, apperr.Validation("severity", fmt.Sprintf("unknown severity %q", req.Severity))
	}
	if !inc.Location.Valid() {
		return Incident{}, apperr.Validation("location", "invalid coordinates")
	}
	return inc, nil
}
