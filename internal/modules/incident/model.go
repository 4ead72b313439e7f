package incident

import (
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

// Category selects which workflow handles an incident. New categories are
// registered on the router at startup, not hard-coded at call sites.
type Category string

const (
	CategoryMedical        Category = "medical"
	CategoryInfrastructure Category = "infrastructure"
	CategoryWeather        Category = "weather"
)

// Severity grades an incident. Priority derivation is a fixed monotone
// mapping: a more severe incident always yields a higher request priority.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityExtreme  Severity = "extreme"
)

var severityPriority = map[Severity]int{
	SeverityLow:      1,
	SeverityModerate: 2,
	SeverityHigh:     3,
	SeverityExtreme:  4,
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	_, ok := severityPriority[s]
	return ok
}

// Priority returns the request priority derived from s.
func (s Severity) Priority() int {
	return severityPriority[s]
}

// Incident is a reported event awaiting routing. Lifecycle per incident:
// Reported -> Routed -> (Assigned | Unroutable).
type Incident struct {
	ID          uuid.UUID `json:"id"`
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description,omitempty"`
	Location    geo.Point `json:"location"`
	ReportedAt  time.Time `json:"reported_at"`
}

// RouteResult is the routing outcome. Unroutable means no qualified
// resource is currently available; it is an outcome, not an error.
type RouteResult struct {
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
	Unroutable bool       `json:"unroutable,omitempty"`
}

// TeamNotification is the payload published to the chosen resource's team
// channel after a request is opened.
type TeamNotification struct {
	IncidentID uuid.UUID `json:"incident_id"`
	RequestID  uuid.UUID `json:"request_id"`
	Category   Category  `json:"category"`
	Severity   Severity  `json:"severity"`
	Location   geo.Point `json:"location"`
}

// RouteIncidentRequest is the payload from the incident-ingestion
// collaborator.
type RouteIncidentRequest struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Description string    `json:"description,omitempty"`
	Location    geo.Point `json:"location"`
}
