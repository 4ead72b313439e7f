package incident

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/notify"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/resource"
)

type fakeStore struct {
	facilities map[resource.Category][]*resource.Resource
	created    []*resource.ResourceRequest
	listErr    error
}

func (f *fakeStore) ListByCategoryAndStatus(_ context.Context, category resource.Category, status resource.Status) ([]*resource.Resource, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*resource.Resource
	for _, r := range f.facilities[category] {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRequest(_ context.Context, req *resource.ResourceRequest) error {
	f.created = append(f.created, req)
	return nil
}

// failingBus rejects every publish; Subscribe is never exercised here.
type failingBus struct{}

func (failingBus) Publish(context.Context, string, notify.Message) error {
	return errors.New("broker down")
}

func (failingBus) Subscribe(context.Context, string) (<-chan notify.Message, func()) {
	ch := make(chan notify.Message)
	close(ch)
	return ch, func() {}
}

func facility(category resource.Category, lon, lat float64) *resource.Resource {
	return &resource.Resource{
		ID:       uuid.New(),
		Name:     "facility",
		Category: category,
		Status:   resource.StatusAvailable,
		Capacity: 50,
		Location: geo.Point{Lon: lon, Lat: lat},
	}
}

func newTestRouter(store *fakeStore, bus notify.Bus) *Router {
	r := NewRouter()
	deps := r.Deps(store, bus)
	r.Register(CategoryMedical, NewMedicalWorkflow(deps))
	r.Register(CategoryInfrastructure, NewInfrastructureWorkflow(deps))
	r.Register(CategoryWeather, NewWeatherWorkflow(deps))
	return r
}

func TestRoutePicksNearestAvailableFacility(t *testing.T) {
	near := facility(resource.CategoryMedical, -61.0, 13.0)
	far := facility(resource.CategoryMedical, -63.0, 15.0)
	busy := facility(resource.CategoryMedical, -61.0, 13.0)
	busy.Status = resource.StatusAssigned

	store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{
		resource.CategoryMedical: {far, busy, near},
	}}
	router := newTestRouter(store, notify.NewMemoryBus())

	res, err := router.Route(context.Background(), RouteIncidentRequest{
		Category: "medical",
		Severity: "high",
		Location: geo.Point{Lon: -61.1, Lat: 13.1},
	})
	require.NoError(t, err)
	assert.False(t, res.Unroutable)
	require.NotNil(t, res.RequestID)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, *res.RequestID, created.ID)
	require.NotNil(t, created.ResourceID)
	assert.Equal(t, near.ID, *created.ResourceID)
	assert.Equal(t, resource.RequestPending, created.Status)
}

func TestRouteSeverityDrivesPriority(t *testing.T) {
	tests := []struct {
		severity string
		want     int
	}{
		{"low", 1},
		{"moderate", 2},
		{"high", 3},
		{"extreme", 4},
	}
	for _, tt := range tests {
		store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{
			resource.CategoryShelter: {facility(resource.CategoryShelter, -61, 13)},
		}}
		router := newTestRouter(store, notify.NewMemoryBus())

		_, err := router.Route(context.Background(), RouteIncidentRequest{
			Category: "weather",
			Severity: tt.severity,
			Location: geo.Point{Lon: -61, Lat: 13},
		})
		require.NoError(t, err)
		require.Len(t, store.created, 1)
		assert.Equal(t, tt.want, store.created[0].Priority, "severity %s", tt.severity)
	}
}

func TestRouteCategoryTargetsItsFacilityKind(t *testing.T) {
	medical := facility(resource.CategoryMedical, -61, 13)
	supplies := facility(resource.CategorySupplies, -61, 13)
	shelter := facility(resource.CategoryShelter, -61, 13)

	store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{
		resource.CategoryMedical:  {medical},
		resource.CategorySupplies: {supplies},
		resource.CategoryShelter:  {shelter},
	}}
	router := newTestRouter(store, notify.NewMemoryBus())

	want := map[string]uuid.UUID{
		"medical":        medical.ID,
		"infrastructure": supplies.ID,
		"weather":        shelter.ID,
	}
	for category, facilityID := range want {
		store.created = nil
		_, err := router.Route(context.Background(), RouteIncidentRequest{
			Category: category,
			Severity: "moderate",
			Location: geo.Point{Lon: -61, Lat: 13},
		})
		require.NoError(t, err)
		require.Len(t, store.created, 1, "category %s", category)
		assert.Equal(t, facilityID, *store.created[0].ResourceID, "category %s", category)
	}
}

func TestRouteUnroutableWhenNoFacilityAvailable(t *testing.T) {
	store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{}}
	router := newTestRouter(store, notify.NewMemoryBus())

	res, err := router.Route(context.Background(), RouteIncidentRequest{
		Category: "medical",
		Severity: "extreme",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	require.NoError(t, err, "unroutable is an outcome, not an error")
	assert.True(t, res.Unroutable)
	assert.Nil(t, res.RequestID)
	assert.Empty(t, store.created, "no request is opened for an unroutable incident")
}

func TestRouteSkipsFacilitiesWithBadCoordinates(t *testing.T) {
	broken := facility(resource.CategoryMedical, -200, 95)
	ok := facility(resource.CategoryMedical, -62, 14)

	store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{
		resource.CategoryMedical: {broken, ok},
	}}
	router := newTestRouter(store, notify.NewMemoryBus())

	res, err := router.Route(context.Background(), RouteIncidentRequest{
		Category: "medical",
		Severity: "high",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	require.NoError(t, err)
	require.NotNil(t, res.RequestID)
	assert.Equal(t, ok.ID, *store.created[0].ResourceID)
}

func TestRoutePublishesToTeamChannel(t *testing.T) {
	fac := facility(resource.CategoryShelter, -61, 13)
	store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{
		resource.CategoryShelter: {fac},
	}}
	bus := notify.NewMemoryBus()
	msgs, cancel := bus.Subscribe(context.Background(), notify.TeamChannel(fac.ID))
	defer cancel()

	router := newTestRouter(store, bus)
	res, err := router.Route(context.Background(), RouteIncidentRequest{
		Category: "weather",
		Severity: "extreme",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "team.notification", msg.Type)
		assert.Contains(t, string(msg.Payload), res.RequestID.String())
	default:
		t.Fatal("expected a team notification on the facility channel")
	}
}

func TestRoutePublishFailureDoesNotFailRouting(t *testing.T) {
	store := &fakeStore{facilities: map[resource.Category][]*resource.Resource{
		resource.CategoryMedical: {facility(resource.CategoryMedical, -61, 13)},
	}}
	router := newTestRouter(store, failingBus{})

	res, err := router.Route(context.Background(), RouteIncidentRequest{
		Category: "medical",
		Severity: "high",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	require.NoError(t, err, "a dead broker never blocks routing")
	require.NotNil(t, res.RequestID)
	require.Len(t, store.created, 1, "the request survives the failed publish")
	assert.Equal(t, int64(1), router.PublishFailures())
}

func TestRouteValidation(t *testing.T) {
	router := newTestRouter(&fakeStore{}, notify.NewMemoryBus())
	ctx := context.Background()

	_, err := router.Route(ctx, RouteIncidentRequest{
		Category: "medical", Severity: "catastrophic",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	assert.True(t, apperr.IsValidation(err), "unknown severity is rejected")

	_, err = router.Route(ctx, RouteIncidentRequest{
		Category: "medical", Severity: "high",
		Location: geo.Point{Lon: -200, Lat: 13},
	})
	assert.True(t, apperr.IsValidation(err), "out-of-range coordinates are rejected")

	_, err = router.Route(ctx, RouteIncidentRequest{
		Category: "earthquake", Severity: "high",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	assert.True(t, apperr.IsValidation(err), "unregistered category is rejected")

	_, err = router.Route(ctx, RouteIncidentRequest{
		ID: "not-a-uuid", Category: "medical", Severity: "high",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	assert.True(t, apperr.IsValidation(err), "malformed incident id is rejected")
}

func TestRouteStoreErrorSurfaces(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection reset")}
	router := newTestRouter(store, notify.NewMemoryBus())

	_, err := router.Route(context.Background(), RouteIncidentRequest{
		Category: "medical", Severity: "high",
		Location: geo.Point{Lon: -61, Lat: 13},
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}
