package navigation

import (
	"context"
	"sync"
	"testing"
	"time"

	"findway/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	home    = models.Coordinate{Latitude: 52.3791, Longitude: 4.9003}
	moved   = models.Coordinate{Latitude: 52.3702, Longitude: 4.8952}
	station = models.Coordinate{Latitude: 52.0894, Longitude: 5.1101}
	museum  = models.Coordinate{Latitude: 52.3600, Longitude: 4.8852}
)

type fakePlaces struct {
	mu       sync.Mutex
	queries  []string
	results  map[string][]models.PlaceSuggestion
	gates    map[string]chan struct{}
	resolved map[string]models.Place
}

func newFakePlaces() *fakePlaces {
	return &fakePlaces{
		results:  make(map[string][]models.PlaceSuggestion),
		gates:    make(map[string]chan struct{}),
		resolved: make(map[string]models.Place),
	}
}

func (f *fakePlaces) Search(ctx context.Context, query string) []models.PlaceSuggestion {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := f.gates[query]
	result := f.results[query]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result
}

func (f *fakePlaces) Resolve(ctx context.Context, placeID string) (models.Place, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	place, ok := f.resolved[placeID]
	return place, ok
}

func (f *fakePlaces) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type routeCall struct {
	ctx         context.Context
	origin      models.Coordinate
	destination models.Coordinate
}

// fakeRoutes returns the straight line origin -> destination. Calls from an
// origin with a gate block until it is closed, ignoring cancellation.
type fakeRoutes struct {
	mu    sync.Mutex
	calls []routeCall
	gates map[models.Coordinate]chan struct{}
	fail  map[models.Coordinate]bool
}

func newFakeRoutes() *fakeRoutes {
	return &fakeRoutes{
		gates: make(map[models.Coordinate]chan struct{}),
		fail:  make(map[models.Coordinate]bool),
	}
}

func (f *fakeRoutes) FetchRoute(ctx context.Context, origin, destination models.Coordinate) models.RoutePath {
	f.mu.Lock()
	f.calls = append(f.calls, routeCall{ctx: ctx, origin: origin, destination: destination})
	gate := f.gates[origin]
	fail := f.fail[origin]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return models.RoutePath{}
	}
	return models.RoutePath{origin, destination}
}

func (f *fakeRoutes) gate(origin models.Coordinate) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[origin] = ch
	return ch
}

func (f *fakeRoutes) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRoutes) call(i int) routeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

type fakeNamer struct {
	name string
}

func (f fakeNamer) PlaceName(ctx context.Context, c models.Coordinate) string {
	return f.name
}

func startEngine(t *testing.T, places PlaceSearcher, routes RouteFetcher, namer PlaceNamer) *Engine {
	t.Helper()
	e := New(places, routes, namer, zerolog.Nop(), WithFetchTimeout(5*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("engine did not stop")
		}
	})
	return e
}

func waitFor(t *testing.T, e *Engine, cond func(models.NavigationSnapshot) bool) models.NavigationSnapshot {
	t.Helper()
	var last models.NavigationSnapshot
	require.Eventually(t, func() bool {
		last = e.Snapshot()
		return cond(last)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

// flush waits until every intent queued so far has been applied.
func flush(t *testing.T, e *Engine) {
	t.Helper()
	done := make(chan struct{})
	e.enqueue(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not drain its queue")
	}
}

func routeTo(d models.Coordinate) func(models.NavigationSnapshot) bool {
	return func(s models.NavigationSnapshot) bool {
		last, ok := s.Route.Last()
		return ok && last == d
	}
}
