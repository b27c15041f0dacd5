package navigation

import (
	"context"
	"testing"
	"time"

	"findway/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_MapTapToGuidance(t *testing.T) {
	routes := newFakeRoutes()
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{name: "Stationsplein 1, Utrecht"})

	e.OnLocationUpdate(home)
	s := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.CurrentLocation != nil })
	assert.Equal(t, models.PhaseIdle, s.Phase)
	assert.Equal(t, home, *s.Origin)
	require.NotNil(t, s.Camera)
	assert.Equal(t, models.Camera{Target: home, Zoom: models.DefaultZoom}, *s.Camera)

	e.OnMapTap(station)
	s = waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	assert.Equal(t, models.PhasePreviewing, s.Phase)
	assert.Equal(t, models.SelectedPlace{
		Coordinate:           station,
		DisplayName:          "Stationsplein 1, Utrecht",
		AwaitingConfirmation: true,
	}, *s.SelectedPlace)
	assert.Nil(t, s.Destination)
	assert.True(t, s.ShowStartMarker)
	assert.Zero(t, routes.callCount())

	e.OnConfirmDestination()
	s = waitFor(t, e, routeTo(station))
	assert.Equal(t, models.RoutePath{home, station}, s.Route)
	assert.Equal(t, station, *s.Destination)
	assert.Equal(t, models.PhaseGuiding, s.Phase)
	assert.True(t, s.GuidanceActive)
	assert.False(t, s.ShowStartMarker)
	assert.False(t, s.SelectedPlace.AwaitingConfirmation)
	assert.Equal(t, station, s.Camera.Target)
	assert.Equal(t, 1, routes.callCount())
}

func TestEngine_SuggestionAcceptedWithoutOrigin(t *testing.T) {
	places := newFakePlaces()
	suggestion := models.PlaceSuggestion{ID: "rijks", DisplayText: "Rijksmuseum"}
	places.results["rijks"] = []models.PlaceSuggestion{suggestion}
	places.resolved["rijks"] = models.Place{Coordinate: museum, Address: "Museumstraat 1, Amsterdam"}
	routes := newFakeRoutes()
	e := startEngine(t, places, routes, fakeNamer{})

	e.OnSearchTextChanged("rijks")
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return len(s.Suggestions) == 1 })

	e.OnSuggestionAccepted(suggestion)
	s := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	assert.Empty(t, s.Suggestions)
	assert.Nil(t, s.Destination)
	assert.Equal(t, "Museumstraat 1, Amsterdam", s.SelectedPlace.DisplayName)
	assert.True(t, s.SelectedPlace.AwaitingConfirmation)
	assert.Equal(t, models.PhasePreviewing, s.Phase)

	e.OnLocationUpdate(home)
	flush(t, e)
	assert.Zero(t, routes.callCount())

	e.OnConfirmDestination()
	s = waitFor(t, e, routeTo(museum))
	assert.Equal(t, models.RoutePath{home, museum}, s.Route)
}

func TestEngine_ConfirmBeforeFirstFix(t *testing.T) {
	routes := newFakeRoutes()
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{name: "Museumplein"})

	e.OnMapTap(museum)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })

	e.OnConfirmDestination()
	s := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.Destination != nil })
	assert.Equal(t, models.PhaseGuiding, s.Phase)
	assert.Empty(t, s.Route)
	assert.Zero(t, routes.callCount())

	e.OnLocationUpdate(home)
	s = waitFor(t, e, routeTo(museum))
	assert.Equal(t, models.RoutePath{home, museum}, s.Route)
}

func TestEngine_SuggestionAcceptedWithOrigin(t *testing.T) {
	places := newFakePlaces()
	places.resolved["rijks"] = models.Place{Coordinate: museum, Address: "Museumstraat 1, Amsterdam"}
	e := startEngine(t, places, newFakeRoutes(), fakeNamer{})

	e.OnLocationUpdate(home)
	e.OnSuggestionAccepted(models.PlaceSuggestion{ID: "rijks", DisplayText: "Rijksmuseum"})

	s := waitFor(t, e, routeTo(museum))
	assert.Equal(t, museum, *s.Destination)
	assert.True(t, s.GuidanceActive)
	assert.False(t, s.SelectedPlace.AwaitingConfirmation)
}

func TestEngine_SuggestionName(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		suggestion string
		expected   string
	}{
		{name: "address", address: "Museumstraat 1", suggestion: "Rijksmuseum", expected: "Museumstraat 1"},
		{name: "suggestion text", address: "", suggestion: "Rijksmuseum", expected: "Rijksmuseum"},
		{name: "unknown", address: " ", suggestion: "", expected: UnknownPlace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			places := newFakePlaces()
			places.resolved["p"] = models.Place{Coordinate: museum, Address: tt.address}
			e := startEngine(t, places, newFakeRoutes(), fakeNamer{})

			e.OnSuggestionAccepted(models.PlaceSuggestion{ID: "p", DisplayText: tt.suggestion})

			s := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
			assert.Equal(t, tt.expected, s.SelectedPlace.DisplayName)
		})
	}
}

func TestEngine_UnresolvedSuggestion(t *testing.T) {
	e := startEngine(t, newFakePlaces(), newFakeRoutes(), fakeNamer{})

	e.OnSuggestionAccepted(models.PlaceSuggestion{ID: "missing", DisplayText: "Nowhere"})
	flush(t, e)

	assert.Never(t, func() bool { return e.Snapshot().SelectedPlace != nil }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_EmptySearch(t *testing.T) {
	places := newFakePlaces()
	places.results["dam"] = []models.PlaceSuggestion{{ID: "1", DisplayText: "Dam"}}
	e := startEngine(t, places, newFakeRoutes(), fakeNamer{})

	e.OnSearchTextChanged("dam")
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return len(s.Suggestions) == 1 })

	e.OnSearchTextChanged("   ")
	flush(t, e)

	s := e.Snapshot()
	assert.NotNil(t, s.Suggestions)
	assert.Empty(t, s.Suggestions)
	assert.Equal(t, 1, places.searchCount())
}

func TestEngine_SupersededSearch(t *testing.T) {
	places := newFakePlaces()
	slow := make(chan struct{})
	places.gates["da"] = slow
	places.results["da"] = []models.PlaceSuggestion{{ID: "old", DisplayText: "Dapperstraat"}}
	places.results["dam"] = []models.PlaceSuggestion{{ID: "new", DisplayText: "Dam"}}
	e := startEngine(t, places, newFakeRoutes(), fakeNamer{})

	e.OnSearchTextChanged("da")
	e.OnSearchTextChanged("dam")
	waitFor(t, e, func(s models.NavigationSnapshot) bool {
		return len(s.Suggestions) == 1 && s.Suggestions[0].ID == "new"
	})

	close(slow)
	assert.Never(t, func() bool {
		s := e.Snapshot()
		return len(s.Suggestions) == 1 && s.Suggestions[0].ID == "old"
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_LatestRouteWins(t *testing.T) {
	routes := newFakeRoutes()
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{name: "Utrecht Centraal"})

	e.OnLocationUpdate(home)
	e.OnMapTap(station)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })

	first := routes.gate(home)
	second := routes.gate(moved)
	e.OnConfirmDestination()
	s := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.Phase == models.PhaseRerouting })
	assert.Empty(t, s.Route)

	e.OnLocationUpdate(moved)
	require.Eventually(t, func() bool { return routes.callCount() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Error(t, routes.call(0).ctx.Err())

	close(second)
	s = waitFor(t, e, routeTo(station))
	assert.Equal(t, models.RoutePath{moved, station}, s.Route)
	assert.Equal(t, models.PhaseGuiding, s.Phase)

	close(first)
	assert.Never(t, func() bool {
		return e.Snapshot().Route[0] == home
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_FailedRerouteKeepsRoute(t *testing.T) {
	routes := newFakeRoutes()
	routes.fail[moved] = true
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{name: "Utrecht Centraal"})

	e.OnLocationUpdate(home)
	e.OnMapTap(station)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	e.OnConfirmDestination()
	waitFor(t, e, routeTo(station))

	e.OnLocationUpdate(moved)
	s := waitFor(t, e, func(s models.NavigationSnapshot) bool {
		return s.Origin != nil && *s.Origin == moved && s.Phase == models.PhaseGuiding
	})
	assert.Equal(t, 2, routes.callCount())
	assert.Equal(t, models.RoutePath{home, station}, s.Route)
}

func TestEngine_EndGuidance(t *testing.T) {
	routes := newFakeRoutes()
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{name: "Utrecht Centraal"})

	e.OnLocationUpdate(home)
	e.OnMapTap(station)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	e.OnConfirmDestination()
	waitFor(t, e, routeTo(station))

	e.OnEndGuidance()
	ended := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.Phase == models.PhaseIdle })
	assert.Nil(t, ended.Destination)
	assert.Nil(t, ended.SelectedPlace)
	assert.Empty(t, ended.Route)
	assert.False(t, ended.GuidanceActive)
	assert.True(t, ended.ShowStartMarker)
	assert.Equal(t, home, ended.Camera.Target)
	assert.Equal(t, home, *ended.CurrentLocation)

	e.OnEndGuidance()
	flush(t, e)
	assert.Equal(t, ended, e.Snapshot())
}

func TestEngine_EndGuidanceCancelsFetch(t *testing.T) {
	routes := newFakeRoutes()
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{name: "Utrecht Centraal"})
	gate := routes.gate(home)

	e.OnLocationUpdate(home)
	e.OnMapTap(station)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	e.OnConfirmDestination()
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.Phase == models.PhaseRerouting })

	e.OnEndGuidance()
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.Phase == models.PhaseIdle })
	assert.Error(t, routes.call(0).ctx.Err())

	close(gate)
	assert.Never(t, func() bool { return len(e.Snapshot().Route) > 0 }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestEngine_ConfirmWithoutSelection(t *testing.T) {
	routes := newFakeRoutes()
	e := startEngine(t, newFakePlaces(), routes, fakeNamer{})

	e.OnLocationUpdate(home)
	flush(t, e)
	before := e.Snapshot()

	e.OnConfirmDestination()
	flush(t, e)

	assert.Equal(t, before, e.Snapshot())
	assert.Zero(t, routes.callCount())
}

func TestEngine_InvalidInputIgnored(t *testing.T) {
	e := startEngine(t, newFakePlaces(), newFakeRoutes(), fakeNamer{name: "x"})

	e.OnLocationUpdate(models.Coordinate{Latitude: 91, Longitude: 0})
	e.OnMapTap(models.Coordinate{Latitude: 0, Longitude: -181})
	flush(t, e)

	assert.Equal(t, uint64(0), e.Snapshot().Version)
}

func TestEngine_Recenter(t *testing.T) {
	e := startEngine(t, newFakePlaces(), newFakeRoutes(), fakeNamer{name: "Utrecht Centraal"})

	e.Recenter()
	flush(t, e)
	assert.Nil(t, e.Snapshot().Camera)

	e.OnLocationUpdate(home)
	e.OnMapTap(station)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	e.OnConfirmDestination()
	s := waitFor(t, e, routeTo(station))
	assert.Equal(t, station, s.Camera.Target)

	e.Recenter()
	flush(t, e)
	recentered := e.Snapshot()
	assert.Equal(t, models.Camera{Target: home, Zoom: models.DefaultZoom}, *recentered.Camera)
	assert.Greater(t, recentered.Version, s.Version)

	e.Recenter()
	flush(t, e)
	assert.Greater(t, e.Snapshot().Version, recentered.Version)
}

func TestEngine_Subscribe(t *testing.T) {
	e := New(newFakePlaces(), newFakeRoutes(), fakeNamer{name: "Utrecht Centraal"}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	ch, unsubscribe := e.Subscribe()
	initial := <-ch
	assert.Equal(t, uint64(0), initial.Version)
	assert.Equal(t, models.PhaseIdle, initial.Phase)

	e.OnLocationUpdate(home)
	select {
	case s := <-ch:
		assert.Equal(t, home, *s.CurrentLocation)
		assert.Equal(t, uint64(1), s.Version)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after location update")
	}

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	other, _ := e.Subscribe()
	cancel()
	require.NoError(t, <-done)
	for range other {
	}

	closed, _ := e.Subscribe()
	_, open = <-closed
	assert.False(t, open)
}

func TestEngine_PublishedSnapshotsAreConsistent(t *testing.T) {
	places := newFakePlaces()
	places.resolved["rijks"] = models.Place{Coordinate: museum, Address: "Museumstraat 1"}
	routes := newFakeRoutes()
	e := startEngine(t, places, routes, fakeNamer{name: "Utrecht Centraal"})

	ch, unsubscribe := e.Subscribe()
	defer unsubscribe()

	checked := make(chan struct{})
	go func() {
		defer close(checked)
		var version uint64
		for s := range ch {
			if s.Version > 0 {
				assert.Greater(t, s.Version, version)
			}
			version = s.Version
			if last, ok := s.Route.Last(); ok {
				if assert.NotNil(t, s.Destination) {
					assert.Equal(t, *s.Destination, last)
				}
			}
			assert.Equal(t, s.Destination != nil, s.GuidanceActive)
			assert.Equal(t, s.Destination == nil, s.ShowStartMarker)
			if s.Phase == models.PhasePreviewing {
				assert.Nil(t, s.Destination)
			}
			if s.Phase == models.PhaseIdle {
				assert.Empty(t, s.Route)
			}
		}
	}()

	e.OnLocationUpdate(home)
	e.OnMapTap(station)
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.SelectedPlace != nil })
	e.OnConfirmDestination()
	e.OnLocationUpdate(moved)
	e.OnSuggestionAccepted(models.PlaceSuggestion{ID: "rijks"})
	waitFor(t, e, routeTo(museum))
	e.OnEndGuidance()
	waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.Phase == models.PhaseIdle })

	unsubscribe()
	<-checked
}

func TestEngine_RunTwice(t *testing.T) {
	e := startEngine(t, newFakePlaces(), newFakeRoutes(), fakeNamer{})
	flush(t, e)

	assert.ErrorIs(t, e.Run(context.Background()), ErrAlreadyRunning)
}

func TestEngine_IntentsBeforeRun(t *testing.T) {
	e := New(newFakePlaces(), newFakeRoutes(), fakeNamer{name: "Museumplein"}, zerolog.Nop())

	queued := make(chan struct{})
	go func() {
		defer close(queued)
		for i := 0; i < commandBuffer-1; i++ {
			e.OnSearchTextChanged("")
		}
		e.OnLocationUpdate(home)
	}()
	select {
	case <-queued:
	case <-time.After(2 * time.Second):
		t.Fatal("intents blocked before the queue was full")
	}
	assert.Nil(t, e.Snapshot().CurrentLocation)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	s := waitFor(t, e, func(s models.NavigationSnapshot) bool { return s.CurrentLocation != nil })
	assert.Equal(t, home, *s.CurrentLocation)

	cancel()
	require.NoError(t, <-done)
}
