// Package navigation holds the navigation session: one engine that owns the
// view state, serialises every intent on a single loop goroutine and publishes
// an immutable snapshot after each change.
package navigation

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"findway/internal/models"

	"github.com/rs/zerolog"
)

const (
	defaultFetchTimeout = 15 * time.Second
	commandBuffer       = 128

	// UnknownPlace names an accepted suggestion that carries no text.
	UnknownPlace = "Unknown Place"
)

// PlaceSearcher finds and resolves places.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) []models.PlaceSuggestion
	Resolve(ctx context.Context, placeID string) (models.Place, bool)
}

// RouteFetcher computes a route, returning an empty path on failure.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, origin, destination models.Coordinate) models.RoutePath
}

// PlaceNamer names a point on the map.
type PlaceNamer interface {
	PlaceName(ctx context.Context, c models.Coordinate) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetchTimeout bounds every collaborator call the engine starts.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fetchTimeout = d
		}
	}
}

// Engine is the navigation session. Intents may be called from any goroutine;
// they are queued and applied in order by Run.
type Engine struct {
	places PlaceSearcher
	routes RouteFetcher
	namer  PlaceNamer
	log    zerolog.Logger

	fetchTimeout time.Duration

	cmds    chan func()
	stopped chan struct{}
	running sync.Once
	workers sync.WaitGroup

	// Loop-owned state.
	runCtx       context.Context
	state        models.NavigationSnapshot
	force        bool
	search       request
	selection    request
	route        *routeRequest
	routeSeq     uint64
	appliedRoute uint64

	mu        sync.RWMutex
	published models.NavigationSnapshot
	subs      map[int]chan models.NavigationSnapshot
	nextSub   int
	closed    bool
}

// request tags one kind of asynchronous work; only the latest may apply.
type request struct {
	seq    uint64
	cancel context.CancelFunc
}

func (r *request) next(parent context.Context, timeout time.Duration) (context.Context, uint64) {
	r.stop()
	r.seq++
	ctx, cancel := context.WithTimeout(parent, timeout)
	r.cancel = cancel
	return ctx, r.seq
}

// stop cancels pending work and invalidates its result.
func (r *request) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
}

func (r *request) current(seq uint64) bool {
	return r.seq == seq
}

// done releases the context of a request whose result has been applied.
func (r *request) done() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

type routeRequest struct {
	seq         uint64
	origin      models.Coordinate
	destination models.Coordinate
	cancel      context.CancelFunc
}

// New creates an engine. Nothing is applied until Run is called: intents made
// before that are queued, and once commandBuffer of them are waiting further
// intents block until Run starts draining the queue.
func New(places PlaceSearcher, routes RouteFetcher, namer PlaceNamer, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		places:       places,
		routes:       routes,
		namer:        namer,
		log:          logger.With().Str("component", "navigation").Logger(),
		fetchTimeout: defaultFetchTimeout,
		cmds:         make(chan func(), commandBuffer),
		stopped:      make(chan struct{}),
		state:        models.NewNavigationSnapshot(),
		published:    models.NewNavigationSnapshot(),
		subs:         make(map[int]chan models.NavigationSnapshot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run applies queued intents until ctx ends. It cancels outstanding work and
// closes every subscription before returning.
func (e *Engine) Run(ctx context.Context) error {
	started := false
	e.running.Do(func() { started = true })
	if !started {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.runCtx = runCtx
	e.log.Info().Msg("navigation engine started")

	defer func() {
		close(e.stopped)
		cancel()
		e.workers.Wait()
		e.closeSubscribers()
		e.log.Info().Msg("navigation engine stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-e.cmds:
			cmd()
			e.commit()
		}
	}
}

// Snapshot returns the most recently published state.
func (e *Engine) Snapshot() models.NavigationSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published.Clone()
}

// Subscribe returns a channel that receives the current snapshot and then every
// change. A slow reader skips straight to the newest snapshot. The returned
// function ends the subscription.
func (e *Engine) Subscribe() (<-chan models.NavigationSnapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan models.NavigationSnapshot, 1)
	if e.closed {
		close(ch)
		return ch, func() {}
	}

	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	ch <- e.published.Clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if _, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(ch)
			}
		})
	}
}

// OnLocationUpdate records a new device fix as the current location and route
// origin. With a destination set the route is refetched from the new origin.
func (e *Engine) OnLocationUpdate(c models.Coordinate) {
	e.enqueue(func() {
		if err := c.Validate(); err != nil {
			e.log.Warn().Err(err).Msg("ignoring invalid location update")
			return
		}
		e.state.CurrentLocation = c.Ptr()
		e.state.Origin = c.Ptr()
		if e.state.Destination != nil {
			e.requestRoute()
		}
	})
}

// OnMapTap previews the tapped point under its reverse-geocoded name.
func (e *Engine) OnMapTap(c models.Coordinate) {
	e.enqueue(func() {
		if err := c.Validate(); err != nil {
			e.log.Warn().Err(err).Msg("ignoring invalid map tap")
			return
		}

		ctx, seq := e.selection.next(e.runCtx, e.fetchTimeout)
		e.spawn(func() func() {
			name := e.namer.PlaceName(ctx, c)
			return func() {
				if !e.selection.current(seq) {
					e.log.Debug().Str("coordinate", c.String()).Msg("discarding superseded map tap")
					return
				}
				e.selection.done()
				e.state.SelectedPlace = &models.SelectedPlace{
					Coordinate:           c,
					DisplayName:          name,
					AwaitingConfirmation: true,
				}
			}
		})
	})
}

// OnSearchTextChanged replaces the suggestions with those matching text. Blank
// text clears them without a lookup.
func (e *Engine) OnSearchTextChanged(text string) {
	e.enqueue(func() {
		if strings.TrimSpace(text) == "" {
			e.search.stop()
			e.state.Suggestions = []models.PlaceSuggestion{}
			return
		}

		ctx, seq := e.search.next(e.runCtx, e.fetchTimeout)
		e.spawn(func() func() {
			suggestions := e.places.Search(ctx, text)
			return func() {
				if !e.search.current(seq) {
					e.log.Debug().Str("query", text).Msg("discarding superseded search")
					return
				}
				e.search.done()
				if suggestions == nil {
					suggestions = []models.PlaceSuggestion{}
				}
				e.state.Suggestions = suggestions
			}
		})
	})
}

// OnSuggestionAccepted clears the suggestions and selects the resolved place.
// When the device position is already known the place becomes the destination
// straight away.
func (e *Engine) OnSuggestionAccepted(s models.PlaceSuggestion) {
	e.enqueue(func() {
		e.search.stop()
		e.state.Suggestions = []models.PlaceSuggestion{}

		ctx, seq := e.selection.next(e.runCtx, e.fetchTimeout)
		e.spawn(func() func() {
			place, ok := e.places.Resolve(ctx, s.ID)
			return func() {
				if !e.selection.current(seq) {
					e.log.Debug().Str("place_id", s.ID).Msg("discarding superseded suggestion")
					return
				}
				e.selection.done()
				if !ok {
					return
				}
				e.state.SelectedPlace = &models.SelectedPlace{
					Coordinate:           place.Coordinate,
					DisplayName:          suggestionName(place, s),
					AwaitingConfirmation: true,
				}
				if e.state.Origin != nil {
					e.confirm()
				}
			}
		})
	})
}

// OnConfirmDestination starts guidance to the selected place. It does nothing
// when no place is selected.
func (e *Engine) OnConfirmDestination() {
	e.enqueue(func() {
		if e.state.SelectedPlace == nil {
			e.log.Debug().Msg("confirm without a selected place")
			return
		}
		e.confirm()
	})
}

// OnEndGuidance returns the session to idle. Calling it again has no effect.
func (e *Engine) OnEndGuidance() {
	e.enqueue(func() {
		e.cancelRoute()
		e.selection.stop()
		e.state.Destination = nil
		e.state.SelectedPlace = nil
		e.state.Route = models.RoutePath{}
	})
}

// Recenter points the camera at the current location.
func (e *Engine) Recenter() {
	e.enqueue(func() {
		if e.state.CurrentLocation == nil {
			return
		}
		e.state.Camera = &models.Camera{Target: *e.state.CurrentLocation, Zoom: models.DefaultZoom}
		e.force = true
	})
}

func (e *Engine) confirm() {
	selected := *e.state.SelectedPlace
	destination := selected.Coordinate

	if !models.SameCoordinate(e.state.Destination, &destination) {
		e.cancelRoute()
		e.state.Route = models.RoutePath{}
	}
	e.state.Destination = destination.Ptr()
	selected.AwaitingConfirmation = false
	e.state.SelectedPlace = &selected

	e.search.stop()
	e.state.Suggestions = []models.PlaceSuggestion{}

	e.requestRoute()
}

// requestRoute fetches a route for the current pair, superseding any fetch in
// flight. Without an origin the fetch waits for the next location update.
func (e *Engine) requestRoute() {
	if e.state.Origin == nil || e.state.Destination == nil {
		return
	}
	e.cancelRoute()

	origin, destination := *e.state.Origin, *e.state.Destination
	e.routeSeq++
	ctx, cancel := context.WithTimeout(e.runCtx, e.fetchTimeout)
	req := &routeRequest{seq: e.routeSeq, origin: origin, destination: destination, cancel: cancel}
	e.route = req

	e.spawn(func() func() {
		path := e.routes.FetchRoute(ctx, origin, destination)
		return func() { e.applyRoute(req, path) }
	})
}

func (e *Engine) applyRoute(req *routeRequest, path models.RoutePath) {
	req.cancel()
	if e.route != req {
		e.log.Debug().Uint64("seq", req.seq).Msg("discarding cancelled route")
		return
	}
	e.route = nil

	if !models.SameCoordinate(e.state.Origin, &req.origin) || !models.SameCoordinate(e.state.Destination, &req.destination) {
		e.log.Debug().Uint64("seq", req.seq).Msg("discarding route for a stale pair")
		return
	}
	if req.seq <= e.appliedRoute {
		e.log.Debug().Uint64("seq", req.seq).Msg("discarding superseded route")
		return
	}
	if len(path) == 0 {
		e.log.Info().Uint64("seq", req.seq).Msg("no route found, keeping previous route")
		return
	}

	e.appliedRoute = req.seq
	e.state.Route = path.Clone()
}

func (e *Engine) cancelRoute() {
	if e.route != nil {
		e.route.cancel()
		e.route = nil
	}
}

// spawn runs work off the loop and queues the closure it returns.
func (e *Engine) spawn(work func() func()) {
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		if apply := work(); apply != nil {
			e.enqueue(apply)
		}
	}()
}

func (e *Engine) enqueue(cmd func()) {
	select {
	case e.cmds <- cmd:
	case <-e.stopped:
	}
}

// commit derives the computed fields and publishes the state if it changed.
func (e *Engine) commit() {
	e.derive()

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.published
	e.state.Version = prev.Version
	if !e.force && reflect.DeepEqual(e.state, prev) {
		return
	}
	e.force = false
	e.state.Version = prev.Version + 1
	e.published = e.state.Clone()

	for _, ch := range e.subs {
		deliverLatest(ch, e.published.Clone())
	}
}

func (e *Engine) derive() {
	s := &e.state
	prev := e.published

	s.GuidanceActive = s.Destination != nil
	s.ShowStartMarker = s.Destination == nil

	switch {
	case s.Destination != nil && e.route != nil:
		s.Phase = models.PhaseRerouting
	case s.Destination != nil:
		s.Phase = models.PhaseGuiding
	case s.SelectedPlace != nil && s.SelectedPlace.AwaitingConfirmation:
		s.Phase = models.PhasePreviewing
	default:
		s.Phase = models.PhaseIdle
	}

	if !models.SameCoordinate(prev.CurrentLocation, s.CurrentLocation) || !reflect.DeepEqual(prev.Route, s.Route) {
		s.Camera = followCamera(s)
	}
}

func followCamera(s *models.NavigationSnapshot) *models.Camera {
	if last, ok := s.Route.Last(); ok {
		return &models.Camera{Target: last, Zoom: models.DefaultZoom}
	}
	if s.CurrentLocation != nil {
		return &models.Camera{Target: *s.CurrentLocation, Zoom: models.DefaultZoom}
	}
	return nil
}

func (e *Engine) closeSubscribers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
}

func suggestionName(place models.Place, s models.PlaceSuggestion) string {
	if name := strings.TrimSpace(place.Address); name != "" {
		return name
	}
	if name := strings.TrimSpace(s.DisplayText); name != "" {
		return name
	}
	return UnknownPlace
}

func deliverLatest(ch chan models.NavigationSnapshot, s models.NavigationSnapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
