package service

import (
	"context"
	"sync"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/rs/zerolog"
)

// LocationSource wraps the device positioning service. Permission denial and
// provider failures are reported and never surfaced to callers.
type LocationSource struct {
	provider LocationProvider
	reporter Reporter
	log      zerolog.Logger
}

// NewLocationSource creates a new location source
func NewLocationSource(provider LocationProvider, reporter Reporter, logger zerolog.Logger) *LocationSource {
	return &LocationSource{
		provider: provider,
		reporter: reporterOrNop(reporter),
		log:      logger.With().Str("component", "location_source").Logger(),
	}
}

// RequestOnce returns a single fix. The boolean is false when no fix was
// obtained before ctx ended or permission is missing.
func (s *LocationSource) RequestOnce(ctx context.Context, req models.LocationRequest) (models.Coordinate, bool) {
	c, err := s.provider.RequestOnce(ctx, req)
	if err != nil {
		s.reporter.Report("request_location", err)
		return models.Coordinate{}, false
	}
	if err := c.Validate(); err != nil {
		s.reporter.Report("request_location", apperr.Wrap(apperr.KindProviderFailure, "request_location", err))
		return models.Coordinate{}, false
	}
	return c, true
}

// Subscribe streams fixes until ctx ends. Without permission the returned
// channel yields nothing and closes when ctx ends.
func (s *LocationSource) Subscribe(ctx context.Context, req models.LocationRequest) <-chan models.Coordinate {
	ch, err := s.provider.Subscribe(ctx, req)
	if err != nil {
		s.reporter.Report("subscribe_location", err)
		empty := make(chan models.Coordinate)
		go func() {
			<-ctx.Done()
			close(empty)
		}()
		return empty
	}
	return ch
}

// Seed requests one fix and hands it to sink.
func (s *LocationSource) Seed(ctx context.Context, req models.LocationRequest, sink func(models.Coordinate)) bool {
	c, ok := s.RequestOnce(ctx, req)
	if ok {
		sink(c)
	}
	return ok
}

// ContinuousUpdates ties a location subscription to the host's activity:
// it is held while active and released otherwise.
type ContinuousUpdates struct {
	source *LocationSource
	req    models.LocationRequest
	sink   func(models.Coordinate)
	log    zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewContinuousUpdates creates inactive continuous updates feeding sink.
func NewContinuousUpdates(source *LocationSource, req models.LocationRequest, sink func(models.Coordinate), logger zerolog.Logger) *ContinuousUpdates {
	return &ContinuousUpdates{
		source: source,
		req:    req,
		sink:   sink,
		log:    logger.With().Str("component", "continuous_updates").Logger(),
	}
}

// SetActive acquires the subscription when active is true and releases it
// otherwise. Repeated calls with the same value are no-ops.
func (u *ContinuousUpdates) SetActive(active bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if active {
		u.acquire()
		return
	}
	u.release()
}

// Active reports whether the subscription is held.
func (u *ContinuousUpdates) Active() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cancel != nil
}

// Close releases the subscription.
func (u *ContinuousUpdates) Close() {
	u.SetActive(false)
}

func (u *ContinuousUpdates) acquire() {
	if u.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ch := u.source.Subscribe(ctx, u.req)

	go func() {
		defer close(done)
		for c := range ch {
			u.sink(c)
		}
	}()

	u.cancel = cancel
	u.done = done
	u.log.Info().
		Dur("min_interval", u.req.MinInterval).
		Dur("fastest_interval", u.req.FastestInterval).
		Str("accuracy", u.req.Accuracy.String()).
		Msg("location updates acquired")
}

func (u *ContinuousUpdates) release() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.done
	u.cancel = nil
	u.done = nil
	u.log.Info().Msg("location updates released")
}
