// Package location implements the device positioning service for a device that
// pushes its fixes to the server.
package location

import (
	"context"
	"sync"
	"time"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Feed fans pushed fixes out to one-shot requests and subscriptions. Fixes are
// only accepted and delivered while location permission is granted.
type Feed struct {
	log zerolog.Logger

	mu      sync.Mutex
	granted bool
	last    *models.Coordinate
	nextID  uint64
	subs    map[uint64]*subscriber
	waiters map[uint64]chan models.Coordinate
}

type subscriber struct {
	ch      chan models.Coordinate
	limiter *rate.Limiter
	req     models.LocationRequest
}

// NewFeed creates a feed with the given initial permission.
func NewFeed(logger zerolog.Logger, granted bool) *Feed {
	return &Feed{
		log:     logger.With().Str("component", "location_feed").Logger(),
		granted: granted,
		subs:    make(map[uint64]*subscriber),
		waiters: make(map[uint64]chan models.Coordinate),
	}
}

// SetPermission records the user's location permission and reports whether it
// changed. Revoking it ends every subscription and pending request.
func (f *Feed) SetPermission(granted bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.granted == granted {
		return false
	}
	f.granted = granted
	f.log.Info().Bool("granted", granted).Msg("location permission changed")

	if granted {
		return true
	}
	f.last = nil
	for id, sub := range f.subs {
		close(sub.ch)
		delete(f.subs, id)
	}
	for id, w := range f.waiters {
		close(w)
		delete(f.waiters, id)
	}
	return true
}

// Granted reports whether location permission is granted.
func (f *Feed) Granted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.granted
}

// Publish delivers a fix from the device.
func (f *Feed) Publish(c models.Coordinate) error {
	if err := c.Validate(); err != nil {
		return apperr.Wrap(apperr.KindValidation, "publish_location", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.granted {
		return apperr.PermissionDenied("publish_location")
	}
	f.last = c.Ptr()

	for id, w := range f.waiters {
		w <- c
		close(w)
		delete(f.waiters, id)
	}
	for _, sub := range f.subs {
		if !sub.limiter.Allow() {
			continue
		}
		deliverLatest(sub.ch, c)
	}
	return nil
}

// RequestOnce waits for the next fix until ctx ends.
func (f *Feed) RequestOnce(ctx context.Context, req models.LocationRequest) (models.Coordinate, error) {
	f.mu.Lock()
	if !f.granted {
		f.mu.Unlock()
		return models.Coordinate{}, apperr.PermissionDenied("request_location")
	}
	id := f.nextID
	f.nextID++
	w := make(chan models.Coordinate, 1)
	f.waiters[id] = w
	f.mu.Unlock()

	select {
	case c, ok := <-w:
		if !ok {
			return models.Coordinate{}, apperr.PermissionDenied("request_location")
		}
		return c, nil
	case <-ctx.Done():
		f.mu.Lock()
		delete(f.waiters, id)
		f.mu.Unlock()
		return models.Coordinate{}, apperr.Wrap(apperr.KindProviderFailure, "request_location", ctx.Err())
	}
}

// Subscribe streams fixes no faster than req.FastestInterval until ctx ends.
// A slow reader only sees the most recent fix.
func (f *Feed) Subscribe(ctx context.Context, req models.LocationRequest) (<-chan models.Coordinate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.granted {
		return nil, apperr.PermissionDenied("subscribe_location")
	}

	limit := rate.Inf
	if req.FastestInterval > 0 {
		limit = rate.Every(req.FastestInterval)
	}
	id := f.nextID
	f.nextID++
	sub := &subscriber{
		ch:      make(chan models.Coordinate, 1),
		limiter: rate.NewLimiter(limit, 1),
		req:     req,
	}
	f.subs[id] = sub

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			close(sub.ch)
			delete(f.subs, id)
		}
	}()

	f.log.Debug().Uint64("subscription", id).Dur("fastest_interval", req.FastestInterval).Msg("location subscription added")
	return sub.ch, nil
}

// RequestedInterval is the cadence the device should push fixes at: the
// smallest MinInterval among active subscriptions, or zero if there are none.
func (f *Feed) RequestedInterval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	var interval time.Duration
	for _, sub := range f.subs {
		if sub.req.MinInterval <= 0 {
			continue
		}
		if interval == 0 || sub.req.MinInterval < interval {
			interval = sub.req.MinInterval
		}
	}
	return interval
}

// Last returns the most recent fix, if any.
func (f *Feed) Last() (models.Coordinate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return models.Coordinate{}, false
	}
	return *f.last, true
}

// deliverLatest replaces a pending value the reader has not picked up yet.
func deliverLatest(ch chan models.Coordinate, c models.Coordinate) {
	select {
	case ch <- c:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- c:
	default:
	}
}
