package service

import (
	"context"
	"fmt"
	"time"

	"findway/internal/apperr"
	"findway/internal/models"
	"findway/internal/polyline"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultDirectionsTimeout = 15 * time.Second

// RouteService turns an (origin, destination) pair into a decoded path.
// Failures resolve to an empty path; nothing is retried.
type RouteService struct {
	directions DirectionsProvider
	reporter   Reporter
	log        zerolog.Logger
	timeout    time.Duration
	group      singleflight.Group
}

// NewRouteService creates a new route service
func NewRouteService(directions DirectionsProvider, reporter Reporter, logger zerolog.Logger) *RouteService {
	return &RouteService{
		directions: directions,
		reporter:   reporterOrNop(reporter),
		log:        logger.With().Str("component", "route_client").Logger(),
		timeout:    defaultDirectionsTimeout,
	}
}

// FetchRoute returns the route from origin to destination, or an empty path.
// Concurrent calls for the same pair share one provider call; a caller whose
// ctx ends stops waiting while the shared call finishes for the others.
func (s *RouteService) FetchRoute(ctx context.Context, origin, destination models.Coordinate) models.RoutePath {
	if err := origin.Validate(); err != nil {
		s.reporter.Report("fetch_route", apperr.Wrap(apperr.KindValidation, "fetch_route: origin", err))
		return models.RoutePath{}
	}
	if err := destination.Validate(); err != nil {
		s.reporter.Report("fetch_route", apperr.Wrap(apperr.KindValidation, "fetch_route: destination", err))
		return models.RoutePath{}
	}

	key := origin.String() + "|" + destination.String()
	ch := s.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.fetch(callCtx, origin, destination)
	})

	select {
	case <-ctx.Done():
		s.log.Debug().Str("pair", key).Msg("route fetch abandoned")
		return models.RoutePath{}
	case res := <-ch:
		if res.Err != nil {
			s.reporter.Report("fetch_route", res.Err)
			return models.RoutePath{}
		}
		return res.Val.(models.RoutePath).Clone()
	}
}

func (s *RouteService) fetch(ctx context.Context, origin, destination models.Coordinate) (models.RoutePath, error) {
	start := time.Now()

	encoded, err := s.directions.Directions(ctx, origin, destination)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch directions: %w", err)
	}

	path, err := polyline.Decode(encoded)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, "fetch_route", err)
	}
	if len(path) == 0 {
		return nil, apperr.NotFound("fetch_route", "directions returned an empty polyline")
	}
	for i, p := range path {
		if err := p.Validate(); err != nil {
			return nil, apperr.Wrap(apperr.KindDecode, "fetch_route", fmt.Errorf("point %d: %w", i, err))
		}
	}

	s.log.Debug().
		Str("origin", origin.String()).
		Str("destination", destination.String()).
		Int("points", len(path)).
		Dur("took", time.Since(start)).
		Msg("route fetched")
	return path, nil
}
