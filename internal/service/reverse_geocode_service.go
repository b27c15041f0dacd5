package service

import (
	"context"
	"strings"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/rs/zerolog"
)

// UnknownLocation labels a tapped point whose address could not be found.
const UnknownLocation = "Unknown Location"

// ReverseGeoCodeService names tapped map points
type ReverseGeoCodeService struct {
	provider ReverseGeocodeProvider
	reporter Reporter
	log      zerolog.Logger
}

// NewReverseGeoCodeService creates a new reverse geo code service
func NewReverseGeoCodeService(provider ReverseGeocodeProvider, reporter Reporter, logger zerolog.Logger) *ReverseGeoCodeService {
	return &ReverseGeoCodeService{
		provider: provider,
		reporter: reporterOrNop(reporter),
		log:      logger.With().Str("component", "reverse_geocode").Logger(),
	}
}

// PlaceName returns the address nearest to c, falling back to UnknownLocation
// when the lookup fails or finds nothing.
func (s *ReverseGeoCodeService) PlaceName(ctx context.Context, c models.Coordinate) string {
	if err := c.Validate(); err != nil {
		s.reporter.Report("reverse_geocode", apperr.Wrap(apperr.KindValidation, "reverse_geocode", err))
		return UnknownLocation
	}

	address, err := s.provider.Lookup(ctx, c)
	if err != nil {
		if ctx.Err() == nil {
			s.reporter.Report("reverse_geocode", err)
		}
		return UnknownLocation
	}

	address = strings.TrimSpace(address)
	if address == "" {
		s.log.Debug().Str("coordinate", c.String()).Msg("no address near coordinate")
		return UnknownLocation
	}
	return address
}
