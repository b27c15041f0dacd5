package service

import (
	"context"
	"strings"
	"sync"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PlaceSearchService is the best-effort search client: provider failures
// become empty results plus a diagnostic.
type PlaceSearchService struct {
	autocomplete PlaceAutocompleteProvider
	details      PlaceDetailsProvider
	reporter     Reporter
	log          zerolog.Logger

	mu       sync.Mutex
	session  string
	newToken func() string
}

// NewPlaceSearchService creates a new place search service
func NewPlaceSearchService(autocomplete PlaceAutocompleteProvider, details PlaceDetailsProvider, reporter Reporter, logger zerolog.Logger) *PlaceSearchService {
	return &PlaceSearchService{
		autocomplete: autocomplete,
		details:      details,
		reporter:     reporterOrNop(reporter),
		log:          logger.With().Str("component", "place_search").Logger(),
		newToken:     uuid.NewString,
	}
}

// Search returns suggestions for query. Blank queries return an empty list
// without calling the provider.
func (s *PlaceSearchService) Search(ctx context.Context, query string) []models.PlaceSuggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.PlaceSuggestion{}
	}

	suggestions, err := s.autocomplete.Predict(ctx, query, s.sessionToken())
	if err != nil {
		if ctx.Err() != nil {
			s.log.Debug().Str("query", query).Msg("search abandoned")
			return []models.PlaceSuggestion{}
		}
		s.reporter.Report("search", err)
		return []models.PlaceSuggestion{}
	}
	if suggestions == nil {
		return []models.PlaceSuggestion{}
	}
	return suggestions
}

// Resolve looks up the coordinate and address of a suggestion. The boolean is
// false when the place is unknown or the lookup failed.
func (s *PlaceSearchService) Resolve(ctx context.Context, placeID string) (models.Place, bool) {
	if strings.TrimSpace(placeID) == "" {
		s.reporter.Report("resolve", apperr.New(apperr.KindValidation, "resolve", "empty place id"))
		return models.Place{}, false
	}

	place, err := s.details.Details(ctx, placeID, s.endSession())
	if err != nil {
		if ctx.Err() == nil {
			s.reporter.Report("resolve", err)
		}
		return models.Place{}, false
	}
	if err := place.Coordinate.Validate(); err != nil {
		s.reporter.Report("resolve", apperr.Wrap(apperr.KindProviderFailure, "resolve", err))
		return models.Place{}, false
	}
	return place, true
}

func (s *PlaceSearchService) sessionToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == "" {
		s.session = s.newToken()
	}
	return s.session
}

// endSession returns the current token, if any, and starts a fresh session for
// the next search.
func (s *PlaceSearchService) endSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.session
	s.session = ""
	return token
}
