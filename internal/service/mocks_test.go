package service

import (
	"context"
	"sync"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockAutocompleteProvider struct {
	mock.Mock
}

func (m *MockAutocompleteProvider) Predict(ctx context.Context, text, sessionToken string) ([]models.PlaceSuggestion, error) {
	args := m.Called(ctx, text, sessionToken)
	return args.Get(0).([]models.PlaceSuggestion), args.Error(1)
}

type MockDetailsProvider struct {
	mock.Mock
}

func (m *MockDetailsProvider) Details(ctx context.Context, placeID, sessionToken string) (models.Place, error) {
	args := m.Called(ctx, placeID, sessionToken)
	return args.Get(0).(models.Place), args.Error(1)
}

type MockReverseGeocodeProvider struct {
	mock.Mock
}

func (m *MockReverseGeocodeProvider) Lookup(ctx context.Context, c models.Coordinate) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

type MockDirectionsProvider struct {
	mock.Mock
}

func (m *MockDirectionsProvider) Directions(ctx context.Context, origin, destination models.Coordinate) (string, error) {
	args := m.Called(ctx, origin, destination)
	return args.String(0), args.Error(1)
}

type MockLocationProvider struct {
	mock.Mock
}

func (m *MockLocationProvider) RequestOnce(ctx context.Context, req models.LocationRequest) (models.Coordinate, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Coordinate), args.Error(1)
}

func (m *MockLocationProvider) Subscribe(ctx context.Context, req models.LocationRequest) (<-chan models.Coordinate, error) {
	args := m.Called(ctx, req)
	ch, _ := args.Get(0).(<-chan models.Coordinate)
	return ch, args.Error(1)
}

// fakeReporter records the kinds of reported failures.
type fakeReporter struct {
	mu    sync.Mutex
	ops   []string
	kinds []apperr.Kind
}

func (r *fakeReporter) Report(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.kinds = append(r.kinds, apperr.GetKind(err))
}

func (r *fakeReporter) reported() []apperr.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]apperr.Kind(nil), r.kinds...)
}
