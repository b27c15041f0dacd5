package service

import (
	"context"

	"findway/internal/models"
)

// PlaceAutocompleteProvider predicts places for partial text.
type PlaceAutocompleteProvider interface {
	Predict(ctx context.Context, text, sessionToken string) ([]models.PlaceSuggestion, error)
}

// PlaceDetailsProvider resolves a place id to its coordinate and address.
type PlaceDetailsProvider interface {
	Details(ctx context.Context, placeID, sessionToken string) (models.Place, error)
}

// ReverseGeocodeProvider returns the address at a coordinate, or "".
type ReverseGeocodeProvider interface {
	Lookup(ctx context.Context, c models.Coordinate) (string, error)
}

// DirectionsProvider returns the encoded overview polyline between two points.
type DirectionsProvider interface {
	Directions(ctx context.Context, origin, destination models.Coordinate) (string, error)
}

// LocationProvider is the device positioning service.
type LocationProvider interface {
	RequestOnce(ctx context.Context, req models.LocationRequest) (models.Coordinate, error)
	// Subscribe delivers fixes until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context, req models.LocationRequest) (<-chan models.Coordinate, error)
}

// Reporter receives the failures a service absorbed.
type Reporter interface {
	Report(op string, err error)
}

type nopReporter struct{}

func (nopReporter) Report(string, error) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
