package google

import (
	"context"
	"net/url"

	"findway/internal/apperr"
	"findway/internal/models"
)

const (
	autocompleteEndpoint = "/place/autocomplete/json"
	detailsEndpoint      = "/place/details/json"
	detailsFields        = "geometry/location,formatted_address"
)

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       *struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         *struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

// Predict returns autocomplete predictions for text. Requests sharing a session
// token are billed as one search session.
func (c *Client) Predict(ctx context.Context, text, sessionToken string) ([]models.PlaceSuggestion, error) {
	const op = "google.autocomplete"

	params := url.Values{}
	params.Set("input", text)
	if sessionToken != "" {
		params.Set("sessiontoken", sessionToken)
	}

	var decoded autocompleteResponse
	if err := c.getJSON(ctx, autocompleteEndpoint, params, &decoded); err != nil {
		return nil, apperr.ProviderFailure(op, err)
	}

	switch decoded.Status {
	case statusOK, "":
	case statusZeroResults:
		return []models.PlaceSuggestion{}, nil
	default:
		return nil, apperr.ProviderFailure(op, &apiStatusError{Status: decoded.Status, Message: decoded.ErrorMessage})
	}

	out := make([]models.PlaceSuggestion, 0, len(decoded.Predictions))
	for _, p := range decoded.Predictions {
		if p.PlaceID == "" {
			continue
		}
		out = append(out, models.PlaceSuggestion{ID: p.PlaceID, DisplayText: p.Description})
	}
	return out, nil
}

// Details fetches the coordinate and formatted address of a place id. The
// session token, when set, closes the autocomplete session.
func (c *Client) Details(ctx context.Context, placeID, sessionToken string) (models.Place, error) {
	const op = "google.place_details"

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	if sessionToken != "" {
		params.Set("sessiontoken", sessionToken)
	}

	var decoded detailsResponse
	if err := c.getJSON(ctx, detailsEndpoint, params, &decoded); err != nil {
		return models.Place{}, apperr.ProviderFailure(op, err)
	}

	switch decoded.Status {
	case statusOK, "":
	case statusZeroResults, statusNotFound:
		return models.Place{}, apperr.NotFound(op, "unknown place id "+placeID)
	default:
		return models.Place{}, apperr.ProviderFailure(op, &apiStatusError{Status: decoded.Status, Message: decoded.ErrorMessage})
	}

	if decoded.Result == nil || decoded.Result.Geometry == nil {
		return models.Place{}, apperr.NotFound(op, "place "+placeID+" has no coordinate")
	}

	loc := decoded.Result.Geometry.Location
	return models.Place{
		Coordinate: models.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng},
		Address:    decoded.Result.FormattedAddress,
	}, nil
}
