package google

import (
	"context"
	"net/url"

	"findway/internal/apperr"
	"findway/internal/models"
)

const geocodeEndpoint = "/geocode/json"

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// Lookup returns the formatted address nearest to c, or "" when there is none.
func (c *Client) Lookup(ctx context.Context, coord models.Coordinate) (string, error) {
	const op = "google.reverse_geocode"

	params := url.Values{}
	params.Set("latlng", coord.String())

	var decoded geocodeResponse
	if err := c.getJSON(ctx, geocodeEndpoint, params, &decoded); err != nil {
		return "", apperr.ProviderFailure(op, err)
	}

	switch decoded.Status {
	case statusOK, "":
	case statusZeroResults:
		return "", nil
	default:
		return "", apperr.ProviderFailure(op, &apiStatusError{Status: decoded.Status, Message: decoded.ErrorMessage})
	}

	if len(decoded.Results) == 0 {
		return "", nil
	}
	return decoded.Results[0].FormattedAddress, nil
}
