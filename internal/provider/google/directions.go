package google

import (
	"context"
	"net/url"

	"findway/internal/apperr"
	"findway/internal/models"
)

const directionsEndpoint = "/directions/json"

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// Directions returns the encoded overview polyline of the first driving route
// between origin and destination. Zero routes is reported as NotFound.
func (c *Client) Directions(ctx context.Context, origin, destination models.Coordinate) (string, error) {
	const op = "google.directions"

	params := url.Values{}
	params.Set("origin", origin.String())
	params.Set("destination", destination.String())
	params.Set("mode", "driving")

	var decoded directionsResponse
	if err := c.getJSON(ctx, directionsEndpoint, params, &decoded); err != nil {
		return "", apperr.ProviderFailure(op, err)
	}

	switch decoded.Status {
	case statusOK, "":
	case statusZeroResults, statusNotFound:
		return "", apperr.NotFound(op, "no route between "+origin.String()+" and "+destination.String())
	default:
		return "", apperr.ProviderFailure(op, &apiStatusError{Status: decoded.Status, Message: decoded.ErrorMessage})
	}

	if len(decoded.Routes) == 0 {
		return "", apperr.NotFound(op, "no route between "+origin.String()+" and "+destination.String())
	}

	return decoded.Routes[0].OverviewPolyline.Points, nil
}
