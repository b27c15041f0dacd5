package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"findway/internal/apperr"
	"findway/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultSearchLimit   = 10
	defaultSearchRadiusM = 10000
)

const selectLocation = `
		SELECT
			id,
			name,
			street,
			house_number,
			postcode,
			municipality,
			region,
			ST_Y(geom::geometry) AS latitude,
			ST_X(geom::geometry) AS longitude
		FROM locations
`

// Repository serves place search, place details and reverse geocoding from
// the PostGIS locations table.
type Repository struct {
	db           *pgxpool.Pool
	searchLimit  int
	searchRadius float64
}

// Option customises a Repository.
type Option func(*Repository)

// WithSearchRadius sets the reverse geocoding search radius in meters.
func WithSearchRadius(meters float64) Option {
	return func(r *Repository) {
		if meters > 0 {
			r.searchRadius = meters
		}
	}
}

// WithSearchLimit caps the number of suggestions returned by Predict.
func WithSearchLimit(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.searchLimit = n
		}
	}
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool, opts ...Option) *Repository {
	r := &Repository{db: db, searchLimit: defaultSearchLimit, searchRadius: defaultSearchRadiusM}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchLocationsByText performs a prefix full-text search on the locations table
func (r *Repository) SearchLocationsByText(ctx context.Context, query string) ([]models.Location, error) {
	tsquery := prefixQuery(query)
	if tsquery == "" {
		return []models.Location{}, nil
	}

	sql := selectLocation + `
		WHERE full_address_tsvector @@ to_tsquery('simple', $1)
		ORDER BY ts_rank(full_address_tsvector, to_tsquery('simple', $1)) DESC, id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, sql, tsquery, r.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute search query: %w", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return locations, nil
}

// FindLocationByID loads a single location.
func (r *Repository) FindLocationByID(ctx context.Context, id int64) (*models.Location, error) {
	loc, err := scanLocation(r.db.QueryRow(ctx, selectLocation+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to load location %d: %w", id, err)
	}
	return &loc, nil
}

// FindNearestLocation performs a spatial query to find the nearest location to the given coordinates
func (r *Repository) FindNearestLocation(ctx context.Context, lat, lon float64) (*models.Location, error) {
	sql := selectLocation + `
		WHERE ST_DWithin(geom, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
		ORDER BY geom <-> ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography
		LIMIT 1
	`

	loc, err := scanLocation(r.db.QueryRow(ctx, sql, lat, lon, r.searchRadius))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to execute spatial query: %w", err)
	}

	return &loc, nil
}

// Predict implements the place autocomplete contract on top of the local catalogue.
// Session tokens have no meaning here.
func (r *Repository) Predict(ctx context.Context, text, _ string) ([]models.PlaceSuggestion, error) {
	locations, err := r.SearchLocationsByText(ctx, text)
	if err != nil {
		return nil, apperr.ProviderFailure("postgis.autocomplete", err)
	}

	out := make([]models.PlaceSuggestion, 0, len(locations))
	for _, loc := range locations {
		out = append(out, models.PlaceSuggestion{
			ID:          strconv.FormatInt(loc.ID, 10),
			DisplayText: loc.Label(),
		})
	}
	return out, nil
}

// Details implements the place details contract for ids issued by Predict.
func (r *Repository) Details(ctx context.Context, placeID, _ string) (models.Place, error) {
	const op = "postgis.place_details"

	id, err := strconv.ParseInt(placeID, 10, 64)
	if err != nil {
		return models.Place{}, apperr.NotFound(op, "malformed place id "+strconv.Quote(placeID))
	}

	loc, err := r.FindLocationByID(ctx, id)
	if err != nil {
		return models.Place{}, apperr.ProviderFailure(op, err)
	}
	if loc == nil {
		return models.Place{}, apperr.NotFound(op, "unknown place id "+placeID)
	}

	return models.Place{Coordinate: loc.Coordinate(), Address: loc.Label()}, nil
}

// Lookup implements the reverse geocode contract: the label of the nearest
// location within the search radius, or "".
func (r *Repository) Lookup(ctx context.Context, c models.Coordinate) (string, error) {
	loc, err := r.FindNearestLocation(ctx, c.Latitude, c.Longitude)
	if err != nil {
		return "", apperr.ProviderFailure("postgis.reverse_geocode", err)
	}
	if loc == nil {
		return "", nil
	}
	return loc.Label(), nil
}

func scanLocation(row pgx.Row) (models.Location, error) {
	var loc models.Location
	err := row.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Street,
		&loc.HouseNumber,
		&loc.Postcode,
		&loc.Municipality,
		&loc.Region,
		&loc.Latitude,
		&loc.Longitude,
	)
	return loc, err
}

// prefixQuery turns free text into a tsquery matching every word as a prefix,
// e.g. "main st" -> "main:* & st:*". Characters with tsquery meaning are dropped.
func prefixQuery(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, w+":*")
	}
	return strings.Join(terms, " & ")
}

// CountLocations returns the number of stored locations.
func (r *Repository) CountLocations(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM locations").Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count locations: %w", err)
	}
	return count, nil
}
