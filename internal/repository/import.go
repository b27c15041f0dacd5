package repository

import (
	"context"
	"fmt"

	"findway/internal/models"

	"github.com/jackc/pgx/v5"
)

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var importColumns = []string{"name", "street", "house_number", "postcode", "municipality", "region", "latitude", "longitude"}

const createStaging = `
	CREATE TEMP TABLE locations_staging (
		name TEXT,
		street TEXT,
		house_number TEXT,
		postcode TEXT,
		municipality TEXT,
		region TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	) ON COMMIT DROP
`

const insertFromStaging = `
	INSERT INTO locations (name, street, house_number, postcode, municipality, region, geom)
	SELECT name, street, house_number, postcode, municipality, region,
		ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography
	FROM locations_staging
`

// ImportLocations bulk-loads locations in one transaction. Rows are copied
// into a staging table and converted to geography points on insert.
func ImportLocations(ctx context.Context, db beginner, locations []models.Location) (int64, error) {
	for i, l := range locations {
		if err := l.Coordinate().Validate(); err != nil {
			return 0, fmt.Errorf("repository: record %d: %w", i+1, err)
		}
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createStaging); err != nil {
		return 0, fmt.Errorf("repository: failed to create staging table: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"locations_staging"},
		importColumns,
		pgx.CopyFromSlice(len(locations), func(i int) ([]any, error) {
			l := locations[i]
			return []any{l.Name, l.Street, l.HouseNumber, l.Postcode, l.Municipality, l.Region, l.Latitude, l.Longitude}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy locations: %w", err)
	}

	if _, err := tx.Exec(ctx, insertFromStaging); err != nil {
		return 0, fmt.Errorf("repository: failed to insert locations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository: failed to commit import: %w", err)
	}
	return copied, nil
}
