package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Schema creates the locations table and its indexes.
const Schema = `
	CREATE EXTENSION IF NOT EXISTS postgis;

	CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		street VARCHAR(255) NOT NULL DEFAULT '',
		house_number VARCHAR(32) NOT NULL DEFAULT '',
		postcode VARCHAR(32) NOT NULL DEFAULT '',
		municipality VARCHAR(255) NOT NULL DEFAULT '',
		region VARCHAR(255) NOT NULL DEFAULT '',
		full_address_tsvector TSVECTOR GENERATED ALWAYS AS (
			to_tsvector('simple', name || ' ' || street || ' ' || house_number || ' ' || postcode || ' ' || municipality || ' ' || region)
		) STORED,
		geom GEOGRAPHY(POINT, 4326) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS locations_geom_idx ON locations USING GIST (geom);
	CREATE INDEX IF NOT EXISTS locations_full_address_tsvector_idx ON locations USING GIN (full_address_tsvector);
`

// EnsureSchema creates the locations table if it does not exist. db is a
// *pgx.Conn or a *pgxpool.Pool.
func EnsureSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}
