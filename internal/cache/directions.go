// Package cache keeps recently fetched directions in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"findway/internal/models"
	"findway/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix  = "findway:directions:"
	defaultTTL = 10 * time.Minute
)

// Directions is a read-through cache in front of a DirectionsProvider. Redis
// errors are logged and the upstream provider is used directly.
type Directions struct {
	upstream service.DirectionsProvider
	rdb      redis.UniversalClient
	ttl      time.Duration
	log      zerolog.Logger
}

// NewDirections wraps upstream with a cache stored in rdb.
func NewDirections(upstream service.DirectionsProvider, rdb redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *Directions {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Directions{
		upstream: upstream,
		rdb:      rdb,
		ttl:      ttl,
		log:      logger.With().Str("component", "directions_cache").Logger(),
	}
}

// Directions returns the cached polyline for the pair or fetches and stores it.
func (d *Directions) Directions(ctx context.Context, origin, destination models.Coordinate) (string, error) {
	key := Key(origin, destination)

	encoded, err := d.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		d.log.Debug().Str("key", key).Msg("directions cache hit")
		return encoded, nil
	case errors.Is(err, redis.Nil):
	default:
		d.log.Warn().Err(err).Str("key", key).Msg("directions cache read failed")
	}

	encoded, err = d.upstream.Directions(ctx, origin, destination)
	if err != nil {
		return "", err
	}

	if err := d.rdb.Set(ctx, key, encoded, d.ttl).Err(); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("directions cache write failed")
	}
	return encoded, nil
}

// Key is the cache key for a pair, rounded to the polyline precision.
func Key(origin, destination models.Coordinate) string {
	return fmt.Sprintf("%s%s,%s|%s,%s", keyPrefix,
		round(origin.Latitude), round(origin.Longitude),
		round(destination.Latitude), round(destination.Longitude))
}

func round(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

// NewClient connects to the Redis server at url and checks it responds.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: failed to ping redis: %w", err)
	}
	return client, nil
}
