package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"findway/internal/config"
	"findway/internal/models"
	"findway/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Expected CSV columns, in order, after a header row.
var csvColumns = []string{"name", "street", "house_number", "postcode", "municipality", "region", "lat", "lon"}

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	configPath := flag.String("config", "configs", "Directory holding app.yaml")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *file == "" {
		log.Fatal().Msg("--file flag is required")
	}

	log.Info().Str("file", *file).Msg("starting import")

	records, err := parseCSV(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse csv")
	}
	log.Info().Int("records", len(records)).Msg("parsed records")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	if cfg.DB.Source == "" {
		log.Fatal().Msg("db.source is not configured")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("cannot create schema")
	}

	copied, err := repository.ImportLocations(ctx, pool, records)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot import records")
	}

	total, err := repository.NewRepository(pool).CountLocations(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot verify import")
	}

	log.Info().Int64("imported", copied).Int64("total", total).Msg("import finished")
}

func parseCSV(filePath string) ([]models.Location, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readLocations(file)
}

func readLocations(r io.Reader) ([]models.Location, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range csvColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], name)
		}
	}

	var records []models.Location
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		lat, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude: %s", line, record[6])
		}
		lon, err := strconv.ParseFloat(record[7], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude: %s", line, record[7])
		}

		location := models.Location{
			Name:         record[0],
			Street:       record[1],
			HouseNumber:  record[2],
			Postcode:     record[3],
			Municipality: record[4],
			Region:       record[5],
			Latitude:     lat,
			Longitude:    lon,
		}
		if err := location.Coordinate().Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, location)
	}

	return records, nil
}
