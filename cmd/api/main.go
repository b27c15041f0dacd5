package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"findway/internal/cache"
	"findway/internal/config"
	"findway/internal/diagnostics"
	"findway/internal/handler"
	"findway/internal/location"
	"findway/internal/navigation"
	"findway/internal/provider/google"
	"findway/internal/repository"
	"findway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	setupLogger(config.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := diagnostics.NewRecorder(log.Logger, 0)

	googleClient, err := google.NewClient(google.Config{
		APIKey:   config.Google.APIKey,
		BaseURL:  config.Google.BaseURL,
		Timeout:  config.Google.Timeout,
		Language: config.Google.Language,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create google client")
	}

	// Place providers
	var (
		autocomplete service.PlaceAutocompleteProvider = googleClient
		details      service.PlaceDetailsProvider      = googleClient
		geocoder     service.ReverseGeocodeProvider    = googleClient
	)
	if config.Provider == "postgis" {
		conn, err := pgxpool.New(ctx, config.DB.Source)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()

		if err := repository.EnsureSchema(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("cannot prepare db schema")
		}
		repo := repository.NewRepository(conn, repository.WithSearchRadius(config.DB.SearchRadiusM))
		autocomplete, details, geocoder = repo, repo, repo
	}

	// Directions, optionally cached
	var directions service.DirectionsProvider = googleClient
	if config.Redis.URL != "" {
		rdb, err := cache.NewClient(ctx, config.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to redis")
		}
		defer rdb.Close()
		directions = cache.NewDirections(googleClient, rdb, config.Redis.TTL, log.Logger)
	}

	// Initialize layers
	placeSearch := service.NewPlaceSearchService(autocomplete, details, recorder, log.Logger)
	routes := service.NewRouteService(directions, recorder, log.Logger)
	reverseGeocode := service.NewReverseGeoCodeService(geocoder, recorder, log.Logger)

	engine := navigation.New(placeSearch, routes, reverseGeocode, log.Logger,
		navigation.WithFetchTimeout(config.Navigation.FetchTimeout))

	feed := location.NewFeed(log.Logger, config.Location.PermissionGranted)
	locationSource := service.NewLocationSource(feed, recorder, log.Logger)
	updates := service.NewContinuousUpdates(locationSource, config.Location.ContinuousRequest(), engine.OnLocationUpdate, log.Logger)
	defer updates.Close()

	g, gctx := errgroup.WithContext(ctx)

	seed := func() {
		g.Go(func() error {
			seedCtx, cancel := context.WithTimeout(gctx, config.Location.OnceTimeout)
			defer cancel()
			locationSource.Seed(seedCtx, config.Location.OnceRequest(), engine.OnLocationUpdate)
			return nil
		})
	}

	navigationHandler := handler.NewNavigationHandler(engine, log.Logger)
	locationHandler := handler.NewLocationHandler(feed, updates, seed, log.Logger)
	diagnosticsHandler := handler.NewDiagnosticsHandler(recorder)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	handler.RegisterRoutes(r, navigationHandler, locationHandler, diagnosticsHandler)

	srv := &http.Server{
		Addr:    config.Server.Address,
		Handler: r,
	}

	g.Go(func() error {
		return engine.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("address", config.Server.Address).Str("provider", string(config.Provider)).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if config.Location.PermissionGranted {
		seed()
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
