package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rahmatagung/scorecenter/external/broadcastwire"
	"github.com/rahmatagung/scorecenter/external/leagueapi"
	"github.com/rahmatagung/scorecenter/external/sportsfeed"
	"github.com/rahmatagung/scorecenter/internal/config"
	"github.com/rahmatagung/scorecenter/internal/interfaces/httpapi"
	"github.com/rahmatagung/scorecenter/internal/platform/cache"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
	"github.com/rahmatagung/scorecenter/internal/platform/resilience"
	"github.com/rahmatagung/scorecenter/internal/usecase"
)

// App owns the HTTP server plus the resources that need an ordered shutdown,
// the facet worker pool and the optional postgres cache connection.
type App struct {
	Server *http.Server

	matchService *usecase.MatchDetailService
	pgCache      *cache.PostgresStore
	logger       *logging.Logger
}

func New(ctx context.Context, cfg config.Config, httpLogger *slog.Logger) (*App, error) {
	appLogger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName)
	logging.SetDefault(appLogger)

	var (
		store   cacheStore
		pgCache *cache.PostgresStore
	)
	switch {
	case cfg.CachePostgresEnabled():
		pg, err := cache.NewPostgresStore(ctx, cfg.DBURL, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("init postgres cache: %w", err)
		}
		pgCache = pg
		store = pg
	case cfg.CacheEnabled:
		store = cache.NewStore(cfg.CacheTTL)
	default:
		// Disabled means every request hits the providers. Adapters fall
		// back to a short-lived in-memory store when handed nil.
		store = nil
	}

	feed := sportsfeed.NewClient(sportsfeed.ClientConfig{
		BaseURL:    cfg.SportsFeedBaseURL,
		APIKey:     cfg.SportsFeedAPIKey,
		Timeout:    cfg.SportsFeedTimeout,
		MaxRetries: cfg.SportsFeedMaxRetries,
		Logger:     appLogger.Named("sportsfeed"),
		Cache:      store,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:      cfg.SportsFeedCircuitEnabled,
			FailureLimit: cfg.SportsFeedCircuitFailureCount,
			Cooldown:     cfg.SportsFeedCircuitOpenTimeout,
			ProbeLimit:   cfg.SportsFeedCircuitHalfOpenMaxReq,
		},
	})

	competition := leagueapi.NewClient(leagueapi.ClientConfig{
		BaseURL: cfg.LeagueAPIBaseURL,
		Timeout: cfg.LeagueAPITimeout,
		Logger:  appLogger.Named("leagueapi"),
		Cache:   store,
	})

	var broadcast usecase.BroadcastProvider
	if cfg.BroadcastEnabled {
		broadcast = broadcastwire.NewClient(broadcastwire.ClientConfig{
			BaseURL: cfg.BroadcastBaseURL,
			Timeout: cfg.BroadcastTimeout,
			Logger:  appLogger.Named("broadcastwire"),
			Cache:   store,
		})
	} else {
		appLogger.Info("broadcast wire disabled", "reason", "BROADCAST_ENABLED=false")
	}

	matchService, err := usecase.NewMatchDetailService(
		feed,
		competition,
		broadcast,
		usecase.NewTimelineService(),
		cfg.FacetWorkers,
		appLogger.Named("matchdetail"),
	)
	if err != nil {
		if pgCache != nil {
			_ = pgCache.Close()
		}
		return nil, fmt.Errorf("init match detail service: %w", err)
	}

	h2hService := usecase.NewHeadToHeadService(competition, broadcast, appLogger.Named("headtohead"))
	searchService := usecase.NewTeamSearchService(feed, competition, broadcast, appLogger.Named("teamsearch"))

	var ready httpapi.ReadinessFunc
	if pgCache != nil {
		ready = pgCache.Ping
	}

	handler := httpapi.NewHandler(matchService, h2hService, searchService, ready, httpLogger)
	router := httpapi.NewRouter(handler, httpLogger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		Server:       server,
		matchService: matchService,
		pgCache:      pgCache,
		logger:       appLogger,
	}, nil
}

// Shutdown drains the HTTP server, then releases the worker pool and the
// cache connection.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)

	a.matchService.Close()
	if a.pgCache != nil {
		if closeErr := a.pgCache.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	_ = a.logger.Sync()

	return err
}

// cacheStore is the intersection the provider adapters expect. Both the
// in-memory store and the postgres store satisfy it.
type cacheStore interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
