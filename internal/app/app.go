// Package app wires configuration, storage, the identity client, and the
// HTTP surface into a runnable server.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/duelhq/duel-tracker/internal/config"
	"github.com/duelhq/duel-tracker/internal/domain/deck"
	"github.com/duelhq/duel-tracker/internal/domain/duel"
	"github.com/duelhq/duel-tracker/internal/domain/playerstats"
	"github.com/duelhq/duel-tracker/internal/domain/session"
	"github.com/duelhq/duel-tracker/internal/domain/tier"
	"github.com/duelhq/duel-tracker/internal/domain/user"
	"github.com/duelhq/duel-tracker/internal/infrastructure/account/gatekeeper"
	"github.com/duelhq/duel-tracker/internal/infrastructure/repository/memory"
	"github.com/duelhq/duel-tracker/internal/infrastructure/repository/postgres"
	"github.com/duelhq/duel-tracker/internal/interfaces/httpapi"
	idgen "github.com/duelhq/duel-tracker/internal/platform/id"
	"github.com/duelhq/duel-tracker/internal/platform/logging"
	"github.com/duelhq/duel-tracker/internal/platform/ratelimit"
	"github.com/duelhq/duel-tracker/internal/platform/resilience"
	"github.com/duelhq/duel-tracker/internal/usecase"
)

type repositories struct {
	sessions session.Repository
	duels    duel.Repository
	ledger   duel.Ledger
	stats    playerstats.Repository
	tiers    tier.Repository
	decks    deck.Repository
	prefs    user.PreferenceRepository
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build repositories: %w", err)
	}

	idGen := idgen.NewRandomGenerator()
	sessionSvc := usecase.NewSessionService(repos.sessions, repos.stats, repos.tiers, idGen)
	duelSvc := usecase.NewDuelService(repos.sessions, repos.duels, repos.ledger, repos.stats, repos.tiers, repos.decks, idGen)
	catalogSvc := usecase.NewCatalogService(repos.decks, repos.tiers, idGen)
	preferenceSvc := usecase.NewPreferenceService(repos.prefs)
	reportSvc := usecase.NewReportService(repos.sessions, repos.duels, repos.stats, repos.tiers, repos.decks, repos.prefs)
	rebuildSvc := usecase.NewRebuildService(repos.sessions, repos.duels, repos.stats, repos.tiers, cfg.RebuildWorkers, logger)

	// CACHE_ENABLED is the master switch; a zero TTL disables the principal
	// cache inside the gatekeeper client.
	principalCacheTTL := cfg.GatekeeperCacheTTL
	if !cfg.CacheEnabled {
		principalCacheTTL = 0
	}
	verifier := gatekeeper.NewClient(gatekeeper.Config{
		BaseURL:        cfg.GatekeeperBaseURL,
		IntrospectPath: cfg.GatekeeperIntrospectPath,
		Timeout:        cfg.GatekeeperTimeout,
		CacheTTL:       principalCacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GatekeeperCircuitEnabled,
			FailureThreshold: cfg.GatekeeperCircuitFailureCount,
			OpenTimeout:      cfg.GatekeeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GatekeeperCircuitHalfOpenMaxReq,
		},
	}, logger)

	handler := httpapi.NewHandler(sessionSvc, duelSvc, catalogSvc, preferenceSvc, reportSvc, rebuildSvc, logger)
	submitLimiter := ratelimit.NewKeyedLimiter(cfg.SubmitCooldown, 1)
	deleteLimiter := ratelimit.NewKeyedLimiter(cfg.DeleteCooldown, 1)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, submitLimiter, deleteLimiter)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.DBURL == "" {
		logger.Info("DB_URL not set, using in-memory repositories with seed data")
		duels := memory.NewDuelRepository()
		stats := memory.NewPlayerStatsRepository()

		return repositories{
			sessions: memory.NewSessionRepository(memory.SeedSessions(time.Now().UTC()), duels, stats),
			duels:    duels,
			ledger:   memory.NewLedger(duels, stats),
			stats:    stats,
			tiers:    memory.NewTierRepository(memory.SeedTiers()),
			decks:    memory.NewDeckRepository(memory.SeedDecks()),
			prefs:    memory.NewPreferenceRepository(),
		}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, err
	}
	logger.Info("connected to postgres", "db_name", dbNameFromURL(cfg.DBURL))

	return repositories{
		sessions: postgres.NewSessionRepository(db),
		duels:    postgres.NewDuelRepository(db),
		ledger:   postgres.NewLedger(db),
		stats:    postgres.NewPlayerStatsRepository(db),
		tiers:    postgres.NewTierRepository(db),
		decks:    postgres.NewDeckRepository(db),
		prefs:    postgres.NewPreferenceRepository(db),
	}, nil
}
