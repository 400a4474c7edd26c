package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/handlers"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/services/answer"
	"github.com/ternarybob/respondeo/internal/services/answercache"
	"github.com/ternarybob/respondeo/internal/services/assembler"
	"github.com/ternarybob/respondeo/internal/services/citations"
	"github.com/ternarybob/respondeo/internal/services/queryparse"
	"github.com/ternarybob/respondeo/internal/services/retrieval"
	"github.com/ternarybob/respondeo/internal/services/scoring"
	"github.com/ternarybob/respondeo/internal/services/synthesis"
	"github.com/ternarybob/respondeo/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Pipeline services
	Parser       *queryparse.Parser
	Orchestrator *retrieval.Orchestrator
	Assembler    *assembler.Assembler
	Synthesizer  *synthesis.Synthesizer
	Extractor    *citations.Extractor
	Scorer       *scoring.Scorer
	Cache        *answercache.Cache

	// Answer service (pipeline facade)
	AnswerService *answer.Service

	// HTTP handlers
	AnswerHandler *handlers.AnswerHandler

	// Scheduled cache sweep
	sweeper *cron.Cron
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if err := app.startSweeper(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cache sweeper")
	}

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Bool("hybrid_enabled", cfg.Weaviate.Enabled).
		Bool("graph_enabled", cfg.Graph.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (SQLite FTS + Badger)
func (a *App) initStorage() error {
	manager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return err
	}

	a.StorageManager = manager
	a.Logger.Debug().
		Str("sqlite", a.Config.Storage.SQLite.Path).
		Str("badger", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices builds the retrieval tiers and the answer pipeline in
// dependency order. Tier order is fixed: hybrid, graph, fulltext,
// metadata. Disabled backends are simply not registered, so the
// orchestrator falls through to the next tier.
func (a *App) initServices() error {
	a.Parser = queryparse.NewParser(&a.Config.Parser, a.Logger)

	var tiers []interfaces.TierAdapter

	if a.Config.Weaviate.Enabled {
		hybrid, err := retrieval.NewHybridTier(&a.Config.Weaviate, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize hybrid tier: %w", err)
		}
		tiers = append(tiers, hybrid)
		a.Logger.Debug().Str("host", a.Config.Weaviate.Host).Msg("Hybrid tier initialized")
	} else {
		a.Logger.Info().Msg("Hybrid tier disabled")
	}

	if a.Config.Graph.Enabled {
		tiers = append(tiers, retrieval.NewGraphTier(&a.Config.Graph, a.Logger))
		a.Logger.Debug().Str("url", a.Config.Graph.URL).Msg("Graph tier initialized")
	} else {
		a.Logger.Info().Msg("Graph tier disabled")
	}

	tiers = append(tiers, retrieval.NewFullTextTier(a.StorageManager.DocumentStorage(), a.Logger))
	tiers = append(tiers, retrieval.NewMetadataTier(a.StorageManager.MetadataStorage(), a.Logger))

	a.Orchestrator = retrieval.NewOrchestrator(tiers, &a.Config.Retrieval, a.Logger)
	a.Logger.Debug().Int("tiers", len(tiers)).Msg("Tier orchestrator initialized")

	provider, err := synthesis.NewProvider(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize generation provider: %w", err)
	}
	a.Synthesizer = synthesis.NewSynthesizer(provider, &a.Config.LLM, a.Logger)
	a.Logger.Debug().
		Str("provider", string(a.Synthesizer.Provider().ProviderType())).
		Msg("Synthesizer initialized")

	if err := a.Synthesizer.Available(context.Background()); err != nil {
		// Startup proceeds; requests get a generation_unavailable answer
		// until the key is provided.
		a.Logger.Warn().Err(err).Msg("Generation provider unavailable at startup")
	}

	a.Assembler = assembler.NewAssembler(&a.Config.Assembler, a.Logger)
	a.Extractor = citations.NewExtractor(a.Logger)
	a.Scorer = scoring.NewScorer(a.Logger)
	a.Cache = answercache.NewCache(&a.Config.Cache, a.Logger)

	a.AnswerService = answer.NewService(
		a.Parser,
		a.Orchestrator,
		a.Assembler,
		a.Synthesizer,
		a.Extractor,
		a.Scorer,
		a.Cache,
		a.StorageManager,
		a.Config,
		a.Logger,
	)

	a.registerProbes(tiers)

	return nil
}

// registerProbes attaches backend reachability checks to the health
// report for every tier that can be probed.
func (a *App) registerProbes(tiers []interfaces.TierAdapter) {
	type readyChecker interface {
		Ready(ctx context.Context) error
	}

	for _, tier := range tiers {
		if probe, ok := tier.(readyChecker); ok {
			name := string(tier.Name())
			a.AnswerService.RegisterProbe(name, probe.Ready)
			a.Logger.Debug().Str("tier", name).Msg("Health probe registered")
		}
	}
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.AnswerHandler = handlers.NewAnswerHandler(a.AnswerService, a.Logger)
}

// startSweeper schedules the periodic cache expiry sweep
func (a *App) startSweeper() error {
	schedule := a.Config.Cache.SweepSchedule
	if schedule == "" {
		a.Logger.Debug().Msg("Cache sweep schedule empty, sweeper disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		a.Cache.Sweep()
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	a.sweeper = c
	a.Logger.Debug().Str("schedule", schedule).Msg("Cache sweeper started")
	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.sweeper != nil {
		ctx := a.sweeper.Stop()
		<-ctx.Done()
		a.Logger.Info().Msg("Cache sweeper stopped")
	}

	if a.Synthesizer != nil {
		if err := a.Synthesizer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close generation provider")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
