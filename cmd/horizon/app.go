package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/horizon/internal/cache"
	"github.com/vmunix/horizon/internal/catalog"
	"github.com/vmunix/horizon/internal/config"
	"github.com/vmunix/horizon/internal/detail"
	"github.com/vmunix/horizon/internal/horizon"
	"github.com/vmunix/horizon/internal/llm"
	"github.com/vmunix/horizon/internal/translate"
	"github.com/vmunix/horizon/pkg/igdb"
)

var platformIDs = map[string]int{
	"switch": igdb.PlatformSwitch,
	"ps5":    igdb.PlatformPS5,
	"xbox":   igdb.PlatformXboxSeries,
	"pc":     igdb.PlatformPC,
}

// app holds the wired services for one command invocation.
type app struct {
	cfg   *config.Config
	orch  *horizon.Orchestrator
	store *cache.Store
	log   *slog.Logger
}

// newApp loads configuration and wires the service graph.
func newApp() (*app, error) {
	config.LoadEnv()

	path := configPath
	if path == "" {
		var err error
		if path, err = config.Discover(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := newLogger(cfg.Server.LogLevel)

	platformID, ok := platformIDs[cfg.Catalog.Platform]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", cfg.Catalog.Platform)
	}

	igdbClient := igdb.New(cfg.IGDB.ClientID, cfg.IGDB.ClientSecret,
		igdb.WithLogger(log.With("component", "igdb")))

	heuristic := catalog.Heuristic{
		HypeThreshold: cfg.Catalog.HypeThreshold,
		ExtraStudios:  cfg.Catalog.ExtraStudios,
	}
	catalogSvc := catalog.NewService(igdbClient, heuristic, log.With("component", "catalog"))

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	translator := translate.NewService(llmClient, log.With("component", "translate"))

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	engine := detail.NewEngine(llmClient, store, log.With("component", "detail"))

	orch := horizon.NewOrchestrator(catalogSvc, translator, engine, platformID,
		log.With("component", "horizon"))

	return &app{cfg: cfg, orch: orch, store: store, log: log}, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
