package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gwi.com/chatmood/internal/config"
	"gwi.com/chatmood/internal/core"
	"gwi.com/chatmood/internal/report"
	"gwi.com/chatmood/internal/store"
)

// app holds everything built from the configuration. The classifier is
// created once here and injected into the analysis service.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	classifier core.Classifier
	dbStore    *store.SQLiteStore
	renderer   *report.Renderer
	service    *core.AnalysisService

	closers []func()
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "json" {
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// newApp wires the application. withStore controls whether the SQLite
// history is opened; it is skipped when DATABASE_URL is empty.
func newApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: newLogger(cfg, os.Stderr)}

	palette, err := report.NewPalette(cfg.Palette, cfg.DefaultColor)
	if err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}
	if a.renderer, err = report.NewRenderer(palette); err != nil {
		return nil, err
	}

	if a.classifier, err = a.buildClassifier(ctx); err != nil {
		a.Close()
		return nil, err
	}

	// Keep the interface nil when history is off; a typed nil pointer would
	// make the service think a store exists.
	var db core.AnalysisStore
	if withStore && cfg.DatabaseURL != "" {
		a.dbStore, err = store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, func() { a.dbStore.Close() })
		db = a.dbStore
	}

	a.service = core.NewAnalysisService(a.classifier, db, a.logger)
	return a, nil
}

func (a *app) buildClassifier(ctx context.Context) (core.Classifier, error) {
	cc := a.cfg.Classifier

	var classifier core.Classifier
	switch cc.Provider {
	case config.ProviderGemini:
		llm, err := core.NewLLMService(ctx, cc.GeminiAPIKey, cc.GeminiModel, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, llm.Close)
		classifier = llm
	default:
		if cc.HFAPIToken == "" {
			a.logger.Warn().Msg("HF_API_TOKEN is not set, Hugging Face requests will be anonymous")
		}
		classifier = core.NewHFService(core.HFOptions{
			Endpoint: cc.HFEndpoint,
			Model:    cc.HFModel,
			Token:    cc.HFAPIToken,
			Timeout:  cc.Timeout,
		})
	}

	if a.cfg.RedisURL != "" {
		cache, err := core.NewRedisCache(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { cache.Close() })
		classifier = core.NewCachedClassifier(classifier, cache, a.cfg.CacheTTL, a.logger)
		a.logger.Info().Dur("ttl", a.cfg.CacheTTL).Msg("classification cache enabled")
	}

	a.logger.Info().Str("provider", classifier.Provider()).Str("model", classifier.Model()).Msg("classifier ready")
	return classifier, nil
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
