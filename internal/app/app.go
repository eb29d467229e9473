package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"SignalScanner/internal/config"
	"SignalScanner/internal/infrastructure/console"
	"SignalScanner/internal/infrastructure/judge"
	"SignalScanner/internal/infrastructure/secrets"
	"SignalScanner/internal/infrastructure/sources"
	"SignalScanner/internal/logging"
	"SignalScanner/internal/ports"
	"SignalScanner/internal/relevance"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/usecase"
)

// Application wires configuration to the pipeline and presentation sink.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	sink     *console.Sink
	logger   *slog.Logger
}

// New validates configuration, resolves the judgment credential and builds
// the run. A missing credential fails here, before any source is contacted.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var store ports.SecretStore
	if cfg.Secrets.SecretName != "" {
		managed, err := secrets.NewManagerStore(ctx, cfg.Secrets.Region)
		if err != nil {
			baseLogger.Warn("secret store unavailable, using environment only", "error", err)
		} else {
			store = managed
		}
	}
	apiKey, err := secrets.ResolveJudgeKey(ctx, store, cfg.Secrets.SecretName, baseLogger)
	if err != nil {
		return nil, err
	}

	boundary := cfg.Pipeline.Boundary(time.Now())

	registry := scanner.NewRegistry()
	registry.Register(sources.NewFeedSource(nil,
		cfg.Feeds.URLs, cfg.Feeds.PerFeedCap, boundary,
		baseLogger.With("component", "source.rss")))
	registry.Register(sources.NewOpenAlexSource(nil,
		cfg.OpenAlex.Endpoint, cfg.OpenAlex.TopicBuckets, cfg.OpenAlex.PerQueryCap,
		time.Duration(cfg.OpenAlex.CourtesyDelayMs)*time.Millisecond, boundary,
		baseLogger.With("component", "source.openalex")))
	registry.Register(sources.NewOSFSource(nil,
		cfg.OSF.Endpoint, cfg.OSF.PageSize, cfg.OSF.QuickTerms, boundary,
		baseLogger.With("component", "source.osf")))
	registry.Register(sources.NewDOAJSource(nil,
		cfg.DOAJ.Endpoint, strings.Join(cfg.Pipeline.IncludeKeywords, " OR "),
		cfg.DOAJ.PageSize, boundary,
		baseLogger.With("component", "source.doaj")))

	judgeClient := judge.NewClient(cfg.Judge, apiKey, judge.Rubric{
		Topics:   cfg.Pipeline.IncludeKeywords,
		Exclude:  cfg.Pipeline.ExcludeKeywords,
		Boundary: boundary,
	})

	sink := console.NewSink(os.Stdout, baseLogger.With("component", "console"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources: registry,
		Filter: relevance.Filter{
			Include: cfg.Pipeline.IncludeKeywords,
			Exclude: cfg.Pipeline.ExcludeKeywords,
		},
		Judge:         judgeClient,
		Sink:          sink,
		Logger:        baseLogger.With("component", "pipeline"),
		Threshold:     cfg.Pipeline.ScoreThreshold,
		MaxCandidates: cfg.Pipeline.MaxCandidates,
	})

	return &Application{cfg: cfg, pipeline: pipeline, sink: sink, logger: baseLogger}, nil
}

// Run performs a single stateless pass and renders the shortlist.
func (a *Application) Run(ctx context.Context) error {
	results, report, err := a.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	a.sink.RenderShortlist(results, report)
	return nil
}
