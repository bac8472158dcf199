package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protodoc/pkg/config"
	"github.com/platinummonkey/protodoc/pkg/docs"
	"github.com/platinummonkey/protodoc/pkg/linter"
	"github.com/platinummonkey/protodoc/pkg/linter/rules"
	"github.com/platinummonkey/protodoc/pkg/observability"
	"github.com/platinummonkey/protodoc/pkg/registry"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

// Orchestrator loads the registries once and renders batches of files with
// them, recording metrics for every run
type Orchestrator struct {
	config   *config.Config
	logger   logrus.FieldLogger
	registry *registry.Registry
	renderer *docs.Renderer
	metrics  *observability.Metrics
}

// New loads the registries and lint configuration named by cfg and creates
// an orchestrator
func New(cfg *config.Config, logger logrus.FieldLogger) (*Orchestrator, error) {
	reg, err := registry.Load(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to load registries: %w", err)
	}
	return NewWithRegistry(cfg, reg, logger)
}

// NewWithRegistry creates an orchestrator over an already loaded registry
func NewWithRegistry(cfg *config.Config, reg *registry.Registry, logger logrus.FieldLogger) (*Orchestrator, error) {
	if logger == nil {
		logger = logrus.New()
	}

	validator, err := NewValidator(cfg.Render.LintConfig)
	if err != nil {
		return nil, err
	}

	renderer, err := docs.NewRenderer(docs.Options{
		Config:    cfg.Docs(),
		Registry:  reg,
		Validator: validator,
		Strict:    cfg.Render.StrictRST,
		Logger:    logger,
		CacheSize: cfg.Render.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	metrics := observability.NewMetrics(nil)
	metrics.RecordExtensions(reg.ExtensionCount())

	primary, contrib := reg.ExtensionCount()
	logger.WithFields(logrus.Fields{
		"extensions":         primary,
		"contrib_extensions": contrib,
	}).Debug("Registries loaded")

	return &Orchestrator{
		config:   cfg,
		logger:   logger,
		registry: reg,
		renderer: renderer,
		metrics:  metrics,
	}, nil
}

// NewValidator creates the RST validator with every built-in rule. An empty
// path uses the default lint configuration.
func NewValidator(lintConfig string) (*linter.LintEngine, error) {
	lcfg := linter.DefaultConfig()
	if lintConfig != "" {
		var err error
		if lcfg, err = linter.LoadConfig(lintConfig); err != nil {
			return nil, fmt.Errorf("failed to load lint config: %w", err)
		}
	}

	engine := linter.NewLintEngine(lcfg)
	rules.RegisterDefaultRules(engine.Registry())
	return engine, nil
}

// Metrics returns the metrics recorded by this orchestrator
func (o *Orchestrator) Metrics() *observability.Metrics {
	return o.metrics
}

// Renderer returns the underlying renderer
func (o *Orchestrator) Renderer() *docs.Renderer {
	return o.renderer
}

// Render renders files concurrently. Results are in input order.
func (o *Orchestrator) Render(ctx context.Context, files []*schema.File) ([]docs.Result, error) {
	if len(files) == 0 {
		return nil, ErrNoProtoFiles
	}

	logger := o.logger
	if runID := observability.GetRunID(ctx); runID != "" {
		logger = logger.WithField("run_id", runID)
	}

	startTime := time.Now()
	results, err := o.renderer.RenderFiles(ctx, files, o.config.Render.Parallelism)
	if err != nil {
		o.metrics.RecordError(err)
		o.flushMetrics(logger)
		return nil, err
	}
	duration := time.Since(startTime)
	o.metrics.RecordResults(results, duration)

	var orphans, hidden, warnings int
	for _, res := range results {
		if res.Orphan {
			orphans++
		}
		if res.Hidden {
			hidden++
		}
		warnings += res.Warnings
	}
	logger.WithFields(logrus.Fields{
		"files":    len(results),
		"orphans":  orphans,
		"hidden":   hidden,
		"warnings": warnings,
		"duration": duration.String(),
	}).Info("Rendered documentation")

	o.flushMetrics(logger)
	return results, nil
}

// Write writes each result to dir under its document name and returns the
// written paths. Hidden files are written empty so every input has an
// output.
func (o *Orchestrator) Write(dir string, results []docs.Result) ([]string, error) {
	paths := make([]string, 0, len(results))
	for _, res := range results {
		path := filepath.Join(dir, filepath.FromSlash(docs.OutputName(res.File)))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return paths, fmt.Errorf("%w %s: %v", ErrWriteFailed, path, err)
		}
		if err := os.WriteFile(path, []byte(res.Output), 0644); err != nil {
			return paths, fmt.Errorf("%w %s: %v", ErrWriteFailed, path, err)
		}
		o.logger.WithField("path", path).Debug("Wrote document")
		paths = append(paths, path)
	}
	return paths, nil
}

func (o *Orchestrator) flushMetrics(logger logrus.FieldLogger) {
	path := o.config.Observability.MetricsTextfile
	if path == "" {
		return
	}
	if err := o.metrics.WriteTextfile(path); err != nil {
		logger.WithError(err).Warn("Failed to write metrics textfile")
	}
}
