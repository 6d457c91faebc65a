package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/crossref/canonical"
	"github.com/c360studio/crossref/config"
	"github.com/c360studio/crossref/corpus"
	"github.com/c360studio/crossref/refgraph"
	"github.com/c360studio/crossref/report"
	"github.com/c360studio/crossref/rules"
	"github.com/c360studio/crossref/taskstore"
)

// App wires the validation pipeline together: load the corpus, extract the
// reference graph, build the canonical resolver, run the rule engine, then
// aggregate into a report.
type App struct {
	cfg    *config.Config
	root   string
	logger *slog.Logger
}

// NewApp creates a new application instance rooted at the corpus root.
func NewApp(cfg *config.Config, root string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, root: root, logger: logger}
}

// Run executes one full validation pass. The run is atomic: it returns
// either a complete report or an error, never a partial result.
func (a *App) Run() (*report.Report, error) {
	roots := map[corpus.Role]string{corpus.RoleChapter: a.cfg.Roots.Chapters}
	if a.cfg.Roots.PRDs != "" {
		roots[corpus.RolePRD] = a.cfg.Roots.PRDs
	}

	loader := corpus.NewLoader(a.root, roots, a.logger)
	c, err := loader.Load()
	if err != nil {
		return nil, err
	}

	mapping, err := canonical.NewMapping(a.cfg.Mapping)
	if err != nil {
		return nil, fmt.Errorf("canonical mapping: %w", err)
	}
	resolver := canonical.NewResolver(mapping, c)

	assetsPrefix := filepath.Base(a.cfg.Roots.Assets)
	extractor := refgraph.NewExtractor(refgraph.Options{
		AssetsPrefix:     assetsPrefix,
		AllowAbbreviated: a.cfg.Mention.Abbreviated(),
	}, a.logger)
	graph := extractor.Extract(c)

	bounds := a.cfg.Words.Bounds()
	engine := rules.NewEngine(rules.NewRegistry(), a.logger)
	findings := engine.Run(&rules.Input{
		Corpus:           c,
		Graph:            graph,
		Resolver:         resolver,
		Bounds:           bounds,
		RequiredHeadings: a.cfg.Require,
		AssetsDir:        filepath.Join(a.root, a.cfg.Roots.Assets),
		AssetsPrefix:     assetsPrefix,
	})

	aggregated := report.Aggregate(findings)

	rep := &report.Report{
		RunID:         uuid.New().String(),
		GeneratedAt:   time.Now(),
		Findings:      aggregated,
		Tasks:         report.DeriveTasks(aggregated),
		Misalignments: resolver.Misalignments(),
		Rollup:        report.BuildRollup(c, bounds),
		TotalWords:    c.TotalWordCount(corpus.RoleChapter),
		Bounds:        bounds,
	}

	a.logger.Info("validation run complete",
		slog.String("run_id", rep.RunID),
		slog.Int("documents", c.Len()),
		slog.Int("references", graph.Len()),
		slog.Int("findings", len(rep.Findings)),
		slog.Int("critical", rep.CriticalCount()))

	return rep, nil
}

// openStore connects to the configured NATS server and opens the task
// store. The caller closes the returned connection.
func (a *App) openStore(ctx context.Context) (*taskstore.Store, *nats.Conn, error) {
	if a.cfg.NATS.URL == "" {
		return nil, nil, fmt.Errorf("no NATS URL configured: set nats.url to enable task storage")
	}

	conn, err := nats.Connect(a.cfg.NATS.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	store, err := taskstore.NewStore(ctx, js)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store, conn, nil
}

// StoreTasks persists the report's task list into the configured NATS task
// store.
func (a *App) StoreTasks(ctx context.Context, rep *report.Report) error {
	store, conn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := store.SaveRun(ctx, rep.RunID, rep.Tasks); err != nil {
		return err
	}

	a.logger.Info("tasks stored",
		slog.String("run_id", rep.RunID),
		slog.Int("tasks", len(rep.Tasks)))
	return nil
}

// ListTasks returns all stored tasks with their remediation status.
func (a *App) ListTasks(ctx context.Context) ([]*taskstore.Record, error) {
	store, conn, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return store.List(ctx)
}

// SetTaskStatus transitions a stored task's remediation status.
func (a *App) SetTaskStatus(ctx context.Context, taskID string, status taskstore.Status) error {
	store, conn, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := store.UpdateStatus(ctx, taskID, status); err != nil {
		return err
	}

	a.logger.Info("task status updated",
		slog.String("task_id", taskID),
		slog.String("status", string(status)))
	return nil
}
