// Package collector gathers workspace usage data from a query source and
// assembles it into one analysis input.
package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

// Source enumerates workspaces and serves saved-query results for them.
type Source interface {
	// Workspaces lists the workspaces the source can answer queries for.
	Workspaces(ctx context.Context) ([]models.WorkspaceMetadata, error)
	// References returns alert-rule and dashboard query references.
	References(ctx context.Context) (alerts []models.QueryRef, dashboards []models.QueryRef, err error)
	// Execute runs one named query against one workspace. found is false
	// when the source has no result set for that query.
	Execute(ctx context.Context, workspace string, queryName string) (result models.QueryResultTable, found bool, err error)
}

// Collector fans the standard query set out across workspaces.
type Collector struct {
	config  *config.Config
	source  Source
	limiter *RateLimiter
	retry   retryConfig
}

// New creates a collector reading from the given source.
func New(cfg *config.Config, source Source) *Collector {
	return &Collector{
		config:  cfg,
		source:  source,
		limiter: NewRateLimiter(cfg.RateLimit),
		retry:   defaultRetryConfig(),
	}
}

// Collect runs the standard query set against every workspace and returns
// the assembled analysis input. A workspace whose queries fail is carried
// with no result tables; only auth failures and source-level errors abort
// the run.
func (c *Collector) Collect(ctx context.Context) (models.AnalysisInput, error) {
	// 1. Enumerate workspaces
	metas, err := c.source.Workspaces(ctx)
	if err != nil {
		return models.AnalysisInput{}, fmt.Errorf("failed to list workspaces: %w", err)
	}

	// 2. Fan the query set out across workers
	pool := NewWorkerPool(c.config.Concurrency, c.collectWorkspace)
	pool.Start(ctx)

	go func() {
		for i, meta := range metas {
			pool.Submit(workspaceJob{index: i, metadata: meta})
		}
		pool.Stop()
	}()

	workspaces := make([]models.WorkspaceData, len(metas))
	var runErr error
	for res := range pool.Results() {
		if res.err != nil {
			if runErr == nil {
				runErr = res.err
			}
			continue
		}
		workspaces[res.index] = res.data
	}
	if runErr != nil {
		return models.AnalysisInput{}, runErr
	}

	// 3. Pull alert and dashboard references
	alerts, dashboards, err := c.source.References(ctx)
	if err != nil {
		return models.AnalysisInput{}, fmt.Errorf("failed to read query references: %w", err)
	}

	slog.Debug("collection finished",
		slog.Int("workspaces", len(workspaces)),
		slog.Int("alert_rules", len(alerts)),
		slog.Int("dashboard_tiles", len(dashboards)),
	)

	return models.AnalysisInput{
		Workspaces:     workspaces,
		AlertRules:     alerts,
		DashboardTiles: dashboards,
	}, nil
}

// collectWorkspace runs the standard query set against one workspace.
// Individual query failures degrade to missing data; auth errors abort.
func (c *Collector) collectWorkspace(ctx context.Context, job workspaceJob) workspaceResult {
	ctx, cancel := withTotalTimeoutContext(ctx, c.config.QueryTimeout)
	defer cancel()

	tables := make(map[string]models.QueryResultTable, len(standardQueries))
	for _, queryName := range standardQueries {
		if err := c.limiter.Wait(ctx); err != nil {
			return workspaceResult{index: job.index, err: err}
		}

		var table models.QueryResultTable
		var found bool
		err := executeWithRetry(ctx, c.retry, func() error {
			var execErr error
			table, found, execErr = c.source.Execute(ctx, job.metadata.Name, queryName)
			return execErr
		})
		if err != nil {
			if isAuthError(err) {
				return workspaceResult{
					index: job.index,
					err:   fmt.Errorf("failed to query workspace %s: %w", job.metadata.Name, err),
				}
			}
			slog.Warn("query failed, treating result as missing",
				slog.String("workspace", job.metadata.Name),
				slog.String("query", queryName),
				slog.String("error", err.Error()),
			)
			continue
		}
		if found {
			tables[queryName] = table
		}
	}

	return workspaceResult{
		index: job.index,
		data:  models.WorkspaceData{Metadata: job.metadata, Tables: tables},
	}
}
