package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/logspectre/internal/models"
)

// Bundle is a pre-collected export of workspace query results, produced by
// running the standard query set out of band and saving the raw tables.
type Bundle struct {
	GeneratedAt    time.Time         `json:"generated_at"`
	LookbackDays   int               `json:"lookback_days"`
	Workspaces     []BundleWorkspace `json:"workspaces"`
	AlertRules     []models.QueryRef `json:"alert_rules"`
	DashboardTiles []models.QueryRef `json:"dashboard_tiles"`
}

// BundleWorkspace pairs workspace metadata with its saved query results,
// keyed by query name.
type BundleWorkspace struct {
	Metadata models.WorkspaceMetadata           `json:"metadata"`
	Results  map[string]models.QueryResultTable `json:"results"`
}

// LoadBundle reads a usage bundle from a JSON file.
func LoadBundle(path string) (*Bundle, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("bundle path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %q: %w", filename, err)
	}

	bundle := &Bundle{}
	if err := json.Unmarshal(data, bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle %q: %w", filename, err)
	}

	return bundle, nil
}

// NewBundleSource wraps a loaded bundle as a query source.
func NewBundleSource(bundle *Bundle) Source {
	index := make(map[string]map[string]models.QueryResultTable, len(bundle.Workspaces))
	for _, ws := range bundle.Workspaces {
		index[ws.Metadata.Name] = ws.Results
	}
	return &bundleSource{bundle: bundle, index: index}
}

type bundleSource struct {
	bundle *Bundle
	index  map[string]map[string]models.QueryResultTable
}

func (b *bundleSource) Workspaces(_ context.Context) ([]models.WorkspaceMetadata, error) {
	metas := make([]models.WorkspaceMetadata, 0, len(b.bundle.Workspaces))
	for _, ws := range b.bundle.Workspaces {
		metas = append(metas, ws.Metadata)
	}
	return metas, nil
}

func (b *bundleSource) References(_ context.Context) ([]models.QueryRef, []models.QueryRef, error) {
	return b.bundle.AlertRules, b.bundle.DashboardTiles, nil
}

func (b *bundleSource) Execute(_ context.Context, workspace, queryName string) (models.QueryResultTable, bool, error) {
	results, ok := b.index[workspace]
	if !ok {
		return models.QueryResultTable{}, false, fmt.Errorf("unknown workspace %q", workspace)
	}
	table, found := results[queryName]
	return table, found, nil
}
