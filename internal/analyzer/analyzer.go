// Package analyzer turns raw per-workspace query results into the usage
// summary the rest of the pipeline consumes.
package analyzer

import (
	"log/slog"
	"sort"

	"github.com/ppiankov/logspectre/internal/kusto"
	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

// TopTableCount is the length of the headline list. The full candidate
// set still flows to the classifier; the headline is presentation only.
const TopTableCount = 10

// Analyzer aggregates query results for one analysis run. State is scoped
// to the run: build a fresh Analyzer per analysis.
type Analyzer struct {
	config *config.Config

	perTable    map[string]float64
	frequencies map[string]float64
	hasFreq     bool
}

// New creates an analyzer for one run.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{
		config:      cfg,
		perTable:    make(map[string]float64),
		frequencies: make(map[string]float64),
	}
}

// Summarize builds the analysis summary from collected input. A workspace
// with a missing or empty volume result contributes zero; fresh or idle
// workspaces legitimately report nothing, so that is not an error.
func (a *Analyzer) Summarize(input models.AnalysisInput) models.AnalysisSummary {
	summary := models.AnalysisSummary{
		WorkspaceCount: len(input.Workspaces),
		LookbackDays:   a.config.LookbackDays(),
	}

	// 1. Sum billable volume per workspace and accumulate per-table totals
	groups := make(map[string]*models.ResourceGroupUsage)
	for _, ws := range input.Workspaces {
		usage := a.summarizeWorkspace(ws)
		summary.TotalIngestedGB += usage.IngestedGB
		if usage.IngestedGB > 0 {
			summary.WorkspacesWithData++
		}
		summary.Workspaces = append(summary.Workspaces, usage)

		group, ok := groups[usage.ResourceGroup]
		if !ok {
			group = &models.ResourceGroupUsage{Name: usage.ResourceGroup}
			groups[usage.ResourceGroup] = group
		}
		group.WorkspaceCount++
		group.IngestedGB += usage.IngestedGB
		if usage.IngestedGB > 0 {
			group.HasData = true
		}
	}

	// 2. Aggregate query frequencies from workspaces with auditing enabled
	a.aggregateFrequencies(input.Workspaces)
	summary.FrequencyDataAvailable = a.hasFreq

	// 3. Roll up resource groups, sorted by name
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		summary.ResourceGroups = append(summary.ResourceGroups, *groups[name])
	}

	// 4. Rank candidates and cut the headline list
	summary.Candidates = a.rankCandidates()
	top := summary.Candidates
	if len(top) > TopTableCount {
		top = top[:TopTableCount]
	}
	summary.TopTables = append([]models.TableCandidate(nil), top...)

	slog.Debug("usage summary built",
		slog.Int("workspaces", summary.WorkspaceCount),
		slog.Int("with_data", summary.WorkspacesWithData),
		slog.Int("candidates", len(summary.Candidates)),
	)

	return summary
}

// summarizeWorkspace sums the volume-by-table result of one workspace.
func (a *Analyzer) summarizeWorkspace(ws models.WorkspaceData) models.WorkspaceUsage {
	usage := models.WorkspaceUsage{
		WorkspaceName: ws.Metadata.Name,
		ResourceGroup: ws.Metadata.ResourceGroup,
		RetentionDays: ws.Metadata.RetentionDays,
		SkuTier:       ws.Metadata.SkuTier,
		PerTable:      make(map[string]float64),
	}

	volume, ok := ws.Tables[models.QueryVolumeByTable]
	if !ok || volume.Empty() {
		return usage
	}

	nameIdx := volume.ColumnIndex(models.ColumnDataType, models.FallbackDataTypeIndex)
	gbIdx := volume.ColumnIndex(models.ColumnBillableGB, models.FallbackBillableGBIndex)

	for row := range volume.Rows {
		table := volume.StringAt(row, nameIdx)
		if table == "" {
			continue
		}
		if a.config.IsTableExcluded(table) {
			continue
		}
		gb := volume.FloatAt(row, gbIdx)
		if gb <= 0 {
			// Garbage and zero rows carry no billable signal.
			continue
		}
		usage.IngestedGB += gb
		usage.PerTable[table] += gb
		a.perTable[table] += gb
	}

	return usage
}

// aggregateFrequencies sums per-table query rates across workspaces. A
// present frequency result, even an empty one, means auditing is on; no
// result in any workspace leaves the whole run without frequency data.
func (a *Analyzer) aggregateFrequencies(workspaces []models.WorkspaceData) {
	for _, ws := range workspaces {
		freq, ok := ws.Tables[models.QueryFrequencyByTable]
		if !ok {
			continue
		}
		a.hasFreq = true
		if freq.Empty() {
			continue
		}

		nameIdx := freq.ColumnIndex(models.ColumnTableName, models.FallbackDataTypeIndex)
		perDayIdx := freq.ColumnIndex(models.ColumnQueriesPerDay, models.FallbackBillableGBIndex)

		for row := range freq.Rows {
			table := freq.StringAt(row, nameIdx)
			if table == "" {
				continue
			}
			perDay := freq.FloatAt(row, perDayIdx)
			if perDay < 0 {
				continue
			}
			a.frequencies[table] += perDay
		}
	}
}

// rankCandidates orders accumulated tables by volume descending, names
// ascending on ties so runs are reproducible.
func (a *Analyzer) rankCandidates() []models.TableCandidate {
	candidates := make([]models.TableCandidate, 0, len(a.perTable))
	for name, gb := range a.perTable {
		candidates = append(candidates, models.TableCandidate{
			Name:             name,
			TotalGB:          gb,
			AvgQueriesPerDay: a.frequencies[name],
			IsCustomTable:    models.IsCustomTable(name),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TotalGB != candidates[j].TotalGB {
			return candidates[i].TotalGB > candidates[j].TotalGB
		}
		return candidates[i].Name < candidates[j].Name
	})

	return candidates
}

// ExtractReferences gathers the table names mentioned by alert rules and
// dashboard tiles. Rules that do not target any analyzed workspace cannot
// break, so they do not gate.
func ExtractReferences(input models.AnalysisInput) (alertTables, dashboardTables []string) {
	return kusto.ExtractAll(targetedTexts(input.AlertRules)),
		kusto.ExtractAll(targetedTexts(input.DashboardTiles))
}

func targetedTexts(refs []models.QueryRef) []string {
	texts := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !ref.TargetsWorkspace {
			continue
		}
		texts = append(texts, ref.QueryText)
	}
	return texts
}
