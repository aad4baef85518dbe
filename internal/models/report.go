package models

import (
	"strings"
	"time"
)

// Tier is a Log Analytics table pricing plan.
type Tier string

const (
	TierAnalytics Tier = "Analytics"
	TierBasic     Tier = "Basic"
	TierAuxiliary Tier = "Auxiliary"
)

// Valid reports whether the tier is one of the known plans.
func (t Tier) Valid() bool {
	switch t {
	case TierAnalytics, TierBasic, TierAuxiliary:
		return true
	}
	return false
}

// CardKind classifies a recommendation card for ordering and presentation.
type CardKind string

const (
	CardSavings CardKind = "savings"
	CardWarning CardKind = "warning"
	CardInfo    CardKind = "info"
	CardSuccess CardKind = "success"
)

// Valid reports whether the kind is one of the known card kinds.
func (k CardKind) Valid() bool {
	switch k {
	case CardSavings, CardWarning, CardInfo, CardSuccess:
		return true
	}
	return false
}

// WorkspaceUsage is the billed ingestion of one workspace over the
// lookback window, broken down per table.
type WorkspaceUsage struct {
	WorkspaceName string             `json:"workspace_name"`
	ResourceGroup string             `json:"resource_group"`
	RetentionDays int                `json:"retention_days,omitempty"`
	SkuTier       string             `json:"sku_tier,omitempty"`
	IngestedGB    float64            `json:"ingested_gb"`
	PerTable      map[string]float64 `json:"per_table"`
}

// ResourceGroupUsage rolls workspace usage up to the resource group.
type ResourceGroupUsage struct {
	Name           string  `json:"name"`
	WorkspaceCount int     `json:"workspace_count"`
	IngestedGB     float64 `json:"ingested_gb"`
	HasData        bool    `json:"has_data"`
}

// CustomTableSuffix marks user-defined custom tables.
const CustomTableSuffix = "_CL"

// IsCustomTable reports whether a table name carries the custom-table
// suffix.
func IsCustomTable(name string) bool {
	return strings.HasSuffix(name, CustomTableSuffix)
}

// TableCandidate is one table considered for a tier change, with usage
// totals accumulated across all workspaces.
type TableCandidate struct {
	Name             string  `json:"name"`
	TotalGB          float64 `json:"total_gb"`
	AvgQueriesPerDay float64 `json:"avg_queries_per_day"`
	IsCustomTable    bool    `json:"is_custom_table"`
}

// UsageGates records which do-not-downgrade conditions fired for a table.
type UsageGates struct {
	UsedInAlerts      bool `json:"used_in_alerts"`
	UsedInDashboards  bool `json:"used_in_dashboards"`
	FrequentlyQueried bool `json:"frequently_queried"`
}

// TierDecision is the classifier verdict for one table candidate.
type TierDecision struct {
	Tier                    Tier       `json:"tier"`
	Reason                  string     `json:"reason"`
	EstimatedMonthlySavings float64    `json:"estimated_monthly_savings"`
	Gates                   UsageGates `json:"gates"`
}

// ClassifiedTable pairs a candidate with its decision for reporting.
type ClassifiedTable struct {
	Candidate TableCandidate `json:"candidate"`
	Decision  TierDecision   `json:"decision"`
}

// RecommendationCard is one unit of report output. Cards are value
// objects: composed once, never mutated afterwards.
type RecommendationCard struct {
	Kind    CardKind `json:"kind"`
	Title   string   `json:"title"`
	Impact  string   `json:"impact,omitempty"`
	Body    string   `json:"body"`
	Action  string   `json:"action,omitempty"`
	DocsURL string   `json:"docs_url,omitempty"`
}

// AnalysisSummary is the aggregate the composer consumes and the history
// store archives: run totals, per-workspace and per-resource-group usage,
// and the ranked candidate list.
type AnalysisSummary struct {
	TotalIngestedGB        float64              `json:"total_ingested_gb"`
	WorkspaceCount         int                  `json:"workspace_count"`
	WorkspacesWithData     int                  `json:"workspaces_with_data"`
	Workspaces             []WorkspaceUsage     `json:"workspaces"`
	ResourceGroups         []ResourceGroupUsage `json:"resource_groups"`
	TopTables              []TableCandidate     `json:"top_tables"`
	Candidates             []TableCandidate     `json:"candidates"`
	FrequencyDataAvailable bool                 `json:"frequency_data_available"`
	LookbackDays           int                  `json:"lookback_days"`
}

// Report is the complete output structure written by the reporter.
type Report struct {
	Tool      string               `json:"tool"`
	Version   string               `json:"version"`
	Timestamp string               `json:"timestamp"`
	Metadata  Metadata             `json:"metadata"`
	Summary   AnalysisSummary      `json:"summary"`
	Tables    []ClassifiedTable    `json:"tables"`
	Cards     []RecommendationCard `json:"cards"`
}

// Metadata contains report generation info.
type Metadata struct {
	RunID             string    `json:"run_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	LookbackDays      int       `json:"lookback_days"`
	WorkspacesQueried int       `json:"workspaces_queried"`
	AlertRulesScanned int       `json:"alert_rules_scanned"`
	DashboardsScanned int       `json:"dashboards_scanned"`
	AnalysisDuration  string    `json:"analysis_duration"`
	Version           string    `json:"version"`
}
