package reporter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

const (
	ruleTierChange   = "logspectre/TIER_CHANGE"
	ruleGatedTable   = "logspectre/GATED_TABLE"
	ruleNoQueryAudit = "logspectre/NO_QUERY_AUDIT"

	ruleIndexTierChange   = 0
	ruleIndexGatedTable   = 1
	ruleIndexNoQueryAudit = 2

	sarifFallbackLocationURI = "README.md"
	sarifSchemaURI           = "https://docs.oasis-open.org/sarif/sarif/v2.1.0/cs01/schemas/sarif-schema-2.1.0.json"
)

var semanticVersionPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool               `json:"tool"`
	Results           []sarifResult           `json:"results"`
	AutomationDetails *sarifAutomationDetails `json:"automationDetails,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifAutomationDetails struct {
	ID string `json:"id"`
}

type sarifDriver struct {
	Name            string       `json:"name"`
	Version         string       `json:"version,omitempty"`
	InformationURI  string       `json:"informationUri,omitempty"`
	ShortDesc       sarifMessage `json:"shortDescription"`
	FullDesc        sarifMessage `json:"fullDescription"`
	Rules           []sarifRule  `json:"rules"`
	DownloadURI     string       `json:"downloadUri,omitempty"`
	SemanticVersion string       `json:"semanticVersion,omitempty"`
}

type sarifRule struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ShortDesc     sarifMessage `json:"shortDescription"`
	FullDesc      sarifMessage `json:"fullDescription"`
	DefaultConfig sarifConfig  `json:"defaultConfiguration"`
	HelpURI       string       `json:"helpUri,omitempty"`
	Help          sarifMessage `json:"help,omitempty"`
	Properties    any          `json:"properties,omitempty"`
}

type sarifConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           *int              `json:"ruleIndex,omitempty"`
	Level               string            `json:"level,omitempty"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation  `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name,omitempty"`
	FullyQualifiedName string `json:"fullyQualifiedName,omitempty"`
	Kind               string `json:"kind,omitempty"`
}

// WriteSARIF writes SARIF 2.1.0 output to report.sarif.
func WriteSARIF(report *models.Report, cfg *config.Config) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportVersion := report.Version
	if reportVersion == "" {
		reportVersion = report.Metadata.Version
	}

	output := sarifLog{
		Version: "2.1.0",
		Schema:  sarifSchemaURI,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:            "logspectre",
						Version:         reportVersion,
						SemanticVersion: normalizeSemanticVersion(reportVersion),
						InformationURI:  "https://github.com/ppiankov/logspectre",
						DownloadURI:     "https://github.com/ppiankov/logspectre/releases/latest",
						ShortDesc: sarifMessage{
							Text: "Log Analytics cost analyzer",
						},
						FullDesc: sarifMessage{
							Text: "Finds Log Analytics tables that can move to cheaper pricing plans based on observed usage.",
						},
						Rules: []sarifRule{
							{
								ID:        ruleTierChange,
								Name:      "TIER_CHANGE",
								ShortDesc: sarifMessage{Text: "Table can move to a cheaper plan"},
								FullDesc:  sarifMessage{Text: "The table's observed query activity fits a cheaper pricing plan than Analytics."},
								DefaultConfig: sarifConfig{
									Level: "warning",
								},
							},
							{
								ID:        ruleGatedTable,
								Name:      "GATED_TABLE",
								ShortDesc: sarifMessage{Text: "Table is held on the Analytics plan"},
								FullDesc:  sarifMessage{Text: "An alert rule or dashboard depends on this table, so moving it would break that consumer."},
								DefaultConfig: sarifConfig{
									Level: "note",
								},
							},
							{
								ID:        ruleNoQueryAudit,
								Name:      "NO_QUERY_AUDIT",
								ShortDesc: sarifMessage{Text: "Query auditing is not enabled"},
								FullDesc:  sarifMessage{Text: "Without LAQueryLogs data the analyzer cannot prove any table is rarely queried, so no plan changes are recommended."},
								DefaultConfig: sarifConfig{
									Level: "warning",
								},
							},
						},
					},
				},
				Results: buildSARIFResults(report),
				AutomationDetails: &sarifAutomationDetails{
					ID: "logspectre/analyze",
				},
			},
		},
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal SARIF: %w", err)
	}

	outputPath := filepath.Join(cfg.OutputDir, "report.sarif")
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report.sarif: %w", err)
	}

	return nil
}

func buildSARIFResults(report *models.Report) []sarifResult {
	results := make([]sarifResult, 0)
	if report == nil {
		return results
	}

	for _, table := range report.Tables {
		candidate := table.Candidate
		decision := table.Decision

		if decision.Tier != models.TierAnalytics {
			category := "tier_change"
			fingerprint := hashFinding("recommendation", category, candidate.Name, string(decision.Tier))
			results = append(results, sarifResult{
				RuleID:    ruleTierChange,
				RuleIndex: ruleIndexPtr(ruleIndexTierChange),
				Level:     "warning",
				Message: sarifMessage{Text: fmt.Sprintf(
					"Table %q can move to the %s plan, saving $%.2f/month (%.2f GB ingested, %.1f queries/day).",
					candidate.Name, decision.Tier, decision.EstimatedMonthlySavings,
					candidate.TotalGB, candidate.AvgQueriesPerDay)},
				Locations: tableLocation(candidate.Name),
				PartialFingerprints: map[string]string{
					"logspectre/findingHash": fingerprint,
				},
				Properties: map[string]any{
					"category":            category,
					"table":               candidate.Name,
					"plan":                string(decision.Tier),
					"monthly_savings":     decision.EstimatedMonthlySavings,
					"total_gb":            candidate.TotalGB,
					"avg_queries_per_day": candidate.AvgQueriesPerDay,
					"is_custom_table":     candidate.IsCustomTable,
				},
			})
			continue
		}

		if decision.Gates.UsedInAlerts || decision.Gates.UsedInDashboards {
			category := "gated_table"
			fingerprint := hashFinding("recommendation", category, candidate.Name, decision.Reason)
			results = append(results, sarifResult{
				RuleID:    ruleGatedTable,
				RuleIndex: ruleIndexPtr(ruleIndexGatedTable),
				Level:     "note",
				Message:   sarifMessage{Text: fmt.Sprintf("Table %q stays on the Analytics plan: %s.", candidate.Name, decision.Reason)},
				Locations: tableLocation(candidate.Name),
				PartialFingerprints: map[string]string{
					"logspectre/findingHash": fingerprint,
				},
				Properties: map[string]any{
					"category":           category,
					"table":              candidate.Name,
					"reason":             decision.Reason,
					"used_in_alerts":     decision.Gates.UsedInAlerts,
					"used_in_dashboards": decision.Gates.UsedInDashboards,
				},
			})
		}
	}

	if !report.Summary.FrequencyDataAvailable && report.Summary.TotalIngestedGB > 0 {
		results = append(results, sarifResult{
			RuleID:    ruleNoQueryAudit,
			RuleIndex: ruleIndexPtr(ruleIndexNoQueryAudit),
			Level:     "warning",
			Message:   sarifMessage{Text: "Query auditing is not enabled, so no plan changes were recommended this run."},
			Locations: fallbackLocation(),
			PartialFingerprints: map[string]string{
				"logspectre/findingHash": hashFinding("advisory", "no_query_audit"),
			},
			Properties: map[string]any{
				"category": "no_query_audit",
			},
		})
	}

	return results
}

func tableLocation(tableName string) []sarifLocation {
	normalized := strings.TrimSpace(tableName)
	if normalized == "" {
		normalized = "unknown_table"
	}

	return []sarifLocation{
		{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: sarifFallbackLocationURI},
				Region: &sarifRegion{
					StartLine: 1,
				},
			},
			LogicalLocations: []sarifLogicalLocation{
				{
					Name:               normalized,
					FullyQualifiedName: normalized,
					Kind:               "table",
				},
			},
		},
	}
}

func fallbackLocation() []sarifLocation {
	return []sarifLocation{
		{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: sarifFallbackLocationURI},
				Region: &sarifRegion{
					StartLine: 1,
				},
			},
			LogicalLocations: []sarifLogicalLocation{
				{
					Name:               "workspace",
					FullyQualifiedName: "logspectre.workspace",
					Kind:               "finding",
				},
			},
		},
	}
}

func normalizeSemanticVersion(version string) string {
	normalized := strings.TrimSpace(strings.TrimPrefix(version, "v"))
	if semanticVersionPattern.MatchString(normalized) {
		return normalized
	}
	return ""
}

func hashFinding(parts ...string) string {
	canonical := strings.Join(parts, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func ruleIndexPtr(index int) *int {
	value := index
	return &value
}
