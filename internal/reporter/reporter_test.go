package reporter

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

func sampleCostReport() *models.Report {
	return &models.Report{
		Tool:      "logspectre",
		Version:   "1.2.3",
		Timestamp: "2026-08-01T12:00:00Z",
		Metadata: models.Metadata{
			RunID:             "9d2f4a31-0c8e-4f7b-9b1a-52dd0e6f0001",
			GeneratedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			LookbackDays:      30,
			WorkspacesQueried: 2,
			AlertRulesScanned: 3,
			DashboardsScanned: 1,
			AnalysisDuration:  "2s",
			Version:           "1.2.3",
		},
		Summary: models.AnalysisSummary{
			TotalIngestedGB:    57.5,
			WorkspaceCount:     2,
			WorkspacesWithData: 2,
			Workspaces: []models.WorkspaceUsage{
				{WorkspaceName: "prod-logs", ResourceGroup: "rg-observability", RetentionDays: 90, SkuTier: "PerGB2018", IngestedGB: 47.5},
				{WorkspaceName: "stage-logs", ResourceGroup: "rg-observability", RetentionDays: 30, SkuTier: "PerGB2018", IngestedGB: 10},
			},
			FrequencyDataAvailable: true,
			LookbackDays:           30,
		},
		Tables: []models.ClassifiedTable{
			{
				Candidate: models.TableCandidate{Name: "Perf", TotalGB: 42.5, AvgQueriesPerDay: 0.2},
				Decision: models.TierDecision{
					Tier:                    models.TierBasic,
					Reason:                  "infrequently queried, not referenced elsewhere",
					EstimatedMonthlySavings: 58.65,
				},
			},
			{
				Candidate: models.TableCandidate{Name: "Debug_CL", TotalGB: 10, AvgQueriesPerDay: 0.1, IsCustomTable: true},
				Decision: models.TierDecision{
					Tier:                    models.TierAuxiliary,
					Reason:                  "rarely-queried custom table",
					EstimatedMonthlySavings: 23.46,
				},
			},
			{
				Candidate: models.TableCandidate{Name: "SecurityEvent", TotalGB: 5, AvgQueriesPerDay: 12},
				Decision: models.TierDecision{
					Tier:   models.TierAnalytics,
					Reason: "used in alert rule(s)",
					Gates:  models.UsageGates{UsedInAlerts: true, FrequentlyQueried: true},
				},
			},
		},
		Cards: []models.RecommendationCard{
			{
				Kind:   models.CardWarning,
				Title:  "Alert rules depend on these tables",
				Impact: "1 table(s) held on Analytics",
				Body:   "Moving `SecurityEvent` would break the alert rules that query it.",
			},
			{
				Kind:   models.CardSavings,
				Title:  "Move Perf to the Basic tier",
				Impact: "$58.65/month estimated savings",
				Body:   "`Perf` is infrequently queried.",
				Action: "az monitor log-analytics workspace table update --name Perf --plan Basic",
			},
			{
				Kind:  models.CardSuccess,
				Title: "Analysis complete",
			},
		},
	}
}

func TestGenerateAllFormats(t *testing.T) {
	outDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.OutputDir = outDir
	cfg.Format = "all"

	if err := New(cfg).Generate(sampleCostReport()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	markers := map[string]string{
		"report.json":  `"tool": "logspectre"`,
		"report.html":  "<!DOCTYPE html>",
		"report.md":    "# Log Analytics Cost Report",
		"report.cards": "[CARD:savings]",
		"report.sarif": `"version": "2.1.0"`,
		"report.txt":   "LogSpectre Cost Report",
	}
	for filename, marker := range markers {
		payload, err := os.ReadFile(filepath.Join(outDir, filename))
		if err != nil {
			t.Fatalf("expected %s to be written: %v", filename, err)
		}
		if !strings.Contains(string(payload), marker) {
			t.Fatalf("expected %s to contain %q", filename, marker)
		}
	}
}

func TestGenerateSelectedFormats(t *testing.T) {
	outDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.OutputDir = outDir
	cfg.Format = "json, markdown"

	if err := New(cfg).Generate(sampleCostReport()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, filename := range []string{"report.json", "report.md"} {
		if _, err := os.Stat(filepath.Join(outDir, filename)); err != nil {
			t.Fatalf("expected %s to be written: %v", filename, err)
		}
	}
	for _, filename := range []string{"report.html", "report.sarif", "report.txt", "report.cards"} {
		if _, err := os.Stat(filepath.Join(outDir, filename)); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be skipped", filename)
		}
	}
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Format = "pdf"

	err := New(cfg).Generate(sampleCostReport())
	if err == nil || !strings.Contains(err.Error(), "unknown report format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestFormatExpansion(t *testing.T) {
	cases := []struct {
		name   string
		format string
		want   []string
	}{
		{
			name:   "empty_means_all",
			format: "",
			want:   []string{"json", "html", "markdown", "cards", "sarif", "text"},
		},
		{
			name:   "all",
			format: "all",
			want:   []string{"json", "html", "markdown", "cards", "sarif", "text"},
		},
		{
			name:   "comma_list_trimmed",
			format: " JSON , sarif ",
			want:   []string{"json", "sarif"},
		},
		{
			name:   "single",
			format: "html",
			want:   []string{"html"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Format = tc.format
			r := &reporter{config: cfg}
			if got := r.formats(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
