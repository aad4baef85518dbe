package reporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

func TestWriteTextProducesReadableOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	if err := writeText(sampleCostReport(), cfg, &out); err != nil {
		t.Fatalf("writeText failed: %v", err)
	}

	rendered := out.String()
	wanted := []string{
		"LogSpectre Cost Report",
		"Generated: 2026-08-01T12:00:00Z",
		"Workspaces analyzed: 2 (2 with data)",
		"Total ingested: 57.50 GB",
		"Workspaces",
		"prod-logs",
		"PerGB2018",
		"90d",
		"Plan distribution:",
		"Projected monthly savings: $82.11",
		"Query frequency data: available",
		"Recommendations By Table",
		"Perf",
		"Debug_CL",
		"Held On Analytics",
		"- SecurityEvent (used in alert rule(s))",
		"Cards",
		"- [savings] Move Perf to the Basic tier ($58.65/month estimated savings)",
		"- [success] Analysis complete",
	}
	for _, want := range wanted {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, rendered)
		}
	}

	// No ANSI escapes when writing to a buffer.
	if strings.Contains(rendered, textANSIBold) {
		t.Fatal("expected plain output without ANSI codes")
	}

	persisted, err := os.ReadFile(filepath.Join(cfg.OutputDir, "report.txt"))
	if err != nil {
		t.Fatalf("failed to read report.txt: %v", err)
	}
	if string(persisted) != rendered {
		t.Fatal("expected report.txt to match the streamed output")
	}
}

func TestWriteTextMissingFrequencyData(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	report := &models.Report{
		Summary: models.AnalysisSummary{
			TotalIngestedGB:        10,
			WorkspaceCount:         1,
			WorkspacesWithData:     1,
			FrequencyDataAvailable: false,
			LookbackDays:           30,
		},
	}

	var out bytes.Buffer
	if err := writeText(report, cfg, &out); err != nil {
		t.Fatalf("writeText failed: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "Query frequency data: missing (enable LAQueryLogs)") {
		t.Fatalf("expected missing frequency notice, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "No plan changes recommended.") {
		t.Fatalf("expected empty recommendation table notice, got:\n%s", rendered)
	}
}

func TestWriteTextNilArguments(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	if err := writeText(nil, cfg, &out); err == nil {
		t.Fatal("expected error for nil report")
	}
	if err := writeText(sampleCostReport(), nil, &out); err == nil {
		t.Fatal("expected error for nil config")
	}
	if err := writeText(sampleCostReport(), cfg, nil); err == nil {
		t.Fatal("expected error for nil writer")
	}
}

func TestTruncateTextValue(t *testing.T) {
	cases := []struct {
		name  string
		value string
		width int
		want  string
	}{
		{name: "fits", value: "Perf", width: 10, want: "Perf"},
		{name: "truncated", value: "AVeryLongCustomTableName_CL", width: 10, want: "AVeryLo..."},
		{name: "tiny_width", value: "Perf", width: 2, want: "Pe"},
		{name: "zero_width", value: "Perf", width: 0, want: "Perf"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateTextValue(tc.value, tc.width); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
