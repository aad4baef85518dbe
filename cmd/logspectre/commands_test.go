package main

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/logspectre/internal/cardml"
	"github.com/ppiankov/logspectre/internal/history"
	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/internal/pricing"
	"github.com/ppiankov/logspectre/pkg/config"
)

// isolateConfig keeps the developer's real .logspectre.yaml out of tests
// that exercise config discovery.
func isolateConfig(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prevDir); err != nil {
			t.Fatal(err)
		}
	})
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, ".config"))
	return tempDir
}

const testBundleJSON = `{
  "generated_at": "2026-08-01T12:00:00Z",
  "lookback_days": 30,
  "workspaces": [
    {
      "metadata": {
        "name": "prod-logs",
        "resource_group": "rg-observability",
        "retention_days": 30,
        "sku_tier": "PerGB2018"
      },
      "results": {
        "volume_by_table": {
          "columns": ["DataType", "BillableGB"],
          "rows": [["Perf", 40.0], ["Debug_CL", 12.0]]
        },
        "query_frequency": {
          "columns": ["TableName", "AvgQueriesPerDay"],
          "rows": [["Perf", 0.4]]
        }
      }
    }
  ],
  "alert_rules": [],
  "dashboard_tiles": []
}`

func writeTestBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, []byte(testBundleJSON), 0o644); err != nil {
		t.Fatalf("failed to write bundle file: %v", err)
	}
	return path
}

func TestNewAnalyzeCmdPreRunValidation(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		name         string
		input        string
		lookback     string
		queryTimeout string
		format       string
		wantErr      string
	}{
		{
			name:         "valid_durations",
			input:        "bundle.json",
			lookback:     "7d",
			queryTimeout: "30m",
			format:       "json",
			wantErr:      "",
		},
		{
			name:         "valid_sarif_format",
			input:        "bundle.json",
			lookback:     "7d",
			queryTimeout: "30m",
			format:       "sarif",
			wantErr:      "",
		},
		{
			name:         "valid_format_list",
			input:        "bundle.json",
			lookback:     "7d",
			queryTimeout: "30m",
			format:       "json, markdown, cards",
			wantErr:      "",
		},
		{
			name:         "invalid_lookback",
			input:        "bundle.json",
			lookback:     "bad",
			queryTimeout: "30m",
			format:       "json",
			wantErr:      "invalid --lookback duration",
		},
		{
			name:         "invalid_query_timeout",
			input:        "bundle.json",
			lookback:     "7d",
			queryTimeout: "bad",
			format:       "json",
			wantErr:      "invalid --query-timeout duration",
		},
		{
			name:         "invalid_format",
			input:        "bundle.json",
			lookback:     "7d",
			queryTimeout: "30m",
			format:       "yaml",
			wantErr:      "invalid --format value",
		},
		{
			name:         "missing_input",
			input:        "",
			lookback:     "7d",
			queryTimeout: "30m",
			format:       "json",
			wantErr:      "--input is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewAnalyzeCmd()

			if tc.input != "" {
				if err := cmd.Flags().Set("input", tc.input); err != nil {
					t.Fatalf("failed to set input flag: %v", err)
				}
			}
			if err := cmd.Flags().Set("lookback", tc.lookback); err != nil {
				t.Fatalf("failed to set lookback flag: %v", err)
			}
			if err := cmd.Flags().Set("query-timeout", tc.queryTimeout); err != nil {
				t.Fatalf("failed to set query-timeout flag: %v", err)
			}
			if err := cmd.Flags().Set("format", tc.format); err != nil {
				t.Fatalf("failed to set format flag: %v", err)
			}

			err := cmd.PreRunE(cmd, nil)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewAnalyzeCmdCompatibilityAliases(t *testing.T) {
	cmd := NewAnalyzeCmd()

	hasAuditAlias := false
	for _, alias := range cmd.Aliases {
		if alias == "audit" {
			hasAuditAlias = true
			break
		}
	}
	if !hasAuditAlias {
		t.Fatal("expected analyze command to include audit alias")
	}
}

func TestNewAnalyzeCmdAutoLoadsConfigFile(t *testing.T) {
	tempDir := isolateConfig(t)

	configContent := "input: usage.json\nformat: text\ntimeout: 2m\n"
	if err := os.WriteFile(filepath.Join(tempDir, ".logspectre.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cmd := NewAnalyzeCmd()
	if err := cmd.PreRunE(cmd, nil); err != nil {
		t.Fatalf("expected auto-loaded config file to satisfy PreRun validation, got %v", err)
	}
}

func TestNewAnalyzeCmdConfigFlagLoadsCustomPath(t *testing.T) {
	isolateConfig(t)

	customPath := filepath.Join(t.TempDir(), "custom-config.yaml")
	configContent := "input: usage.json\n"
	if err := os.WriteFile(customPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write custom config file: %v", err)
	}

	cmd := NewAnalyzeCmd()
	if err := cmd.Flags().Set("config", customPath); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}
	if err := cmd.PreRunE(cmd, nil); err != nil {
		t.Fatalf("expected --config path to load successfully, got %v", err)
	}
}

func TestNewAnalyzeCmdFlagsOverrideConfigFileValues(t *testing.T) {
	tempDir := isolateConfig(t)

	// Config file intentionally contains invalid format and timeout values.
	configContent := "input: from-config.json\nformat: yaml\ntimeout: bad-duration\n"
	if err := os.WriteFile(filepath.Join(tempDir, ".logspectre.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cmd := NewAnalyzeCmd()
	if err := cmd.Flags().Set("input", "from-cli.json"); err != nil {
		t.Fatalf("failed to set input flag: %v", err)
	}
	if err := cmd.Flags().Set("format", "json"); err != nil {
		t.Fatalf("failed to set format flag: %v", err)
	}
	if err := cmd.Flags().Set("query-timeout", "1m"); err != nil {
		t.Fatalf("failed to set query-timeout flag: %v", err)
	}

	if err := cmd.PreRunE(cmd, nil); err != nil {
		t.Fatalf("expected CLI flags to override invalid config-file values, got %v", err)
	}
}

func TestRunAnalyzeFailsOnMissingBundle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.json")

	err := runAnalyze(cfg, false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read bundle") {
		t.Fatalf("expected bundle read error, got %v", err)
	}
}

func TestRunAnalyzeEndToEnd(t *testing.T) {
	bundlePath := writeTestBundle(t)
	workDir := t.TempDir()
	outputDir := filepath.Join(workDir, "report")
	historyPath := filepath.Join(workDir, "history.db")

	cfg := config.DefaultConfig()
	cfg.InputPath = bundlePath
	cfg.OutputDir = outputDir
	cfg.Format = "json,cards"
	cfg.HistoryPath = historyPath

	err := runAnalyze(cfg, true)
	var fe *FindingsError
	if !errors.As(err, &fe) {
		t.Fatalf("expected findings error with --fail-on-savings, got %v", err)
	}
	if fe.Count == 0 {
		t.Fatal("expected at least one savings finding")
	}

	jsonData, err := os.ReadFile(filepath.Join(outputDir, "report.json"))
	if err != nil {
		t.Fatalf("expected report.json to be written: %v", err)
	}
	if !strings.Contains(string(jsonData), `"tool": "logspectre"`) {
		t.Fatal("expected report.json to carry the tool name")
	}

	cardsData, err := os.ReadFile(filepath.Join(outputDir, "report.cards"))
	if err != nil {
		t.Fatalf("expected report.cards to be written: %v", err)
	}
	if !strings.Contains(string(cardsData), "[CARD:savings]") {
		t.Fatal("expected a savings card in report.cards")
	}

	store, err := history.Open(historyPath)
	if err != nil {
		t.Fatalf("expected history database to open: %v", err)
	}
	defer store.Close()
	runs, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected history listing, got %v", err)
	}
	if len(runs) != 1 || runs[0].Workspaces != 1 {
		t.Fatalf("expected one recorded run over one workspace, got %+v", runs)
	}
}

func TestRunAnalyzeBaselineRoundTrip(t *testing.T) {
	bundlePath := writeTestBundle(t)
	workDir := t.TempDir()
	baselinePath := filepath.Join(workDir, "baseline.json")

	record := config.DefaultConfig()
	record.InputPath = bundlePath
	record.OutputDir = filepath.Join(workDir, "report")
	record.Format = "json"
	record.BaselinePath = baselinePath
	record.UpdateBaseline = true
	if err := runAnalyze(record, false); err != nil {
		t.Fatalf("expected baseline recording run to succeed, got %v", err)
	}

	if _, err := os.Stat(baselinePath); err != nil {
		t.Fatalf("expected baseline file to be written: %v", err)
	}

	verify := config.DefaultConfig()
	verify.InputPath = bundlePath
	verify.OutputDir = filepath.Join(workDir, "report2")
	verify.Format = "json"
	verify.BaselinePath = baselinePath
	if err := runAnalyze(verify, true); err != nil {
		t.Fatalf("expected baseline to suppress all findings, got %v", err)
	}

	// The closing card is rebuilt after suppression, so it must not keep
	// counting the findings the baseline removed.
	jsonData, err := os.ReadFile(filepath.Join(verify.OutputDir, "report.json"))
	if err != nil {
		t.Fatalf("expected suppressed report.json to be written: %v", err)
	}
	if !strings.Contains(string(jsonData), "No cost optimizations found") {
		t.Fatal("expected closing card to report no remaining findings")
	}
	if !strings.Contains(string(jsonData), "hidden by the baseline") {
		t.Fatal("expected closing card to note the suppressed findings")
	}
	if strings.Contains(string(jsonData), "change(s) above are worth reviewing") {
		t.Fatal("expected stale closing card to be replaced")
	}
}

func TestRunAnalyzeDryRunSkipsOutput(t *testing.T) {
	bundlePath := writeTestBundle(t)
	outputDir := filepath.Join(t.TempDir(), "report")

	cfg := config.DefaultConfig()
	cfg.InputPath = bundlePath
	cfg.OutputDir = outputDir
	cfg.DryRun = true

	if err := runAnalyze(cfg, false); err != nil {
		t.Fatalf("expected dry run to succeed, got %v", err)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory after dry run, got stat err %v", err)
	}
}

func TestBuildReportIncludesAnalyzedData(t *testing.T) {
	cfg := config.DefaultConfig()

	summary := models.AnalysisSummary{
		TotalIngestedGB:        52.0,
		WorkspaceCount:         1,
		WorkspacesWithData:     1,
		FrequencyDataAvailable: true,
		LookbackDays:           30,
		Candidates: []models.TableCandidate{
			{Name: "Perf", TotalGB: 40.0, AvgQueriesPerDay: 0.4},
		},
	}
	tables := []models.ClassifiedTable{
		{
			Candidate: summary.Candidates[0],
			Decision: models.TierDecision{
				Tier:                    models.TierBasic,
				Reason:                  "infrequently queried, not referenced elsewhere",
				EstimatedMonthlySavings: 55.20,
			},
		},
	}
	cards := []models.RecommendationCard{
		{Kind: models.CardSavings, Title: "Move Perf to the Basic tier", Impact: "$55.20/month", Body: "Perf ingested 40.00 GB."},
	}
	input := models.AnalysisInput{
		Workspaces: []models.WorkspaceData{
			{Metadata: models.WorkspaceMetadata{Name: "prod-logs"}},
		},
		AlertRules: []models.QueryRef{
			{DisplayName: "High CPU"},
		},
		DashboardTiles: []models.QueryRef{
			{DisplayName: "Overview"},
			{DisplayName: "Capacity"},
		},
	}

	report := buildReport(cfg, summary, tables, cards, input, time.Now().Add(-2*time.Second))

	if report.Tool != "logspectre" {
		t.Fatalf("expected tool to be %q, got %q", "logspectre", report.Tool)
	}
	if report.Version != version {
		t.Fatalf("expected report version to be %q, got %q", version, report.Version)
	}
	parsedTimestamp, err := time.Parse(time.RFC3339, report.Timestamp)
	if err != nil {
		t.Fatalf("expected RFC3339 timestamp, got %q: %v", report.Timestamp, err)
	}
	if report.Timestamp != report.Metadata.GeneratedAt.UTC().Format(time.RFC3339) {
		t.Fatalf("expected timestamp to match metadata.generated_at at RFC3339 precision, got %q and %q", report.Timestamp, report.Metadata.GeneratedAt.UTC().Format(time.RFC3339))
	}
	if parsedTimestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got location %q", parsedTimestamp.Location())
	}

	if _, err := uuid.Parse(report.Metadata.RunID); err != nil {
		t.Fatalf("expected run id to be a UUID, got %q: %v", report.Metadata.RunID, err)
	}
	if report.Metadata.LookbackDays != 30 {
		t.Fatalf("expected 30 lookback days, got %d", report.Metadata.LookbackDays)
	}
	if report.Metadata.WorkspacesQueried != 1 {
		t.Fatalf("expected 1 workspace queried, got %d", report.Metadata.WorkspacesQueried)
	}
	if report.Metadata.AlertRulesScanned != 1 {
		t.Fatalf("expected 1 alert rule scanned, got %d", report.Metadata.AlertRulesScanned)
	}
	if report.Metadata.DashboardsScanned != 2 {
		t.Fatalf("expected 2 dashboards scanned, got %d", report.Metadata.DashboardsScanned)
	}
	if report.Metadata.AnalysisDuration == "" {
		t.Fatal("expected analysis duration to be recorded")
	}
	if len(report.Tables) != 1 || len(report.Cards) != 1 {
		t.Fatalf("expected tables and cards to be included, got %d and %d", len(report.Tables), len(report.Cards))
	}
}

func TestBuildAnalysisSummaryNoFindings(t *testing.T) {
	report := &models.Report{
		Summary: models.AnalysisSummary{
			WorkspaceCount: 3,
			Candidates: []models.TableCandidate{
				{Name: "Perf"},
				{Name: "SecurityEvent"},
			},
		},
		Tables: []models.ClassifiedTable{
			{Decision: models.TierDecision{Tier: models.TierAnalytics}},
			{Decision: models.TierDecision{Tier: models.TierAnalytics}},
		},
		Cards: []models.RecommendationCard{
			{Kind: models.CardWarning, Title: "Alert rules depend on these tables"},
			{Kind: models.CardSuccess, Title: "Analysis complete"},
		},
	}

	summary := buildAnalysisSummary(report)
	if summary.workspaceCount != 3 {
		t.Fatalf("expected 3 workspaces, got %d", summary.workspaceCount)
	}
	if summary.candidateCount != 2 {
		t.Fatalf("expected 2 candidates, got %d", summary.candidateCount)
	}
	if summary.moveCount != 0 {
		t.Fatalf("expected 0 plan moves, got %d", summary.moveCount)
	}
	if summary.heldCount != 2 {
		t.Fatalf("expected 2 tables held, got %d", summary.heldCount)
	}
	if summary.cardCount != 2 {
		t.Fatalf("expected 2 cards, got %d", summary.cardCount)
	}
	if summary.findingCount != 0 {
		t.Fatalf("expected 0 findings, got %d", summary.findingCount)
	}
}

func TestBuildAnalysisSummaryWithFindings(t *testing.T) {
	report := &models.Report{
		Summary: models.AnalysisSummary{
			WorkspaceCount: 1,
			Candidates: []models.TableCandidate{
				{Name: "Perf"},
				{Name: "Debug_CL"},
				{Name: "SecurityEvent"},
			},
		},
		Tables: []models.ClassifiedTable{
			{Decision: models.TierDecision{Tier: models.TierBasic}},
			{Decision: models.TierDecision{Tier: models.TierAuxiliary}},
			{Decision: models.TierDecision{Tier: models.TierAnalytics}},
		},
		Cards: []models.RecommendationCard{
			{Kind: models.CardSavings, Title: "Move Perf to the Basic tier"},
			{Kind: models.CardSavings, Title: "Move Debug_CL to the Auxiliary tier"},
			{Kind: models.CardInfo, Title: "Review interactive retention"},
		},
	}

	summary := buildAnalysisSummary(report)
	if summary.moveCount != 2 {
		t.Fatalf("expected 2 plan moves, got %d", summary.moveCount)
	}
	if summary.heldCount != 1 {
		t.Fatalf("expected 1 table held, got %d", summary.heldCount)
	}
	if summary.findingCount != 2 {
		t.Fatalf("expected 2 findings, got %d", summary.findingCount)
	}
}

func TestPriceSheetScalesWithConfiguredRate(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := priceSheet(cfg); got != pricing.Default() {
		t.Fatalf("expected default price sheet, got %+v", got)
	}

	cfg.AnalyticsPricePerGB = 5.52
	prices := priceSheet(cfg)
	if prices.AnalyticsPerGB != 5.52 {
		t.Fatalf("expected configured analytics rate, got %v", prices.AnalyticsPerGB)
	}
	if math.Abs(prices.CommitmentPerGB-4.60) > 1e-9 {
		t.Fatalf("expected commitment rate to keep its ratio, got %v", prices.CommitmentPerGB)
	}
}

func TestValidateFormat(t *testing.T) {
	cases := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{name: "all", format: "all", wantErr: false},
		{name: "empty", format: "", wantErr: false},
		{name: "list_with_spaces", format: "json, markdown", wantErr: false},
		{name: "md_shorthand", format: "md", wantErr: false},
		{name: "empty_segments", format: "json,,text", wantErr: false},
		{name: "unknown", format: "pdf", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateFormat(tc.format)
			if tc.wantErr && (err == nil || !strings.Contains(err.Error(), "invalid --format value")) {
				t.Fatalf("expected invalid format error, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestRenderCommandFormats(t *testing.T) {
	cards := []models.RecommendationCard{
		{Kind: models.CardSavings, Title: "Move Perf to the Basic tier", Impact: "$55.20/month", Body: "Perf ingested 40.00 GB."},
		{Kind: models.CardSuccess, Title: "Analysis complete", Body: "No further tier moves found."},
	}
	dir := t.TempDir()
	cardsPath := filepath.Join(dir, "report.cards")
	if err := os.WriteFile(cardsPath, []byte(cardml.RenderMarkup(cards)), 0o644); err != nil {
		t.Fatalf("failed to write cards file: %v", err)
	}

	htmlPath := filepath.Join(dir, "out.html")
	if err := runRender(cardsPath, "html", htmlPath); err != nil {
		t.Fatalf("expected html render to succeed, got %v", err)
	}
	htmlData, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("expected rendered html file: %v", err)
	}
	if !strings.Contains(string(htmlData), "<!DOCTYPE html>") || !strings.Contains(string(htmlData), "Move Perf") {
		t.Fatal("expected html output to carry the document shell and card titles")
	}

	mdPath := filepath.Join(dir, "out.md")
	if err := runRender(cardsPath, "markdown", mdPath); err != nil {
		t.Fatalf("expected markdown render to succeed, got %v", err)
	}
	mdData, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("expected rendered markdown file: %v", err)
	}
	if !strings.Contains(string(mdData), "# Log Analytics Cost Report") {
		t.Fatal("expected markdown output to carry the report heading")
	}

	if err := runRender(cardsPath, "pdf", ""); err == nil || !strings.Contains(err.Error(), "invalid --format value") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
	if err := runRender(filepath.Join(dir, "missing.cards"), "html", ""); err == nil || !strings.Contains(err.Error(), "failed to read cards file") {
		t.Fatalf("expected missing file error, got %v", err)
	}

	emptyPath := filepath.Join(dir, "empty.cards")
	if err := os.WriteFile(emptyPath, []byte("no markup here\n"), 0o644); err != nil {
		t.Fatalf("failed to write empty cards file: %v", err)
	}
	if err := runRender(emptyPath, "html", ""); err == nil || !strings.Contains(err.Error(), "no cards found") {
		t.Fatalf("expected no cards error, got %v", err)
	}
}

func TestHistoryCommandValidation(t *testing.T) {
	if _, err := openExistingStore(filepath.Join(t.TempDir(), "missing.db")); err == nil || !strings.Contains(err.Error(), "history database not found") {
		t.Fatalf("expected missing database error, got %v", err)
	}

	if got := shortID("9d2f4a31-5c1e-4c3a-9d70-6f4be1c3a001"); got != "9d2f4a31" {
		t.Fatalf("expected shortened run id, got %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("expected short ids to pass through, got %q", got)
	}

	path := "unused.db"
	prune := newHistoryPruneCmd(&path)
	if err := prune.Flags().Set("keep", "0"); err != nil {
		t.Fatalf("failed to set keep flag: %v", err)
	}
	if err := prune.RunE(prune, nil); err == nil || !strings.Contains(err.Error(), "must be at least 1") {
		t.Fatalf("expected keep validation error, got %v", err)
	}
}

func TestServeCommandAndRunServeValidation(t *testing.T) {
	cmd := NewServeCmd()
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Fatal("expected args validation error for too many arguments")
	}

	if err := runServe(filepath.Join(t.TempDir(), "missing"), 8080); err == nil || !strings.Contains(err.Error(), "directory not found") {
		t.Fatalf("expected missing directory error, got %v", err)
	}

	dir := t.TempDir()
	if err := runServe(dir, 8080); err == nil || !strings.Contains(err.Error(), "no report found") {
		t.Fatalf("expected missing report error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	if err := NewVersionCmd().Execute(); err != nil {
		t.Fatalf("version command execution failed: %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "findings", err: &FindingsError{Count: 2}, want: ExitFindings},
		{name: "not_found", err: errors.New("history database not found: runs.db"), want: ExitNotFound},
		{name: "run_not_found", err: errors.New("run not found: 9d2f"), want: ExitNotFound},
		{name: "network", err: errors.New("dial tcp 127.0.0.1:8080: connection refused"), want: ExitNetwork},
		{name: "invalid_arg", err: errors.New("--input is required (path to a usage bundle)"), want: ExitInvalidArg},
		{name: "internal", err: errors.New("something broke"), want: ExitInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyError(tc.err); got != tc.want {
				t.Fatalf("expected exit code %d, got %d", tc.want, got)
			}
		})
	}
}
