package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/logspectre/internal/analyzer"
	"github.com/ppiankov/logspectre/internal/baseline"
	"github.com/ppiankov/logspectre/internal/classifier"
	"github.com/ppiankov/logspectre/internal/collector"
	"github.com/ppiankov/logspectre/internal/composer"
	"github.com/ppiankov/logspectre/internal/history"
	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/internal/pricing"
	"github.com/ppiankov/logspectre/internal/reporter"
	"github.com/ppiankov/logspectre/pkg/config"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	// String variables for custom duration parsing
	var lookbackStr string
	var queryTimeoutStr string
	var configPath string
	var failOnSavings bool

	cmd := &cobra.Command{
		Use:     "analyze",
		Aliases: []string{"audit"},
		Short:   "Analyze workspace usage and generate a cost report",
		Long: `Analyze a Log Analytics usage bundle to find tables that can move
to the Basic or Auxiliary ingestion plan, estimate the monthly savings,
and write prioritized recommendation cards.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			fileCfg, err := loadConfigFile(configPath)
			if err != nil {
				return err
			}
			applyFileConfig(cmd, cfg, fileCfg, &lookbackStr, &queryTimeoutStr)

			// Parse custom durations
			if lookbackStr != "" {
				cfg.LookbackPeriod, err = config.ParseDuration(lookbackStr)
				if err != nil {
					return fmt.Errorf("invalid --lookback duration: %w", err)
				}
			}

			if queryTimeoutStr != "" {
				cfg.QueryTimeout, err = config.ParseDuration(queryTimeoutStr)
				if err != nil {
					return fmt.Errorf("invalid --query-timeout duration: %w", err)
				}
			}

			if err := validateFormat(cfg.Format); err != nil {
				return err
			}

			if strings.TrimSpace(cfg.InputPath) == "" {
				return fmt.Errorf("--input is required (path to a usage bundle)")
			}

			cfg.Normalize()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cfg, failOnSavings)
		},
	}

	// Input flags
	cmd.Flags().StringVar(&cfg.InputPath, "input", "", "Usage bundle JSON exported from the workspace estate (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: .logspectre.yaml in cwd or home)")

	// Query flags
	cmd.Flags().StringVar(&lookbackStr, "lookback", "30d", "Lookback period (e.g., 7d, 30d, 90d, 720h)")
	cmd.Flags().StringVar(&queryTimeoutStr, "query-timeout", "5m", "Per-query timeout (e.g., 5m, 10m, 1h)")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 5, "Worker pool size")
	cmd.Flags().IntVar(&cfg.RateLimit, "rate-limit", 10, "Query rate limit (requests/sec, 0 = unlimited)")

	// Analysis flags
	cmd.Flags().StringSliceVar(&cfg.ExcludeTables, "exclude-tables", nil, "Table names to exclude from recommendations")
	cmd.Flags().Float64Var(&cfg.FrequentQueriesPerDay, "frequent-per-day", 5.0, "Queries/day above which a table stays on Analytics")
	cmd.Flags().Float64Var(&cfg.RareQueriesPerDay, "rare-per-day", 1.0, "Queries/day below which a custom table is Auxiliary-eligible")
	cmd.Flags().Float64Var(&cfg.AnalyticsPricePerGB, "price-per-gb", pricing.DefaultAnalyticsPerGB, "Analytics ingestion price per GB")

	// Output flags
	cmd.Flags().StringVar(&cfg.OutputDir, "output", "./report", "Output directory")
	cmd.Flags().StringVar(&cfg.Format, "format", "all", "Output formats (all or comma-separated: json, html, markdown, cards, sarif, text)")

	// History and baseline flags
	cmd.Flags().StringVar(&cfg.HistoryPath, "history", "", "SQLite database to append this run to (empty = disabled)")
	cmd.Flags().StringVar(&cfg.BaselinePath, "baseline", "", "Baseline file of known findings to suppress")
	cmd.Flags().BoolVar(&cfg.UpdateBaseline, "update-baseline", false, "Record current findings in the baseline instead of suppressing")
	cmd.Flags().BoolVar(&failOnSavings, "fail-on-savings", false, "Exit non-zero when savings findings remain")

	// Operational flags
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Verbose logging")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Dry run mode (don't write output)")

	return cmd
}

// loadConfigFile loads an explicit --config path, or discovers one.
func loadConfigFile(path string) (*config.FileConfig, error) {
	if strings.TrimSpace(path) != "" {
		return config.LoadFile(path)
	}

	fileCfg, _, err := config.AutoLoadFile()
	if err != nil {
		return nil, err
	}
	return fileCfg, nil
}

// applyFileConfig fills in settings from the config file for every flag
// the user did not set explicitly. Flags always win over file values.
func applyFileConfig(cmd *cobra.Command, cfg *config.Config, fileCfg *config.FileConfig, lookbackStr, queryTimeoutStr *string) {
	if fileCfg == nil {
		return
	}

	changed := cmd.Flags().Changed

	if fileCfg.Input != "" && !changed("input") {
		cfg.InputPath = fileCfg.Input
	}
	if len(fileCfg.ExcludeTables) > 0 && !changed("exclude-tables") {
		cfg.ExcludeTables = fileCfg.ExcludeTables
	}
	if fileCfg.Format != "" && !changed("format") {
		cfg.Format = fileCfg.Format
	}
	if fileCfg.OutputDir != "" && !changed("output") {
		cfg.OutputDir = fileCfg.OutputDir
	}
	if fileCfg.Lookback != "" && !changed("lookback") {
		*lookbackStr = fileCfg.Lookback
	}
	if timeout := fileCfg.QueryTimeoutValue(); timeout != "" && !changed("query-timeout") {
		*queryTimeoutStr = timeout
	}
	if fileCfg.FrequentQueriesPerDay != nil && !changed("frequent-per-day") {
		cfg.FrequentQueriesPerDay = *fileCfg.FrequentQueriesPerDay
	}
	if fileCfg.RareQueriesPerDay != nil && !changed("rare-per-day") {
		cfg.RareQueriesPerDay = *fileCfg.RareQueriesPerDay
	}
	if fileCfg.AnalyticsPricePerGB != nil && !changed("price-per-gb") {
		cfg.AnalyticsPricePerGB = *fileCfg.AnalyticsPricePerGB
	}
	if fileCfg.History != "" && !changed("history") {
		cfg.HistoryPath = fileCfg.History
	}
	if fileCfg.Baseline != "" && !changed("baseline") {
		cfg.BaselinePath = fileCfg.Baseline
	}
}

// validateFormat rejects format strings the reporter cannot expand.
func validateFormat(format string) error {
	known := map[string]bool{
		reporter.FormatAll:      true,
		reporter.FormatJSON:     true,
		reporter.FormatHTML:     true,
		reporter.FormatMarkdown: true,
		"md":                    true,
		reporter.FormatCards:    true,
		reporter.FormatSARIF:    true,
		reporter.FormatText:     true,
	}

	raw := strings.ToLower(strings.TrimSpace(format))
	if raw == "" {
		return nil
	}
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if !known[trimmed] {
			return fmt.Errorf("invalid --format value %q (expected all or a comma-separated list of json, html, markdown, cards, sarif, text)", trimmed)
		}
	}
	return nil
}

// runAnalyze executes the analysis workflow
func runAnalyze(cfg *config.Config, failOnSavings bool) error {
	startTime := time.Now()
	ctx := context.Background()

	if cfg.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Printf("Starting LogSpectre analysis with configuration:")
		log.Printf("  Input bundle: %s", cfg.InputPath)
		log.Printf("  Lookback: %s", cfg.LookbackPeriod)
		log.Printf("  Concurrency: %d", cfg.Concurrency)
		log.Printf("  Rate limit: %d/s", cfg.RateLimit)
		log.Printf("  Output: %s (%s)", cfg.OutputDir, cfg.Format)
	}

	// 1. Load the usage bundle
	fmt.Println("📦 Loading usage bundle...")
	bundle, err := collector.LoadBundle(cfg.InputPath)
	if err != nil {
		return err
	}
	// The bundle records the window its data covers; pricing math must
	// use that window, not the flag.
	if bundle.LookbackDays > 0 {
		cfg.LookbackPeriod = time.Duration(bundle.LookbackDays) * 24 * time.Hour
	}
	fmt.Printf("✓ Bundle covers %d workspaces over %d days\n", len(bundle.Workspaces), cfg.LookbackDays())

	// 2. Collect usage data
	fmt.Println("📊 Collecting workspace usage...")
	col := collector.New(cfg, collector.NewBundleSource(bundle))
	input, err := col.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect usage data: %w", err)
	}
	fmt.Printf("✓ Collected %d workspaces, %d alert rules, %d dashboard tiles\n",
		len(input.Workspaces), len(input.AlertRules), len(input.DashboardTiles))

	// 3. Summarize usage
	fmt.Println("🔍 Summarizing usage...")
	summary := analyzer.New(cfg).Summarize(input)
	fmt.Printf("✓ %.2f GB ingested across %d workspaces (%d with data)\n",
		summary.TotalIngestedGB, summary.WorkspaceCount, summary.WorkspacesWithData)

	// 4. Classify candidate tables
	fmt.Println("🎯 Classifying tables...")
	prices := priceSheet(cfg)
	cls := classifier.New(prices)
	cls.FrequentPerDay = cfg.FrequentQueriesPerDay
	cls.RarePerDay = cfg.RareQueriesPerDay
	alertTables, dashboardTables := analyzer.ExtractReferences(input)
	tables := cls.ClassifyAll(summary.Candidates, classifier.References{
		AlertTables:     alertTables,
		DashboardTables: dashboardTables,
		FrequencyKnown:  summary.FrequencyDataAvailable,
	})

	// 5. Compose recommendation cards
	cards := composer.New(prices).Compose(summary, tables)

	// 6. Build the report
	report := buildReport(cfg, summary, tables, cards, input, startTime)
	as := buildAnalysisSummary(report)
	fmt.Printf("✓ %d candidates: %d plan moves, %d held on Analytics, %d cards\n",
		as.candidateCount, as.moveCount, as.heldCount, as.cardCount)

	// 7. Apply the baseline
	if cfg.UpdateBaseline || cfg.BaselinePath != "" {
		if err := applyBaseline(cfg, report); err != nil {
			return err
		}
	}

	// 8. Write output
	if !cfg.DryRun {
		fmt.Println("📝 Writing report...")
		rep := reporter.New(cfg)
		if err := rep.Generate(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		fmt.Printf("✓ Report written to: %s\n", cfg.OutputDir)
	} else {
		fmt.Println("🏃 Dry run mode - skipping output")
		printQueryPlan(cfg.LookbackDays())
	}

	// 9. Append to history
	if cfg.HistoryPath != "" && !cfg.DryRun {
		if err := appendHistory(ctx, cfg.HistoryPath, report); err != nil {
			return err
		}
		fmt.Printf("✓ Run %s recorded in %s\n", report.Metadata.RunID[:8], cfg.HistoryPath)
	}

	// 10. Success
	duration := time.Since(startTime)
	fmt.Printf("\n✅ Analysis complete in %s!\n", duration.Round(time.Millisecond))
	if !cfg.DryRun {
		fmt.Printf("\n📊 View report:\n")
		fmt.Printf("   logspectre serve %s\n", cfg.OutputDir)
	}
	if isFirstRun {
		fmt.Printf("\n💡 Tip: recurring flags can live in %s (see logspectre analyze --help)\n", config.DefaultConfigFileYAML)
	}

	if failOnSavings {
		if remaining := baseline.CountFindings(report); remaining > 0 {
			return &FindingsError{Count: remaining}
		}
	}

	return nil
}

// priceSheet builds the run's price sheet from the configured Analytics
// rate. Basic and Auxiliary stay fractions of it; the commitment rate
// keeps its published ratio so a negotiated discount scales everything.
func priceSheet(cfg *config.Config) pricing.PriceSheet {
	prices := pricing.Default()
	if cfg.AnalyticsPricePerGB > 0 && cfg.AnalyticsPricePerGB != prices.AnalyticsPerGB {
		ratio := prices.CommitmentPerGB / prices.AnalyticsPerGB
		prices.AnalyticsPerGB = cfg.AnalyticsPricePerGB
		prices.CommitmentPerGB = cfg.AnalyticsPricePerGB * ratio
	}
	return prices
}

// applyBaseline suppresses known findings, or records the current ones
// when --update-baseline is set.
func applyBaseline(cfg *config.Config, report *models.Report) error {
	path := cfg.BaselinePath
	if path == "" {
		path = baseline.DefaultPath
	}

	known, err := baseline.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	if cfg.UpdateBaseline {
		if cfg.DryRun {
			fmt.Println("🏃 Dry run mode - skipping baseline update")
			return nil
		}
		baseline.AddAll(known, baseline.CollectFingerprints(report))
		if err := baseline.Save(path, known); err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		fmt.Printf("✓ Baseline updated: %s (%d findings)\n", path, len(known))
		return nil
	}

	if suppressed, remaining := baseline.SuppressKnown(report, known); suppressed > 0 {
		// The closing card was composed before suppression; its count and
		// total still include the findings just removed.
		report.Cards = composer.RefreshClosingCard(report.Summary, report.Cards, suppressed)
		fmt.Printf("✓ Baseline suppressed %d known findings, %d remain\n", suppressed, remaining)
	}
	return nil
}

// appendHistory records the finished run in the history database.
func appendHistory(ctx context.Context, path string, report *models.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if err := store.Save(ctx, *report); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// printQueryPlan shows the KQL a live export would run, so operators can
// check what their bundle is expected to contain.
func printQueryPlan(lookbackDays int) {
	fmt.Println("\nQueries a usage export runs per workspace:")
	for _, name := range collector.QueryNames() {
		text, ok := collector.QueryText(name, lookbackDays)
		if !ok {
			continue
		}
		fmt.Printf("\n-- %s\n%s\n", name, text)
	}
}

// analysisSummary condenses a report for progress output and exit-code
// decisions.
type analysisSummary struct {
	workspaceCount int
	candidateCount int
	moveCount      int
	heldCount      int
	cardCount      int
	findingCount   int
}

// buildAnalysisSummary tallies the classifier verdicts in a report.
func buildAnalysisSummary(report *models.Report) analysisSummary {
	as := analysisSummary{
		workspaceCount: report.Summary.WorkspaceCount,
		candidateCount: len(report.Summary.Candidates),
		cardCount:      len(report.Cards),
		findingCount:   baseline.CountFindings(report),
	}
	for _, table := range report.Tables {
		if table.Decision.Tier == models.TierAnalytics {
			as.heldCount++
		} else {
			as.moveCount++
		}
	}
	return as
}

// buildReport constructs the final report
func buildReport(
	cfg *config.Config,
	summary models.AnalysisSummary,
	tables []models.ClassifiedTable,
	cards []models.RecommendationCard,
	input models.AnalysisInput,
	startTime time.Time,
) *models.Report {
	generatedAt := time.Now()

	return &models.Report{
		Tool:      "logspectre",
		Version:   version,
		Timestamp: generatedAt.UTC().Format(time.RFC3339),
		Metadata: models.Metadata{
			RunID:             uuid.NewString(),
			GeneratedAt:       generatedAt,
			LookbackDays:      summary.LookbackDays,
			WorkspacesQueried: len(input.Workspaces),
			AlertRulesScanned: len(input.AlertRules),
			DashboardsScanned: len(input.DashboardTiles),
			AnalysisDuration:  time.Since(startTime).Round(time.Millisecond).String(),
			Version:           version,
		},
		Summary: summary,
		Tables:  tables,
		Cards:   cards,
	}
}
