package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

const (
	textANSIReset = "\x1b[0m"
	textANSIBold  = "\x1b[1m"
)

// WriteText writes a human-readable text report to report.txt and stdout.
func WriteText(report *models.Report, cfg *config.Config) error {
	return writeText(report, cfg, os.Stdout)
}

func writeText(report *models.Report, cfg *config.Config, out io.Writer) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if out == nil {
		return fmt.Errorf("writer is nil")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rendered := renderTextReport(report, supportsANSI(out))
	outputPath := filepath.Join(cfg.OutputDir, "report.txt")

	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report.txt: %w", err)
	}

	if _, err := io.WriteString(out, rendered); err != nil {
		return fmt.Errorf("failed to write text report to output: %w", err)
	}

	return nil
}

func renderTextReport(report *models.Report, useANSI bool) string {
	var b strings.Builder

	generatedAt := strings.TrimSpace(report.Timestamp)
	if generatedAt == "" {
		if !report.Metadata.GeneratedAt.IsZero() {
			generatedAt = report.Metadata.GeneratedAt.UTC().Format(time.RFC3339)
		} else {
			generatedAt = "unknown"
		}
	}

	summary := report.Summary

	writeTextSectionHeader(&b, "LogSpectre Cost Report", useANSI)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt)
	fmt.Fprintf(&b, "Lookback days: %d\n", summary.LookbackDays)
	fmt.Fprintf(&b, "Workspaces analyzed: %d (%d with data)\n", summary.WorkspaceCount, summary.WorkspacesWithData)
	fmt.Fprintf(&b, "Total ingested: %.2f GB\n", summary.TotalIngestedGB)
	b.WriteString("\n")

	if len(summary.Workspaces) > 0 {
		writeTextSectionHeader(&b, "Workspaces", useANSI)
		b.WriteString("WORKSPACE                                SKU             RETENTION  INGESTED GB\n")
		b.WriteString("-------------------------------------------------------------------------------\n")
		for _, ws := range summary.Workspaces {
			sku := ws.SkuTier
			if sku == "" {
				sku = "unknown"
			}
			retention := "n/a"
			if ws.RetentionDays > 0 {
				retention = fmt.Sprintf("%dd", ws.RetentionDays)
			}
			fmt.Fprintf(
				&b,
				"%-40s %-15s %9s %12.2f\n",
				truncateTextValue(ws.WorkspaceName, 40),
				sku,
				retention,
				ws.IngestedGB,
			)
		}
		b.WriteString("\n")
	}

	analytics, basic, auxiliary := tierDistribution(report.Tables)
	writeTextSectionHeader(&b, "Summary", useANSI)
	fmt.Fprintf(&b, "Candidate tables: %d\n", len(report.Tables))
	b.WriteString("Plan distribution:\n")
	fmt.Fprintf(&b, "  Analytics: %d\n", analytics)
	fmt.Fprintf(&b, "  Basic:     %d\n", basic)
	fmt.Fprintf(&b, "  Auxiliary: %d\n", auxiliary)
	fmt.Fprintf(&b, "Projected monthly savings: $%.2f\n", totalTableSavings(report.Tables))
	if summary.FrequencyDataAvailable {
		b.WriteString("Query frequency data: available\n")
	} else {
		b.WriteString("Query frequency data: missing (enable LAQueryLogs)\n")
	}
	b.WriteString("\n")

	moves := tierMoves(report.Tables)
	writeTextSectionHeader(&b, "Recommendations By Table", useANSI)
	if len(moves) == 0 {
		b.WriteString("No plan changes recommended.\n")
	} else {
		b.WriteString("TABLE                                    INGESTED GB  QUERIES/DAY  PLAN       SAVINGS/MO\n")
		b.WriteString("----------------------------------------------------------------------------------------\n")
		for _, table := range moves {
			queriesPerDay := "n/a"
			if summary.FrequencyDataAvailable {
				queriesPerDay = fmt.Sprintf("%.1f", table.Candidate.AvgQueriesPerDay)
			}
			fmt.Fprintf(
				&b,
				"%-40s %11.2f %12s %-10s %10s\n",
				truncateTextValue(table.Candidate.Name, 40),
				table.Candidate.TotalGB,
				queriesPerDay,
				table.Decision.Tier,
				fmt.Sprintf("$%.2f", table.Decision.EstimatedMonthlySavings),
			)
		}
	}
	b.WriteString("\n")

	gated := gatedTables(report.Tables)
	if len(gated) > 0 {
		writeTextSectionHeader(&b, "Held On Analytics", useANSI)
		for _, table := range gated {
			fmt.Fprintf(&b, "- %s (%s)\n", table.Candidate.Name, table.Decision.Reason)
		}
		b.WriteString("\n")
	}

	if len(report.Cards) > 0 {
		writeTextSectionHeader(&b, "Cards", useANSI)
		for _, card := range report.Cards {
			if card.Impact != "" {
				fmt.Fprintf(&b, "- [%s] %s (%s)\n", card.Kind, card.Title, card.Impact)
				continue
			}
			fmt.Fprintf(&b, "- [%s] %s\n", card.Kind, card.Title)
		}
	}

	return b.String()
}

func writeTextSectionHeader(b *strings.Builder, title string, useANSI bool) {
	header := title
	if useANSI {
		header = textANSIBold + title + textANSIReset
	}
	fmt.Fprintf(b, "%s\n", header)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
}

func supportsANSI(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func tierDistribution(tables []models.ClassifiedTable) (int, int, int) {
	analytics := 0
	basic := 0
	auxiliary := 0

	for _, table := range tables {
		switch table.Decision.Tier {
		case models.TierBasic:
			basic++
		case models.TierAuxiliary:
			auxiliary++
		default:
			analytics++
		}
	}

	return analytics, basic, auxiliary
}

func tierMoves(tables []models.ClassifiedTable) []models.ClassifiedTable {
	moves := make([]models.ClassifiedTable, 0, len(tables))
	for _, table := range tables {
		if table.Decision.Tier != models.TierAnalytics {
			moves = append(moves, table)
		}
	}
	return moves
}

func gatedTables(tables []models.ClassifiedTable) []models.ClassifiedTable {
	gated := make([]models.ClassifiedTable, 0)
	for _, table := range tables {
		if table.Decision.Gates.UsedInAlerts || table.Decision.Gates.UsedInDashboards {
			gated = append(gated, table)
		}
	}
	return gated
}

func totalTableSavings(tables []models.ClassifiedTable) float64 {
	var total float64
	for _, table := range tables {
		if table.Decision.Tier != models.TierAnalytics {
			total += table.Decision.EstimatedMonthlySavings
		}
	}
	return total
}

func truncateTextValue(value string, width int) string {
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}
