package composer

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
)

// Documentation links attached to generated cards.
const (
	docsTablePlans      = "https://learn.microsoft.com/azure/azure-monitor/logs/logs-table-plans"
	docsCommitment      = "https://learn.microsoft.com/azure/azure-monitor/logs/cost-logs#commitment-tiers"
	docsRetention       = "https://learn.microsoft.com/azure/azure-monitor/logs/data-retention-configure"
	docsTransformations = "https://learn.microsoft.com/azure/azure-monitor/essentials/data-collection-transformations"
	docsQueryAudit      = "https://learn.microsoft.com/azure/azure-monitor/logs/query-audit"
)

func noBillableDataCard(summary models.AnalysisSummary) models.RecommendationCard {
	return models.RecommendationCard{
		Kind:  models.CardInfo,
		Title: "No billable data found",
		Body: fmt.Sprintf(
			"None of the %d workspace(s) ingested billable data over the last %d days. "+
				"Check that diagnostic settings and agents still forward logs, then rerun the analysis.",
			summary.WorkspaceCount, lookbackDays(summary)),
	}
}

func (c *Composer) minimalCostCard(summary models.AnalysisSummary) models.RecommendationCard {
	monthly := c.prices.MonthlyCost(summary.TotalIngestedGB, models.TierAnalytics)
	return models.RecommendationCard{
		Kind:  models.CardInfo,
		Title: "Minimal ingestion, no action needed",
		Body: fmt.Sprintf(
			"%d workspace(s) ingested %s over the last %d days, roughly %s/month at the Analytics rate. "+
				"Tier changes below this volume carry more operational risk than they save.",
			summary.WorkspaceCount, formatGB(summary.TotalIngestedGB), lookbackDays(summary), formatMoney(monthly)),
	}
}

func alertBreakageCard(held []models.ClassifiedTable) models.RecommendationCard {
	return models.RecommendationCard{
		Kind:   models.CardWarning,
		Title:  "Alert rules depend on these tables",
		Impact: fmt.Sprintf("%d table(s) held on Analytics", len(held)),
		Body: "Basic and Auxiliary tables cannot back alert rules. Moving any table below out of the " +
			"Analytics tier silently breaks the alerts that query it.\n\n" + tableListMarkdown(held, false),
		Action:  "Keep these tables on the Analytics plan.",
		DocsURL: docsTablePlans,
	}
}

func dashboardBreakageCard(held []models.ClassifiedTable) models.RecommendationCard {
	return models.RecommendationCard{
		Kind:   models.CardWarning,
		Title:  "Dashboards query these tables",
		Impact: fmt.Sprintf("%d table(s) held on Analytics", len(held)),
		Body: "Dashboard tiles query these tables, and non-Analytics tiers do not serve dashboard " +
			"queries.\n\n" + tableListMarkdown(held, false),
		Action:  "Keep these tables on the Analytics plan.",
		DocsURL: docsTablePlans,
	}
}

func (c *Composer) tierMoveCard(table models.ClassifiedTable) models.RecommendationCard {
	name := table.Candidate.Name
	current := c.prices.MonthlyCost(table.Candidate.TotalGB, models.TierAnalytics)
	proposed := c.prices.MonthlyCost(table.Candidate.TotalGB, table.Decision.Tier)

	body := fmt.Sprintf(
		"`%s` is %s. Monthly cost drops from %s to %s on the %s plan.\n\n"+
			"| Metric | Value |\n|---|---|\n| Ingested | %s |\n| Avg queries/day | %.1f |\n| Current monthly cost | %s |\n| %s monthly cost | %s |",
		name, table.Decision.Reason, formatMoney(current), formatMoney(proposed), table.Decision.Tier,
		formatGB(table.Candidate.TotalGB), table.Candidate.AvgQueriesPerDay,
		formatMoney(current), table.Decision.Tier, formatMoney(proposed))

	return models.RecommendationCard{
		Kind:    models.CardSavings,
		Title:   fmt.Sprintf("Move %s to the %s tier", name, table.Decision.Tier),
		Impact:  fmt.Sprintf("%s/month estimated savings", formatMoney(table.Decision.EstimatedMonthlySavings)),
		Body:    body,
		Action:  fmt.Sprintf("az monitor log-analytics workspace table update --name %s --plan %s", name, table.Decision.Tier),
		DocsURL: docsTablePlans,
	}
}

func (c *Composer) commitmentCard(summary models.AnalysisSummary, dollars float64) models.RecommendationCard {
	daily := dailyIngestionGB(summary)
	pct := c.prices.CommitmentSavingsPct(daily)
	return models.RecommendationCard{
		Kind:   models.CardSavings,
		Title:  "Switch to a commitment tier",
		Impact: fmt.Sprintf("%s/month estimated savings", formatMoney(dollars)),
		Body: fmt.Sprintf(
			"Daily ingestion averages %s across the estate, above the 100 GB/day commitment threshold. "+
				"Commitment pricing cuts the effective rate by about %.0f%% versus pay-as-you-go.",
			formatGB(daily), pct),
		Action:  "Select a 100 GB/day commitment tier on the workspace pricing blade.",
		DocsURL: docsCommitment,
	}
}

func queryAuditingCard(summary models.AnalysisSummary) models.RecommendationCard {
	return models.RecommendationCard{
		Kind:   models.CardWarning,
		Title:  "Enable query auditing before changing tiers",
		Impact: "all tables held on Analytics",
		Body: fmt.Sprintf(
			"No query frequency data was found for the last %d days, so every table stays on the "+
				"Analytics tier as a precaution. Without audit data a tier change could break alerting or "+
				"dashboards that this analysis cannot see.",
			lookbackDays(summary)),
		Action:  "Enable the LAQueryLogs diagnostic setting on each workspace, wait a full lookback window, then rerun.",
		DocsURL: docsQueryAudit,
	}
}

func frequentlyQueriedCard(tables []models.ClassifiedTable) models.RecommendationCard {
	return models.RecommendationCard{
		Kind:   models.CardWarning,
		Title:  "Frequently queried tables stay on Analytics",
		Impact: fmt.Sprintf("%d table(s) not recommended", len(tables)),
		Body: "These tables are queried often enough that a cheaper tier would degrade day-to-day " +
			"work.\n\n" + tableListMarkdown(tables, true),
		DocsURL: docsTablePlans,
	}
}

func approachingCommitmentCard(daily float64) models.RecommendationCard {
	return models.RecommendationCard{
		Kind:  models.CardWarning,
		Title: "Approaching commitment tier eligibility",
		Body: fmt.Sprintf(
			"Daily ingestion averages %s, more than half of the 100 GB/day commitment threshold. "+
				"Commitment pricing is not worth it yet, but recheck after the next growth step.",
			formatGB(daily)),
		DocsURL: docsCommitment,
	}
}

func retentionCard() models.RecommendationCard {
	return models.RecommendationCard{
		Kind:  models.CardInfo,
		Title: "Review interactive retention",
		Body: "Analytics tables include 31 days of interactive retention. Data kept past that accrues " +
			"retention charges even when nobody queries it. Shorten retention or move old data to the " +
			"archive tier for tables with no readers.",
		Action:  "Audit per-table retention settings.",
		DocsURL: docsRetention,
	}
}

func ingestionFilterCard() models.RecommendationCard {
	return models.RecommendationCard{
		Kind:  models.CardInfo,
		Title: "Filter ingestion at collection time",
		Body: "Data collection rule transformations drop rows and columns before they are billed. " +
			"Verbose sources such as Syslog noise or chatty diagnostics are the usual wins.",
		Action:  "Add a transformKql filter to high-volume data collection rules.",
		DocsURL: docsTransformations,
	}
}

func successCard(summary models.AnalysisSummary, savingsCount int, totalDollars float64) models.RecommendationCard {
	if savingsCount == 0 {
		return models.RecommendationCard{
			Kind:  models.CardSuccess,
			Title: "No cost optimizations found",
			Body: fmt.Sprintf(
				"Every analyzed table already sits on an appropriate tier. %d workspace(s) ingested %s "+
					"over the last %d days.",
				summary.WorkspaceCount, formatGB(summary.TotalIngestedGB), lookbackDays(summary)),
		}
	}

	return models.RecommendationCard{
		Kind:   models.CardSuccess,
		Title:  "Analysis complete",
		Impact: fmt.Sprintf("%s/month total potential savings", formatMoney(totalDollars)),
		Body: fmt.Sprintf(
			"%d workspace(s) ingested %s over the last %d days. %d change(s) above are worth reviewing.",
			summary.WorkspaceCount, formatGB(summary.TotalIngestedGB), lookbackDays(summary), savingsCount),
	}
}

func tableListMarkdown(tables []models.ClassifiedTable, withFrequency bool) string {
	var b strings.Builder
	if withFrequency {
		b.WriteString("| Table | Ingested | Avg queries/day |\n|---|---|---|\n")
	} else {
		b.WriteString("| Table | Ingested |\n|---|---|\n")
	}
	for _, table := range tables {
		if withFrequency {
			fmt.Fprintf(&b, "| %s | %s | %.1f |\n",
				table.Candidate.Name, formatGB(table.Candidate.TotalGB), table.Candidate.AvgQueriesPerDay)
		} else {
			fmt.Fprintf(&b, "| %s | %s |\n", table.Candidate.Name, formatGB(table.Candidate.TotalGB))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func lookbackDays(summary models.AnalysisSummary) int {
	if summary.LookbackDays <= 0 {
		return defaultLookbackDays
	}
	return summary.LookbackDays
}
