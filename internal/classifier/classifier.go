// Package classifier decides the pricing tier for each table candidate.
package classifier

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/internal/pricing"
)

// Query-frequency thresholds, average queries per day over the lookback
// window.
const (
	FrequentQueriesPerDay = 5.0
	RareQueriesPerDay     = 1.0
)

// Decision reasons surfaced on cards and in report JSON.
const (
	ReasonUsedInAlerts      = "used in alert rule(s)"
	ReasonUsedInDashboards  = "used in dashboard(s)"
	ReasonFrequentlyQueried = "frequently queried"
	ReasonFrequencyUnknown  = "query frequency unknown, kept on Analytics"
	ReasonRareCustomTable   = "rarely-queried custom table"
	ReasonInfrequent        = "infrequently queried, not referenced elsewhere"
)

// References is everything the do-not-downgrade gates consult: table names
// extracted from all alert rules and dashboard tiles, plus whether
// query-frequency data existed for this run at all.
type References struct {
	AlertTables     []string
	DashboardTables []string
	FrequencyKnown  bool
}

// Classifier applies the tier rules with one price sheet. Thresholds are
// exported so operators can tighten them per run.
type Classifier struct {
	Prices         pricing.PriceSheet
	FrequentPerDay float64
	RarePerDay     float64
}

// New returns a classifier with the default thresholds.
func New(prices pricing.PriceSheet) *Classifier {
	return &Classifier{
		Prices:         prices,
		FrequentPerDay: FrequentQueriesPerDay,
		RarePerDay:     RareQueriesPerDay,
	}
}

// Classify returns the tier decision for one candidate. Rules apply in
// strict priority order: reference gates before frequency, frequency
// before any downgrade. A table an alert or dashboard depends on never
// leaves Analytics no matter how rarely it is queried. Negative volume or
// frequency is a caller bug.
func (c *Classifier) Classify(candidate models.TableCandidate, refs References) models.TierDecision {
	if candidate.TotalGB < 0 {
		panic(fmt.Sprintf("classifier: negative ingestion volume %v GB for table %q", candidate.TotalGB, candidate.Name))
	}
	if candidate.AvgQueriesPerDay < 0 {
		panic(fmt.Sprintf("classifier: negative query frequency %v for table %q", candidate.AvgQueriesPerDay, candidate.Name))
	}

	gates := models.UsageGates{
		UsedInAlerts:      referencedIn(candidate.Name, refs.AlertTables),
		UsedInDashboards:  referencedIn(candidate.Name, refs.DashboardTables),
		FrequentlyQueried: !refs.FrequencyKnown || candidate.AvgQueriesPerDay >= c.FrequentPerDay,
	}

	// 1. Alert rules break silently when their table leaves Analytics.
	if gates.UsedInAlerts {
		return models.TierDecision{Tier: models.TierAnalytics, Reason: ReasonUsedInAlerts, Gates: gates}
	}

	// 2. Dashboards carry the same risk.
	if gates.UsedInDashboards {
		return models.TierDecision{Tier: models.TierAnalytics, Reason: ReasonUsedInDashboards, Gates: gates}
	}

	// 3. Frequent interactive use: per-query charges on the cheaper plans
	// would eat the ingestion savings. Unknown frequency counts as
	// frequent, so a workspace without query auditing never produces a
	// downgrade.
	if !refs.FrequencyKnown {
		return models.TierDecision{Tier: models.TierAnalytics, Reason: ReasonFrequencyUnknown, Gates: gates}
	}
	if candidate.AvgQueriesPerDay >= c.FrequentPerDay {
		return models.TierDecision{Tier: models.TierAnalytics, Reason: ReasonFrequentlyQueried, Gates: gates}
	}

	// 4. Rarely-queried custom tables fit the Auxiliary plan.
	if candidate.IsCustomTable && candidate.AvgQueriesPerDay < c.RarePerDay {
		return models.TierDecision{
			Tier:                    models.TierAuxiliary,
			Reason:                  ReasonRareCustomTable,
			EstimatedMonthlySavings: c.Prices.MonthlySavings(candidate.TotalGB, models.TierAuxiliary),
			Gates:                   gates,
		}
	}

	// 5. Everything else can move to Basic.
	return models.TierDecision{
		Tier:                    models.TierBasic,
		Reason:                  ReasonInfrequent,
		EstimatedMonthlySavings: c.Prices.MonthlySavings(candidate.TotalGB, models.TierBasic),
		Gates:                   gates,
	}
}

// ClassifyAll runs Classify over a ranked candidate list, preserving
// order.
func (c *Classifier) ClassifyAll(candidates []models.TableCandidate, refs References) []models.ClassifiedTable {
	classified := make([]models.ClassifiedTable, 0, len(candidates))
	for _, candidate := range candidates {
		classified = append(classified, models.ClassifiedTable{
			Candidate: candidate,
			Decision:  c.Classify(candidate, refs),
		})
	}
	return classified
}

// referencedIn implements the legacy loose match: case-insensitive
// substring containment in either direction, so "SecurityEvent" matches a
// rule that extracted "SecurityEvents" and vice versa. A false match only
// keeps a table on Analytics.
func referencedIn(table string, referenced []string) bool {
	t := strings.ToLower(table)
	for _, ref := range referenced {
		r := strings.ToLower(ref)
		if strings.Contains(r, t) || strings.Contains(t, r) {
			return true
		}
	}
	return false
}
