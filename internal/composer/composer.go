// Package composer turns a usage summary and tier decisions into the
// ordered recommendation cards a report presents.
package composer

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/logspectre/internal/classifier"
	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/internal/pricing"
)

// MinimalIngestionGB is the volume below which the report collapses to a
// single no-action card.
const MinimalIngestionGB = 1.0

const defaultLookbackDays = 30

// Composer assembles recommendation cards in presentation order.
type Composer struct {
	prices pricing.PriceSheet
}

// New creates a Composer priced with the given sheet.
func New(prices pricing.PriceSheet) *Composer {
	return &Composer{prices: prices}
}

// Compose builds the ordered card sequence for a completed analysis.
// Breakage warnings lead, savings follow by descending dollar impact,
// advisories and static guidance come next, success framing closes.
func (c *Composer) Compose(summary models.AnalysisSummary, tables []models.ClassifiedTable) []models.RecommendationCard {
	// 1. Terminal states produce a single card and nothing else
	if summary.TotalIngestedGB <= 0 {
		return []models.RecommendationCard{noBillableDataCard(summary)}
	}
	if summary.TotalIngestedGB < MinimalIngestionGB {
		return []models.RecommendationCard{c.minimalCostCard(summary)}
	}

	cards := make([]models.RecommendationCard, 0, len(tables)+6)

	// 2. Tables held on Analytics by live references
	cards = append(cards, breakageWarnings(tables)...)

	// 3. Tier moves and commitment pricing, descending by dollars
	savings, totalDollars := c.savingsCards(summary, tables)
	cards = append(cards, savings...)

	// 4. Advisories that do not carry a tier change
	cards = append(cards, c.advisoryWarnings(summary, tables)...)

	// 5. Static guidance ships with every report
	cards = append(cards, retentionCard(), ingestionFilterCard())

	// 6. Success framing closes the sequence
	cards = append(cards, successCard(summary, len(savings), totalDollars))

	slog.Debug("composed recommendation cards",
		"cards", len(cards),
		"savings_cards", len(savings))

	return cards
}

func breakageWarnings(tables []models.ClassifiedTable) []models.RecommendationCard {
	var alertHeld, dashboardHeld []models.ClassifiedTable
	for _, table := range tables {
		switch table.Decision.Reason {
		case classifier.ReasonUsedInAlerts:
			alertHeld = append(alertHeld, table)
		case classifier.ReasonUsedInDashboards:
			dashboardHeld = append(dashboardHeld, table)
		}
	}

	var cards []models.RecommendationCard
	if len(alertHeld) > 0 {
		cards = append(cards, alertBreakageCard(alertHeld))
	}
	if len(dashboardHeld) > 0 {
		cards = append(cards, dashboardBreakageCard(dashboardHeld))
	}
	return cards
}

func (c *Composer) savingsCards(summary models.AnalysisSummary, tables []models.ClassifiedTable) ([]models.RecommendationCard, float64) {
	type valued struct {
		card    models.RecommendationCard
		dollars float64
	}

	var ranked []valued
	for _, table := range tables {
		if table.Decision.EstimatedMonthlySavings <= 0 {
			continue
		}
		ranked = append(ranked, valued{
			card:    c.tierMoveCard(table),
			dollars: table.Decision.EstimatedMonthlySavings,
		})
	}

	if dollars := c.prices.CommitmentMonthlySavings(dailyIngestionGB(summary)); dollars > 0 {
		ranked = append(ranked, valued{
			card:    c.commitmentCard(summary, dollars),
			dollars: dollars,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].dollars > ranked[j].dollars
	})

	cards := make([]models.RecommendationCard, 0, len(ranked))
	var total float64
	for _, entry := range ranked {
		cards = append(cards, entry.card)
		total += entry.dollars
	}
	return cards, total
}

func (c *Composer) advisoryWarnings(summary models.AnalysisSummary, tables []models.ClassifiedTable) []models.RecommendationCard {
	var cards []models.RecommendationCard

	if !summary.FrequencyDataAvailable {
		cards = append(cards, queryAuditingCard(summary))
	}

	var frequent []models.ClassifiedTable
	for _, table := range tables {
		if table.Decision.Reason == classifier.ReasonFrequentlyQueried {
			frequent = append(frequent, table)
		}
	}
	if len(frequent) > 0 {
		cards = append(cards, frequentlyQueriedCard(frequent))
	}

	if daily := dailyIngestionGB(summary); c.prices.ApproachingCommitment(daily) {
		cards = append(cards, approachingCommitmentCard(daily))
	}

	return cards
}

// RefreshClosingCard rebuilds the trailing success card after savings
// cards have been filtered out of a composed sequence, so its count and
// total match the cards that remain. removed is noted in the body when
// non-zero.
func RefreshClosingCard(summary models.AnalysisSummary, cards []models.RecommendationCard, removed int) []models.RecommendationCard {
	if n := len(cards); n > 0 && cards[n-1].Kind == models.CardSuccess {
		cards = cards[:n-1]
	}

	count := 0
	var total float64
	for _, card := range cards {
		if card.Kind != models.CardSavings {
			continue
		}
		count++
		total += impactDollars(card.Impact)
	}

	closing := successCard(summary, count, total)
	if removed > 0 {
		closing.Body += fmt.Sprintf(" %d previously acknowledged finding(s) are hidden by the baseline.", removed)
	}
	return append(cards, closing)
}

// impactDollars reads the dollar figure back out of an impact line that
// formatMoney wrote.
func impactDollars(impact string) float64 {
	if !strings.HasPrefix(impact, "$") {
		return 0
	}
	amount := impact[1:]
	if slash := strings.Index(amount, "/"); slash >= 0 {
		amount = amount[:slash]
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return v
}

func dailyIngestionGB(summary models.AnalysisSummary) float64 {
	days := summary.LookbackDays
	if days <= 0 {
		days = defaultLookbackDays
	}
	return summary.TotalIngestedGB / float64(days)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatGB(v float64) string {
	return fmt.Sprintf("%.2f GB", v)
}
