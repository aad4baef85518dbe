// Package pricing holds the published Log Analytics per-GB rates and the
// arithmetic that turns tier decisions into dollar estimates.
package pricing

import (
	"fmt"

	"github.com/ppiankov/logspectre/internal/models"
)

// Published pay-as-you-go rates in US dollars. Basic and Auxiliary are
// fractions of the Analytics rate; the commitment figure is the 100 GB/day
// entry point expressed as an effective per-GB rate. Adjusting a price
// means changing a constant here, nothing else.
const (
	DefaultAnalyticsPerGB       = 2.76
	DefaultBasicFraction        = 0.50
	DefaultAuxiliaryFraction    = 0.15
	DefaultCommitmentPerGB      = 2.30
	CommitmentThresholdGBPerDay = 100.0
)

// A workspace estate at or above this share of the commitment threshold
// gets an approaching-commitment advisory instead of a savings estimate.
const commitmentApproachFraction = 0.5

// PriceSheet carries the rates for one analysis run so operators can
// override list prices (negotiated discounts, other billing currencies).
type PriceSheet struct {
	AnalyticsPerGB              float64
	BasicFraction               float64
	AuxiliaryFraction           float64
	CommitmentPerGB             float64
	CommitmentThresholdGBPerDay float64
}

// Default returns the published list prices.
func Default() PriceSheet {
	return PriceSheet{
		AnalyticsPerGB:              DefaultAnalyticsPerGB,
		BasicFraction:               DefaultBasicFraction,
		AuxiliaryFraction:           DefaultAuxiliaryFraction,
		CommitmentPerGB:             DefaultCommitmentPerGB,
		CommitmentThresholdGBPerDay: CommitmentThresholdGBPerDay,
	}
}

// MonthlyCost returns the ingestion cost of gb at the given tier.
// Negative volumes and unknown tiers are caller bugs.
func (p PriceSheet) MonthlyCost(gb float64, tier models.Tier) float64 {
	if gb < 0 {
		panic(fmt.Sprintf("pricing: negative ingestion volume %v GB", gb))
	}
	switch tier {
	case models.TierAnalytics:
		return gb * p.AnalyticsPerGB
	case models.TierBasic:
		return gb * p.AnalyticsPerGB * p.BasicFraction
	case models.TierAuxiliary:
		return gb * p.AnalyticsPerGB * p.AuxiliaryFraction
	default:
		panic(fmt.Sprintf("pricing: unknown tier %q", tier))
	}
}

// MonthlySavings returns what moving gb from Analytics to the given tier
// saves per month. Always zero or positive.
func (p PriceSheet) MonthlySavings(gb float64, tier models.Tier) float64 {
	return p.MonthlyCost(gb, models.TierAnalytics) - p.MonthlyCost(gb, tier)
}

// CommitmentSavingsPct returns the percentage saved by moving the estate
// to the commitment tier. Positive only when daily ingestion meets the
// commitment entry point; estates below it have nothing to commit to.
func (p PriceSheet) CommitmentSavingsPct(dailyGB float64) float64 {
	if dailyGB < 0 {
		panic(fmt.Sprintf("pricing: negative daily ingestion %v GB", dailyGB))
	}
	if dailyGB < p.CommitmentThresholdGBPerDay {
		return 0
	}
	return (1 - p.CommitmentPerGB/p.AnalyticsPerGB) * 100
}

// CommitmentMonthlySavings returns the dollar estimate behind
// CommitmentSavingsPct over a 30-day month.
func (p PriceSheet) CommitmentMonthlySavings(dailyGB float64) float64 {
	if p.CommitmentSavingsPct(dailyGB) == 0 {
		return 0
	}
	return dailyGB * 30 * (p.AnalyticsPerGB - p.CommitmentPerGB)
}

// ApproachingCommitment reports whether daily ingestion is below the
// commitment entry point but close enough to be worth watching.
func (p PriceSheet) ApproachingCommitment(dailyGB float64) bool {
	if dailyGB < 0 {
		panic(fmt.Sprintf("pricing: negative daily ingestion %v GB", dailyGB))
	}
	return dailyGB < p.CommitmentThresholdGBPerDay &&
		dailyGB >= p.CommitmentThresholdGBPerDay*commitmentApproachFraction
}
