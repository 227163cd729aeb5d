// Package valuation holds the pure recalculation engine that maps a
// hypothesis set onto a consistent market-sizing and valuation model.
// The formulas are fixed: displays and round-trip consumers depend on
// the exact figures, not just their order of magnitude.
package valuation

import (
	"math"

	"github.com/gitworth/gitworth/internal/domain/analysis"
)

const (
	// totalAddressableMarket is held constant: TAM is market-wide and
	// independent of per-project hypotheses in this model.
	totalAddressableMarket = 50_000_000_000

	// servableScale converts the market-share hypothesis (in percent)
	// into the serviceable addressable share of TAM.
	servableScale = 10

	// obtainableShare is the fraction of SAM treated as obtainable.
	obtainableShare = 0.01

	// revenueMultiple anchors the valuation range; the range spans
	// revenueMultiple +/- multipleSpread applied to annual revenue.
	revenueMultiple = 8.5
	multipleSpread  = 2

	forecastHorizonYears = 10
)

// Fallback values substituted when a submitted hypothesis set is missing
// a key. This is engine-level defaulting, not validation: bounds checks
// belong to the caller.
const (
	defaultAvgRevenue  = 20
	defaultMarketShare = 1
	defaultGrowthRate  = 20
)

// Recalculate derives a new market-sizing and valuation model from the
// submitted hypotheses, carrying methodology, confidence and the
// revenue/users multiples over from the prior models. The growth
// multiple is overwritten from the growth-rate hypothesis. The gross
// margin hypothesis is carried in the assumptions but does not enter
// the formulas.
func Recalculate(hypotheses []analysis.Hypothesis, market analysis.MarketSizing, val analysis.Valuation) (analysis.MarketSizing, analysis.Valuation) {
	avgRevenue := valueOr(hypotheses, "avgRevenue", defaultAvgRevenue)
	marketShare := valueOr(hypotheses, "marketShare", defaultMarketShare)
	growthRate := valueOr(hypotheses, "growthRate", defaultGrowthRate)

	tam := float64(totalAddressableMarket)
	sam := tam * (marketShare / 100) * servableScale
	som := sam * obtainableShare

	annualRevenue := som * (avgRevenue / 100)
	valuationMin := annualRevenue * (revenueMultiple - multipleSpread)
	valuationMax := annualRevenue * (revenueMultiple + multipleSpread)

	market.TAM = tam
	market.SAM = sam
	market.SOM = som
	market.Assumptions = hypotheses
	market.Trends = analysis.MarketTrends{
		CAGR:            growthRate,
		Forecast10Years: tam * math.Pow(1+growthRate/100, forecastHorizonYears),
	}

	val.Range = [2]float64{valuationMin, valuationMax}
	val.Multiples.Growth = growthRate / 10

	return market, val
}

func valueOr(hypotheses []analysis.Hypothesis, key string, fallback float64) float64 {
	for _, h := range hypotheses {
		if h.Key == key {
			return h.Value
		}
	}
	return fallback
}
