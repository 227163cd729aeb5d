package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitworth/gitworth/internal/domain/analysis"
)

func hypothesisSet(avgRevenue, marketShare, margin, growthRate float64) []analysis.Hypothesis {
	hyps := analysis.DefaultHypotheses()
	hyps[0].Value = avgRevenue
	hyps[1].Value = marketShare
	hyps[2].Value = margin
	hyps[3].Value = growthRate
	return hyps
}

func TestRecalculateReferenceFigures(t *testing.T) {
	market, val := Recalculate(hypothesisSet(20, 1, 60, 20), analysis.MarketSizing{}, analysis.Valuation{})

	assert.InDelta(t, 50_000_000_000, market.TAM, 1)
	assert.InDelta(t, 5_000_000_000, market.SAM, 1)
	assert.InDelta(t, 50_000_000, market.SOM, 1)
	assert.InDelta(t, 65_000_000, val.Range[0], 1)
	assert.InDelta(t, 105_000_000, val.Range[1], 1)
	assert.Equal(t, float64(20), market.Trends.CAGR)
	assert.InDelta(t, 50_000_000_000*math.Pow(1.2, 10), market.Trends.Forecast10Years, 1)
	assert.InDelta(t, 309_587_000_000, market.Trends.Forecast10Years, 1_000_000_000)
	assert.Equal(t, float64(2), val.Multiples.Growth)
}

func TestRecalculateMarketInvariant(t *testing.T) {
	// Sweep the corners of every hypothesis range; the market ordering
	// and range ordering must hold everywhere.
	defaults := analysis.DefaultHypotheses()
	corners := [][]float64{}
	for _, avg := range []float64{defaults[0].Min, defaults[0].Max} {
		for _, share := range []float64{defaults[1].Min, defaults[1].Max} {
			for _, growth := range []float64{defaults[3].Min, defaults[3].Max} {
				corners = append(corners, []float64{avg, share, growth})
			}
		}
	}

	for _, c := range corners {
		market, val := Recalculate(hypothesisSet(c[0], c[1], 60, c[2]), analysis.MarketSizing{}, analysis.Valuation{})
		assert.GreaterOrEqual(t, market.SOM, 0.0)
		assert.LessOrEqual(t, market.SOM, market.SAM)
		assert.LessOrEqual(t, market.SAM, market.TAM)
		assert.LessOrEqual(t, val.Range[0], val.Range[1])
	}
}

func TestRecalculateDefaultsOnMissingKeys(t *testing.T) {
	market, val := Recalculate([]analysis.Hypothesis{}, analysis.MarketSizing{}, analysis.Valuation{})

	withDefaults, valDefaults := Recalculate(hypothesisSet(20, 1, 60, 20), analysis.MarketSizing{}, analysis.Valuation{})
	assert.Equal(t, withDefaults.TAM, market.TAM)
	assert.Equal(t, withDefaults.SAM, market.SAM)
	assert.Equal(t, withDefaults.SOM, market.SOM)
	assert.Equal(t, withDefaults.Trends, market.Trends)
	assert.Equal(t, valDefaults.Range, val.Range)
}

func TestRecalculatePreservesPriorModelFields(t *testing.T) {
	priorMarket := analysis.MarketSizing{Methodology: "bottom-up"}
	priorVal := analysis.Valuation{
		Methodology: "revenue multiples",
		Confidence:  0.75,
		Multiples:   analysis.Multiples{Revenue: 8.5, Users: 25, Growth: 15},
	}

	market, val := Recalculate(hypothesisSet(40, 2, 50, 30), priorMarket, priorVal)

	assert.Equal(t, "bottom-up", market.Methodology)
	assert.Equal(t, "revenue multiples", val.Methodology)
	assert.Equal(t, 0.75, val.Confidence)
	assert.Equal(t, 8.5, val.Multiples.Revenue)
	assert.Equal(t, float64(25), val.Multiples.Users)
	assert.Equal(t, float64(3), val.Multiples.Growth)
}

func TestRecalculateIdempotent(t *testing.T) {
	hyps := hypothesisSet(35, 2.5, 60, 12)

	m1, v1 := Recalculate(hyps, analysis.MarketSizing{}, analysis.Valuation{})
	m2, v2 := Recalculate(hyps, analysis.MarketSizing{}, analysis.Valuation{})

	require.Equal(t, m1, m2)
	require.Equal(t, v1, v2)
}
