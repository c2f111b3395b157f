package core

import (
	"github.com/flowsignal/flowcast/schema"
)

// Predictability back-test constants.
const (
	// BacktestWindowDays is the horizon of each back-tested forecast.
	BacktestWindowDays = 7

	// PrimaryPercentile is the confidence level the score is graded
	// against.
	PrimaryPercentile = 85
)

// PredictabilityScore back-tests the forecaster against history to measure
// calibration. The series is split into consecutive trailing windows of
// BacktestWindowDays; for each window a how-many forecast is run on the
// data preceding it and its PrimaryPercentile claim is compared with the
// window's actual throughput. The claim is a floor ("at least this many
// items in at least 85 percent of runs"), so a window counts as a hit when
// the actual met or exceeded it. The score is the hit fraction across all
// windows; outcomes are reported by ascending run index, oldest window
// first.
func (f *Forecaster) PredictabilityScore(history schema.RunChart, percentiles []int) schema.ForecastPredictabilityScore {
	score := schema.ForecastPredictabilityScore{}
	if history.Days() < 2*BacktestWindowDays {
		return score
	}

	// Walk window starts oldest-first, keeping the first window as
	// training data.
	var outcomes []schema.BacktestOutcome
	hits := 0
	run := 0
	for start := BacktestWindowDays; start+BacktestWindowDays <= history.Days(); start += BacktestWindowDays {
		training := history.Window(0, start)
		window := history.Window(start, start+BacktestWindowDays)

		forecast := f.HowMany(training, BacktestWindowDays)
		if forecast.IsEmpty() {
			continue
		}
		claim := forecast.ItemsAtPercentile(PrimaryPercentile)
		actual := window.Total()

		hit := actual >= claim
		if hit {
			hits++
		}
		outcomes = append(outcomes, schema.BacktestOutcome{
			Run:      run,
			Forecast: claim,
			Actual:   actual,
			Hit:      hit,
		})
		run++
	}
	if len(outcomes) == 0 {
		return score
	}

	// Distribution summary of the actual per-window outcomes at the
	// requested percentiles, for diagnostic display.
	actuals := make([]float64, len(outcomes))
	for i, o := range outcomes {
		actuals[i] = float64(o.Actual)
	}
	score.Percentiles = Percentiles(actuals, percentiles)
	score.PredictabilityScore = float64(hits) / float64(len(outcomes))
	score.ForecastResults = outcomes
	return score
}
