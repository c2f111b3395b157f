package core

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/flowsignal/flowcast/schema"
)

// DefaultTrials is the number of simulated runs per forecast.
const DefaultTrials = 10000

// Sampler draws one throughput value from a historical population. The
// production sampler is pseudo-random; tests inject deterministic ones.
type Sampler interface {
	Sample(counts []int) int
}

type randSampler struct {
	rng *rand.Rand
}

func (s *randSampler) Sample(counts []int) int {
	return counts[s.rng.IntN(len(counts))]
}

// NewRandomSampler returns a PCG-backed sampler. A zero seed draws fresh
// entropy so concurrent forecasts stay independent; a fixed seed makes the
// sample sequence reproducible.
func NewRandomSampler(seed int64) Sampler {
	if seed == 0 {
		return &randSampler{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &randSampler{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)<<32|uint64(seed)))}
}

// Forecaster runs Monte Carlo bootstrap simulations over throughput
// history. It is stateless across calls; each forecast draws a fresh
// sampler so calls are independent under concurrency.
type Forecaster struct {
	trials     int
	newSampler func() Sampler
}

// NewForecaster builds a production forecaster. A zero seed reseeds every
// call; a fixed seed makes each call reproducible.
func NewForecaster(trials int, seed int64) *Forecaster {
	if trials <= 0 {
		trials = DefaultTrials
	}
	return &Forecaster{
		trials:     trials,
		newSampler: func() Sampler { return NewRandomSampler(seed) },
	}
}

// NewForecasterWithSampler builds a forecaster with an injected sampler
// factory, used by tests to force deterministic outcomes.
func NewForecasterWithSampler(trials int, newSampler func() Sampler) *Forecaster {
	return &Forecaster{trials: trials, newSampler: newSampler}
}

// Today returns the current UTC calendar date at midnight, the anchor for
// all when-forecast dates.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// HowMany forecasts how many items finish within the given number of days.
// Each trial sums `days` values resampled with replacement from the
// history; the per-trial sums form the outcome distribution. The
// percentiles are conservative: the entry for p is the smallest outcome
// achieved in at least p percent of trials, so higher percentiles map to
// lower item counts. Empty history yields an empty forecast; days <= 0
// yields all-zero entries.
func (f *Forecaster) HowMany(history schema.RunChart, days int) schema.HowManyForecast {
	forecast := schema.HowManyForecast{Days: days}
	if history.IsEmpty() {
		return forecast
	}

	outcomes := make([]int, f.trials)
	if days > 0 {
		sampler := f.newSampler()
		for t := range outcomes {
			sum := 0
			for d := 0; d < days; d++ {
				sum += sampler.Sample(history.Counts)
			}
			outcomes[t] = sum
		}
	}

	// Descending order: walking p percent into the list yields the value
	// achieved in at least p percent of trials.
	sort.Sort(sort.Reverse(sort.IntSlice(outcomes)))
	for _, p := range schema.DefaultPercentiles {
		forecast.Entries = append(forecast.Entries, schema.HowManyEntry{
			Percentile: p,
			Items:      outcomes[trialIndex(p, len(outcomes))],
		})
	}
	return forecast
}

// When forecasts when the remaining items will be done. Each trial
// accumulates one resampled throughput value per simulated day until the
// remaining count is reached; the per-trial day counts map to calendar
// dates anchored at today. remaining <= 0 means already done: every
// percentile maps to today. A history that is empty or sums to zero cannot
// make progress and yields an empty forecast.
func (f *Forecaster) When(history schema.RunChart, remaining int) schema.WhenForecast {
	forecast := schema.WhenForecast{RemainingItems: remaining}
	today := Today()

	if remaining <= 0 {
		for _, p := range schema.DefaultPercentiles {
			forecast.Entries = append(forecast.Entries, schema.WhenEntry{Percentile: p, ExpectedDate: today})
		}
		return forecast
	}
	if history.IsEmpty() || history.Total() == 0 {
		return forecast
	}

	sampler := f.newSampler()
	durations := make([]int, f.trials)
	for t := range durations {
		done := 0
		days := 0
		for done < remaining {
			days++
			done += sampler.Sample(history.Counts)
		}
		durations[t] = days
	}

	// Ascending order: higher percentiles map to later dates.
	sort.Ints(durations)
	for _, p := range schema.DefaultPercentiles {
		days := durations[trialIndex(p, len(durations))]
		forecast.Entries = append(forecast.Entries, schema.WhenEntry{
			Percentile:   p,
			ExpectedDate: today.AddDate(0, 0, days),
		})
	}
	return forecast
}

// Likelihood returns the fraction of trials that finish the remaining
// items within the given number of days. It runs one joint simulation pass
// rather than recombining the two univariate forecasts, which would assume
// independence they do not have.
func (f *Forecaster) Likelihood(history schema.RunChart, remaining, days int) float64 {
	if remaining <= 0 {
		return 1
	}
	if days <= 0 || history.IsEmpty() {
		return 0
	}

	sampler := f.newSampler()
	hits := 0
	for t := 0; t < f.trials; t++ {
		sum := 0
		for d := 0; d < days && sum < remaining; d++ {
			sum += sampler.Sample(history.Counts)
		}
		if sum >= remaining {
			hits++
		}
	}
	return float64(hits) / float64(f.trials)
}

// TeamLoad pairs one team's throughput history with its share of the
// remaining work on a feature.
type TeamLoad struct {
	History   schema.RunChart
	Remaining int
}

// WhenAcross forecasts when a feature worked by several teams will be
// done. Within each trial every team burns down its own share against its
// own history; the trial finishes when the slowest team does. Loads with
// no remaining work are skipped; if any team with work left has a history
// that cannot make progress the forecast is empty.
func (f *Forecaster) WhenAcross(loads []TeamLoad) schema.WhenForecast {
	total := 0
	for _, l := range loads {
		total += l.Remaining
	}
	forecast := schema.WhenForecast{RemainingItems: total}
	today := Today()

	if total <= 0 {
		for _, p := range schema.DefaultPercentiles {
			forecast.Entries = append(forecast.Entries, schema.WhenEntry{Percentile: p, ExpectedDate: today})
		}
		return forecast
	}

	var active []TeamLoad
	for _, l := range loads {
		if l.Remaining <= 0 {
			continue
		}
		if l.History.IsEmpty() || l.History.Total() == 0 {
			return forecast
		}
		active = append(active, l)
	}

	sampler := f.newSampler()
	durations := make([]int, f.trials)
	for t := range durations {
		worst := 0
		for _, l := range active {
			done := 0
			days := 0
			for done < l.Remaining {
				days++
				done += sampler.Sample(l.History.Counts)
			}
			if days > worst {
				worst = days
			}
		}
		durations[t] = worst
	}

	sort.Ints(durations)
	for _, p := range schema.DefaultPercentiles {
		days := durations[trialIndex(p, len(durations))]
		forecast.Entries = append(forecast.Entries, schema.WhenEntry{
			Percentile:   p,
			ExpectedDate: today.AddDate(0, 0, days),
		})
	}
	return forecast
}

// trialIndex maps a percentile onto an index into a sorted outcome list.
func trialIndex(p, n int) int {
	idx := p * n / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}
