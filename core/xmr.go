package core

import (
	"strconv"
	"time"

	"github.com/flowsignal/flowcast/schema"
)

// XmR chart constants.
const (
	// MinBaselinePoints is the smallest baseline that yields stable
	// natural process limits.
	MinBaselinePoints = 8

	// LongRunLength is the run length on one side of the average that
	// signals a process shift.
	LongRunLength = 8

	// limitFactor scales the average moving range into natural process
	// limits.
	limitFactor = 2.66
)

// ComputeProcessBehaviourChart builds an XmR chart from a daily series.
// The average and limits are seeded only from the baseline window; when
// both baseline bounds are nil the baseline is the full series. Special
// causes are evaluated over the full series. With fewer than
// MinBaselinePoints baseline buckets the chart is returned as
// NotEnoughData, echoing the raw series as plain points so it can still be
// rendered.
func ComputeProcessBehaviourChart(series schema.RunChart, baselineStart, baselineEnd *time.Time) schema.ProcessBehaviourChart {
	chart := schema.ProcessBehaviourChart{
		Status:    schema.ChartNotEnoughData,
		XAxisKind: schema.XAxisDate,
	}

	baseline := resolveBaseline(series, baselineStart, baselineEnd)
	if baseline.Days() < MinBaselinePoints {
		for i, c := range series.Counts {
			chart.DataPoints = append(chart.DataPoints, schema.ChartDataPoint{
				Label:        series.DateOnDay(i).Format("2006-01-02"),
				Value:        float64(c),
				SpecialCause: schema.CauseNone,
			})
		}
		return chart
	}

	average := 0.0
	for _, c := range baseline.Counts {
		average += float64(c)
	}
	average /= float64(baseline.Days())

	// Average moving range over the baseline window only, so data outside
	// a frozen baseline cannot shift historical limits.
	avgMovingRange := 0.0
	for i := 1; i < baseline.Days(); i++ {
		avgMovingRange += absDiff(baseline.Counts[i], baseline.Counts[i-1])
	}
	avgMovingRange /= float64(baseline.Days() - 1)

	chart.Status = schema.ChartReady
	chart.Average = average
	chart.UpperNaturalProcessLimit = average + limitFactor*avgMovingRange
	chart.LowerNaturalProcessLimit = average - limitFactor*avgMovingRange
	if chart.LowerNaturalProcessLimit < 0 {
		chart.LowerNaturalProcessLimit = 0
	}

	baselineFrom := int(baseline.StartDate.Sub(series.StartDate).Hours() / 24)
	for i, c := range series.Counts {
		point := schema.ChartDataPoint{
			Label:        series.DateOnDay(i).Format("2006-01-02"),
			Value:        float64(c),
			SpecialCause: schema.CauseNone,
		}
		if i > baselineFrom && i < baselineFrom+baseline.Days() {
			point.MovingRange = []float64{absDiff(series.Counts[i], series.Counts[i-1])}
		}
		chart.DataPoints = append(chart.DataPoints, point)
	}

	flagSpecialCauses(chart.DataPoints, chart.Average, chart.UpperNaturalProcessLimit, chart.LowerNaturalProcessLimit)
	return chart
}

// ComputeIndexedBehaviourChart builds an XmR chart over observations that
// have no calendar axis, such as per-item cycle times ordered by close
// date. Points are labelled by one-based index and the full sequence seeds
// the limits.
func ComputeIndexedBehaviourChart(values []int) schema.ProcessBehaviourChart {
	series := schema.RunChart{Counts: values}
	chart := ComputeProcessBehaviourChart(series, nil, nil)
	chart.XAxisKind = schema.XAxisIndex
	for i := range chart.DataPoints {
		chart.DataPoints[i].Label = strconv.Itoa(i + 1)
	}
	return chart
}

// resolveBaseline returns the sub-series seeding the average and limits.
func resolveBaseline(series schema.RunChart, start, end *time.Time) schema.RunChart {
	if start == nil || end == nil || series.IsEmpty() {
		return series
	}
	from := int(start.UTC().Truncate(24*time.Hour).Sub(series.StartDate).Hours() / 24)
	to := int(end.UTC().Truncate(24*time.Hour).Sub(series.StartDate).Hours()/24) + 1
	return series.Window(from, to)
}

// flagSpecialCauses assigns at most one cause per point. Out-of-limit
// checks run first; a run of LongRunLength or more consecutive points on
// one side of the average flags the last point of the run, unless that
// point already carries an out-of-limit cause.
func flagSpecialCauses(points []schema.ChartDataPoint, average, upper, lower float64) {
	for i := range points {
		switch {
		case points[i].Value > upper:
			points[i].SpecialCause = schema.CauseHighValue
		case points[i].Value < lower:
			points[i].SpecialCause = schema.CauseLowValue
		}
	}

	runLength := 0
	runSide := 0
	flagRun := func(endIdx int) {
		if runLength >= LongRunLength && points[endIdx].SpecialCause == schema.CauseNone {
			points[endIdx].SpecialCause = schema.CauseLongRun
		}
	}
	for i := range points {
		side := 0
		if points[i].Value > average {
			side = 1
		} else if points[i].Value < average {
			side = -1
		}
		if side != 0 && side == runSide {
			runLength++
		} else {
			if runSide != 0 {
				flagRun(i - 1)
			}
			runSide = side
			runLength = 1
			if side == 0 {
				runLength = 0
			}
		}
	}
	if runSide != 0 {
		flagRun(len(points) - 1)
	}
}

func absDiff(a, b int) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
