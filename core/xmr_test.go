package core

import (
	"testing"
	"time"

	"github.com/flowsignal/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartSeries(counts []int) schema.RunChart {
	return schema.NewRunChart(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), counts)
}

func TestChartNotEnoughData(t *testing.T) {
	chart := ComputeProcessBehaviourChart(chartSeries([]int{1, 2, 3, 4, 5}), nil, nil)

	assert.Equal(t, schema.ChartNotEnoughData, chart.Status)
	assert.Zero(t, chart.Average)
	assert.Zero(t, chart.UpperNaturalProcessLimit)

	// The raw series is still echoed so the chart can render.
	require.Len(t, chart.DataPoints, 5)
	for _, p := range chart.DataPoints {
		assert.Equal(t, schema.CauseNone, p.SpecialCause)
		assert.Empty(t, p.MovingRange)
	}
	assert.Equal(t, "2026-01-01", chart.DataPoints[0].Label)
}

func TestChartConstantBaseline(t *testing.T) {
	chart := ComputeProcessBehaviourChart(chartSeries([]int{4, 4, 4, 4, 4, 4, 4, 4}), nil, nil)

	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Equal(t, 4.0, chart.Average)
	assert.Equal(t, 4.0, chart.UpperNaturalProcessLimit)
	assert.Equal(t, 4.0, chart.LowerNaturalProcessLimit)
	for _, p := range chart.DataPoints {
		assert.Equal(t, schema.CauseNone, p.SpecialCause)
	}
}

func TestChartSingleHighValue(t *testing.T) {
	chart := ComputeProcessBehaviourChart(chartSeries([]int{1, 1, 1, 1, 1, 1, 1, 20}), nil, nil)

	require.Equal(t, schema.ChartReady, chart.Status)
	require.Len(t, chart.DataPoints, 8)
	for i, p := range chart.DataPoints {
		if i == 7 {
			assert.Equal(t, schema.CauseHighValue, p.SpecialCause)
		} else {
			assert.Equal(t, schema.CauseNone, p.SpecialCause, "point %d", i)
		}
	}
	assert.Equal(t, 0.0, chart.LowerNaturalProcessLimit)
}

func TestChartLongRun(t *testing.T) {
	// Noisy first half keeps the limits wide; the back half sits below
	// average for ten straight points.
	counts := []int{1, 6, 1, 6, 1, 6, 1, 6, 1, 6, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	chart := ComputeProcessBehaviourChart(chartSeries(counts), nil, nil)

	require.Equal(t, schema.ChartReady, chart.Status)
	require.Len(t, chart.DataPoints, 20)
	for i, p := range chart.DataPoints {
		if i == 19 {
			assert.Equal(t, schema.CauseLongRun, p.SpecialCause)
		} else {
			assert.Equal(t, schema.CauseNone, p.SpecialCause, "point %d", i)
		}
	}
}

func TestChartFrozenBaseline(t *testing.T) {
	counts := []int{2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 30, 2}
	series := chartSeries(counts)
	baselineStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	baselineEnd := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	chart := ComputeProcessBehaviourChart(series, &baselineStart, &baselineEnd)

	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Equal(t, 2.5, chart.Average)
	assert.InDelta(t, 2.5+2.66, chart.UpperNaturalProcessLimit, 1e-9)
	assert.Equal(t, 0.0, chart.LowerNaturalProcessLimit)

	// The spike sits outside the frozen baseline but is still flagged.
	require.Len(t, chart.DataPoints, 12)
	assert.Equal(t, schema.CauseHighValue, chart.DataPoints[10].SpecialCause)

	// Moving ranges are only attributed inside the baseline window.
	assert.Empty(t, chart.DataPoints[0].MovingRange)
	assert.Equal(t, []float64{1}, chart.DataPoints[1].MovingRange)
	assert.Empty(t, chart.DataPoints[10].MovingRange)
}

func TestChartShortFrozenBaseline(t *testing.T) {
	series := chartSeries([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	baselineStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	baselineEnd := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)

	chart := ComputeProcessBehaviourChart(series, &baselineStart, &baselineEnd)
	assert.Equal(t, schema.ChartNotEnoughData, chart.Status)
	assert.Len(t, chart.DataPoints, 10)
}

func TestIndexedChart(t *testing.T) {
	chart := ComputeIndexedBehaviourChart([]int{4, 4, 4, 4, 4, 4, 4, 4})

	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Equal(t, schema.XAxisIndex, chart.XAxisKind)
	assert.Equal(t, 4.0, chart.Average)
	require.Len(t, chart.DataPoints, 8)
	assert.Equal(t, "1", chart.DataPoints[0].Label)
	assert.Equal(t, "8", chart.DataPoints[7].Label)
}

func TestIndexedChartNotEnoughData(t *testing.T) {
	chart := ComputeIndexedBehaviourChart([]int{2, 3})

	assert.Equal(t, schema.ChartNotEnoughData, chart.Status)
	assert.Equal(t, schema.XAxisIndex, chart.XAxisKind)
	require.Len(t, chart.DataPoints, 2)
	assert.Equal(t, "2", chart.DataPoints[1].Label)
}
