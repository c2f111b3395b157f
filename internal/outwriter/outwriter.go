// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for
// the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteForecast prints a manual forecast using the configured output format.
func (ow *OutWriter) WriteForecast(result schema.ManualForecast, cfg *contract.Config) error {
	return PrintManualForecast(result, cfg)
}

// WriteChart prints a process behaviour chart using the configured output format.
func (ow *OutWriter) WriteChart(chart schema.ProcessBehaviourChart, cfg *contract.Config) error {
	return PrintChart(chart, cfg)
}

// WritePercentiles prints a percentile summary using the configured output format.
func (ow *OutWriter) WritePercentiles(label string, values []schema.PercentileValue, cfg *contract.Config) error {
	return PrintPercentiles(label, values, cfg)
}

// WritePredictability prints a predictability score using the configured output format.
func (ow *OutWriter) WritePredictability(score schema.ForecastPredictabilityScore, cfg *contract.Config) error {
	return PrintPredictability(score, cfg)
}

// WriteUpdateStatus prints the update registry view using the configured output format.
func (ow *OutWriter) WriteUpdateStatus(summary schema.UpdateStatusSummary, active []schema.UpdateStatus, cfg *contract.Config) error {
	return PrintUpdateStatus(summary, active, cfg)
}

// GetTableWidth returns the rendering width for table output, preferring
// the explicit override, then the detected terminal size.
func GetTableWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 100
}
