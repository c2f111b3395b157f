package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/flowsignal/flowcast/core"
	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// PrintChart outputs a process behaviour chart, dispatching based on the
// output format configured.
func PrintChart(chart schema.ProcessBehaviourChart, cfg *contract.Config) error {
	fmtFloat := floatFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, chart)
		}, "Wrote JSON chart")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVChart(w, chart, fmtFloat)
		}, "Wrote CSV chart")
	default:
		return printChartTable(chart, cfg, fmtFloat)
	}
}

func writeCSVChart(w io.Writer, chart schema.ProcessBehaviourChart, fmtFloat func(float64) string) error {
	header := []string{"label", "value", "special_cause", "moving_range"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, p := range chart.DataPoints {
			movingRange := ""
			if len(p.MovingRange) > 0 {
				movingRange = fmtFloat(p.MovingRange[0])
			}
			row := []string{p.Label, fmtFloat(p.Value), string(p.SpecialCause), movingRange}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func printChartTable(chart schema.ProcessBehaviourChart, cfg *contract.Config, fmtFloat func(float64) string) error {
	if chart.Status == schema.ChartNotEnoughData {
		fmt.Printf("Not enough data for natural process limits: need at least %d baseline points.\n",
			core.MinBaselinePoints)
	} else {
		fmt.Printf("Average: %s  UNPL: %s  LNPL: %s\n",
			fmtFloat(chart.Average),
			fmtFloat(chart.UpperNaturalProcessLimit),
			fmtFloat(chart.LowerNaturalProcessLimit))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"#", "Label", "Value", "Special Cause"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, p := range chart.DataPoints {
		cause := ""
		if p.SpecialCause != schema.CauseNone {
			cause = string(p.SpecialCause)
		}
		row := []string{strconv.Itoa(i + 1), p.Label, fmtFloat(p.Value), cause}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
