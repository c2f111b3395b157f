package outwriter

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// percentileRow pairs a metric label with its percentile values for
// structured output.
type percentileRow struct {
	Metric      string                   `json:"metric"`
	Percentiles []schema.PercentileValue `json:"percentiles"`
}

// PrintPercentiles outputs a percentile summary, dispatching based on the
// output format configured.
func PrintPercentiles(label string, values []schema.PercentileValue, cfg *contract.Config) error {
	fmtFloat := floatFormatter(cfg.Precision)
	result := percentileRow{Metric: label, Percentiles: values}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON percentiles")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"metric", "percentile", "value"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				for _, v := range values {
					row := []string{label, strconv.Itoa(v.Percentile), fmtFloat(v.Value)}
					if err := csvWriter.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV percentiles")
	default:
		return printPercentilesTable(label, values, fmtFloat)
	}
}

func printPercentilesTable(label string, values []schema.PercentileValue, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Metric", "Percentile", "Value"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, v := range values {
		data = append(data, []string{label, strconv.Itoa(v.Percentile), fmtFloat(v.Value)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
