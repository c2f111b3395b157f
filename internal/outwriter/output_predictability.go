package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// PrintPredictability outputs a forecast predictability score, dispatching
// based on the output format configured.
func PrintPredictability(score schema.ForecastPredictabilityScore, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, score)
		}, "Wrote JSON predictability score")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVPredictability(w, score)
		}, "Wrote CSV predictability score")
	default:
		return printPredictabilityTable(score, cfg)
	}
}

func writeCSVPredictability(w io.Writer, score schema.ForecastPredictabilityScore) error {
	header := []string{"run", "forecast", "actual", "hit"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, o := range score.ForecastResults {
			row := []string{
				strconv.Itoa(o.Run),
				strconv.Itoa(o.Forecast),
				strconv.Itoa(o.Actual),
				strconv.FormatBool(o.Hit),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func printPredictabilityTable(score schema.ForecastPredictabilityScore, cfg *contract.Config) error {
	if len(score.ForecastResults) == 0 {
		fmt.Println("Not enough history to back-test forecasts yet.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Run", "Forecast", "Actual", "Hit"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, o := range score.ForecastResults {
		hit := "miss"
		if o.Hit {
			hit = "hit"
		}
		row := []string{strconv.Itoa(o.Run), strconv.Itoa(o.Forecast), strconv.Itoa(o.Actual), hit}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Predictability score: %.1f%% (%s)\n",
		score.PredictabilityScore*100, likelihoodLabel(score.PredictabilityScore, cfg.UseColors))
	return nil
}
