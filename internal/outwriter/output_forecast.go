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

// PrintManualForecast outputs a manual forecast, dispatching based on the
// output format configured.
func PrintManualForecast(result schema.ManualForecast, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON forecast")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVForecast(w, result)
		}, "Wrote CSV forecast")
	default:
		return printForecastTable(result, cfg)
	}
}

func writeCSVForecast(w io.Writer, result schema.ManualForecast) error {
	header := []string{"forecast", "percentile", "value"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, e := range result.HowMany.Entries {
			row := []string{"how_many", strconv.Itoa(e.Percentile), strconv.Itoa(e.Items)}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		for _, e := range result.When.Entries {
			row := []string{"when", strconv.Itoa(e.Percentile), e.ExpectedDate.Format(contract.DateFormat)}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		if result.TargetDate != nil && result.RemainingItems > 0 {
			row := []string{"likelihood", "", fmt.Sprintf("%.4f", result.Likelihood)}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func printForecastTable(result schema.ManualForecast, cfg *contract.Config) error {
	if result.HowMany.IsEmpty() && result.When.IsEmpty() {
		fmt.Println("No forecast available: the team has no throughput history yet.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Forecast", "Percentile", "Value"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	if !result.HowMany.IsEmpty() {
		for _, e := range result.HowMany.Entries {
			label := fmt.Sprintf("How many in %d days", result.HowMany.Days)
			data = append(data, []string{label, strconv.Itoa(e.Percentile), strconv.Itoa(e.Items)})
		}
	}
	if !result.When.IsEmpty() {
		for _, e := range result.When.Entries {
			label := fmt.Sprintf("When %d items done", result.When.RemainingItems)
			data = append(data, []string{label, strconv.Itoa(e.Percentile), e.ExpectedDate.Format(contract.DateFormat)})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if result.TargetDate != nil && result.RemainingItems > 0 {
		fmt.Printf("Likelihood of %d items by %s: %.1f%% (%s)\n",
			result.RemainingItems, result.TargetDate.Format(contract.DateFormat),
			result.Likelihood*100, likelihoodLabel(result.Likelihood, cfg.UseColors))
	}
	return nil
}
