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

// updateStatusView bundles the summary with the active entries for
// structured output.
type updateStatusView struct {
	Summary schema.UpdateStatusSummary `json:"summary"`
	Active  []schema.UpdateStatus      `json:"active"`
}

// PrintUpdateStatus outputs the update registry view, dispatching based on
// the output format configured.
func PrintUpdateStatus(summary schema.UpdateStatusSummary, active []schema.UpdateStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, updateStatusView{Summary: summary, Active: active})
		}, "Wrote JSON update status")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"update_type", "id", "status"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				for _, s := range active {
					row := []string{string(s.UpdateType), strconv.FormatInt(s.ID, 10), string(s.Status)}
					if err := csvWriter.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV update status")
	default:
		return printUpdateStatusTable(summary, active)
	}
}

func printUpdateStatusTable(summary schema.UpdateStatusSummary, active []schema.UpdateStatus) error {
	if !summary.HasActiveUpdates {
		fmt.Println("No active updates.")
		return nil
	}
	fmt.Printf("Active updates: %d\n", summary.ActiveCount)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Type", "ID", "Status"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range active {
		data = append(data, []string{string(s.UpdateType), strconv.FormatInt(s.ID, 10), string(s.Status)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
