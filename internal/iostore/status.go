package iostore

import (
	"fmt"

	"github.com/flowsignal/flowcast/schema"
)

// PrintStoreStatus prints store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Teams: %d\n", status.Teams)
	fmt.Printf("Portfolios: %d\n", status.Portfolios)
	fmt.Printf("Work Items: %d\n", status.WorkItems)
	fmt.Printf("Features: %d\n", status.Features)
	if !status.LastForecastAt.IsZero() {
		fmt.Printf("Last Forecast: %s\n", status.LastForecastAt.Format("2006-01-02 15:04:05"))
	}
}
