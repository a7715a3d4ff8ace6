package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"oil-tank-monitor/internal/app"
)

var (
	showStation int
	showLimit   int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent readings for one station",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Station: showStation,
			Limit:   showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showStation, "station", 1, "Station number")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of readings to display")
}
