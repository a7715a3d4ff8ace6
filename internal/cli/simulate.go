package cli

import (
	"time"

	"github.com/spf13/cobra"

	"oil-tank-monitor/internal/app"
)

var (
	simulateStation  int
	simulateCount    int
	simulateInterval time.Duration
	simulateSeed     int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Insert synthetic readings for testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SimulateOptions{
			Station:  simulateStation,
			Count:    simulateCount,
			Interval: simulateInterval,
			Seed:     simulateSeed,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateStation, "station", 0, "Station number (0 for every station)")
	simulateCmd.Flags().IntVar(&simulateCount, "count", 100, "Readings to insert per station")
	simulateCmd.Flags().DurationVar(&simulateInterval, "interval", 0, "Spacing between readings (defaults to poller interval)")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random seed (0 picks one)")
}
