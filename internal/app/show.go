package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// Show prints a station's recent readings.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Station < 1 || opts.Station > a.Config.Fleet.Stations {
		return fmt.Errorf("--station must be between 1 and %d", a.Config.Fleet.Stations)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	readings, err := store.ListRecentReadings(ctx, opts.Station, opts.Limit)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		fmt.Fprintf(os.Stdout, "no readings found for station %d\n", opts.Station)
		return nil
	}

	total, err := store.CountReadings(ctx, opts.Station)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time\tShift1\tShift2\tShift3\tTotal\tCapacity\tMin")

	for _, reading := range readings {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			reading.Timestamp.Format(time.RFC3339),
			formatLevel(reading.Shift1),
			formatLevel(reading.Shift2),
			formatLevel(reading.Shift3),
			formatLevel(reading.TotalLevel()),
			formatLevel(reading.TankCapacity),
			formatLevel(reading.MinOilLevel),
		)
	}

	writer.Flush()
	fmt.Fprintf(os.Stdout, "showing %d of %d readings\n", len(readings), total)
	return nil
}

func formatLevel(d decimal.Decimal) string {
	return d.StringFixed(3)
}
