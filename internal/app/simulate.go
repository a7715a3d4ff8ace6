package app

import (
	"context"
	"fmt"
	"time"

	"oil-tank-monitor/internal/gauge"
	"oil-tank-monitor/internal/service"
)

// Simulate inserts synthetic shift readings ending at the current
// time, spaced by the configured interval. Useful for exercising the
// API against an empty database.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	if opts.Count <= 0 {
		return fmt.Errorf("--count must be greater than zero")
	}
	if opts.Interval <= 0 {
		opts.Interval = a.Config.Poller.Interval
	}
	if opts.Station < 0 || opts.Station > a.Config.Fleet.Stations {
		return fmt.Errorf("--station must be between 1 and %d, or 0 for every station", a.Config.Fleet.Stations)
	}

	stations := []int{opts.Station}
	if opts.Station == 0 {
		stations = stations[:0]
		for stationNo := 1; stationNo <= a.Config.Fleet.Stations; stationNo++ {
			stations = append(stations, stationNo)
		}
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := gauge.NewSimulated(seed)

	start := time.Now().Add(-time.Duration(opts.Count-1) * opts.Interval)
	inserted := 0

	for i := 0; i < opts.Count; i++ {
		ts := start.Add(time.Duration(i) * opts.Interval)
		for _, stationNo := range stations {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sample, err := sim.ReadGauge(ctx, stationNo)
			if err != nil {
				return err
			}

			reading := service.NewShiftReading(stationNo, ts, sample)
			if _, err := store.InsertReading(ctx, reading); err != nil {
				return fmt.Errorf("station %d: %w", stationNo, err)
			}
			inserted++
		}
	}

	a.Logger.Info().
		Int("readings", inserted).
		Int("stations", len(stations)).
		Int64("seed", seed).
		Msg("simulation complete")
	return nil
}
