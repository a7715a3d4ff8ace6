package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"oil-tank-monitor/internal/storage"
)

// Export renders a station's level history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.Station < 1 || opts.Station > a.Config.Fleet.Stations {
		return fmt.Errorf("--station must be between 1 and %d", a.Config.Fleet.Stations)
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	to := time.Now()
	if opts.To != nil {
		to = *opts.To
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Poller.Interval)
	if opts.From != nil {
		from = *opts.From
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	readings, err := store.ListReadingsBetween(ctx, opts.Station, from, to)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		a.Logger.Info().Int("station", opts.Station).Msg("no readings found for export window")
		return nil
	}

	downsampled := downsampleReadings(readings, opts.MaxPoints)
	a.Logger.Info().
		Int("station", opts.Station).
		Int("total", len(readings)).
		Int("exported", len(downsampled)).
		Msg("exporting readings")

	if opts.CSVPath != "" {
		if err := writeReadingsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeReadingsPNG(opts.PNGPath, opts.Station, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleReadings(readings []storage.Reading, max int) []storage.Reading {
	if max <= 0 || len(readings) <= max {
		return readings
	}

	result := make([]storage.Reading, 0, max)
	step := float64(len(readings)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(readings) {
			idx = len(readings) - 1
		}
		result = append(result, readings[idx])
	}
	return result
}

func writeReadingsCSV(path string, readings []storage.Reading) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"timestamp", "shift1", "shift2", "shift3", "total_level", "tank_capacity", "min_oil_level"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, reading := range readings {
		record := []string{
			reading.Timestamp.Format(time.RFC3339),
			reading.Shift1.String(),
			reading.Shift2.String(),
			reading.Shift3.String(),
			reading.TotalLevel().String(),
			reading.TankCapacity.String(),
			reading.MinOilLevel.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeReadingsPNG(path string, stationNo int, readings []storage.Reading) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(readings))
	level := make([]float64, len(readings))
	capacity := make([]float64, len(readings))
	minLevel := make([]float64, len(readings))

	for i, reading := range readings {
		x[i] = reading.Timestamp
		level[i] = reading.TotalLevel().InexactFloat64()
		capacity[i] = reading.TankCapacity.InexactFloat64()
		minLevel[i] = reading.MinOilLevel.InexactFloat64()
	}

	levelFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Title:  fmt.Sprintf("station_%d oil level", stationNo),
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Oil level",
			ValueFormatter: levelFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Level",
				XValues: x,
				YValues: level,
			},
			chart.TimeSeries{
				Name:    "Capacity",
				XValues: x,
				YValues: capacity,
			},
			chart.TimeSeries{
				Name:    "Minimum",
				XValues: x,
				YValues: minLevel,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
