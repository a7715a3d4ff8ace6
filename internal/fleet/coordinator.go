package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"oil-tank-monitor/internal/storage"
)

// historyRowLimit bounds the reading history returned per station.
const historyRowLimit = 100

var (
	// ErrStationOutOfRange marks a station number outside 1..N.
	ErrStationOutOfRange = errors.New("station number out of range")
	// ErrNoReadings marks a valid station with no stored rows. Only the
	// history view treats this as an error; the summary view reports
	// zeros instead.
	ErrNoReadings = errors.New("no readings recorded for station")
)

// ReadingSource is the storage adapter surface the coordinator needs.
type ReadingSource interface {
	LatestReading(ctx context.Context, stationNo int) (*storage.Reading, error)
	ListRecentReadings(ctx context.Context, stationNo, limit int) ([]storage.Reading, error)
	ListAllReadings(ctx context.Context, stationNo int) ([]storage.Reading, error)
}

// Coordinator fans read operations out across the configured fleet.
type Coordinator struct {
	source   ReadingSource
	stations int
	logger   zerolog.Logger
}

// NewCoordinator constructs a Coordinator over stations 1..stations.
func NewCoordinator(source ReadingSource, stations int, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		source:   source,
		stations: stations,
		logger:   logger.With().Str("component", "fleet").Logger(),
	}
}

// Stations returns the configured fleet size.
func (c *Coordinator) Stations() int {
	return c.stations
}

// FleetSummary fetches every station's latest reading concurrently and
// returns one summary per station, ordered by station number regardless
// of completion order. The first fetch failure fails the whole call.
func (c *Coordinator) FleetSummary(ctx context.Context) ([]StationSummary, error) {
	summaries := make([]StationSummary, c.stations)

	group, ctx := errgroup.WithContext(ctx)
	for stationNo := 1; stationNo <= c.stations; stationNo++ {
		stationNo := stationNo
		group.Go(func() error {
			latest, err := c.source.LatestReading(ctx, stationNo)
			if err != nil {
				return fmt.Errorf("station %d: latest reading: %w", stationNo, err)
			}
			summaries[stationNo-1] = Summarize(stationNo, latest)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// StationHistory returns up to historyRowLimit most recent readings for
// one station, newest first.
func (c *Coordinator) StationHistory(ctx context.Context, stationNo int) ([]HistoryEntry, error) {
	if stationNo < 1 || stationNo > c.stations {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrStationOutOfRange, c.stations)
	}

	readings, err := c.source.ListRecentReadings(ctx, stationNo, historyRowLimit)
	if err != nil {
		return nil, fmt.Errorf("station %d: list readings: %w", stationNo, err)
	}
	if len(readings) == 0 {
		return nil, ErrNoReadings
	}

	entries := make([]HistoryEntry, len(readings))
	for i, reading := range readings {
		entries[i] = HistoryEntry{
			ID:        reading.ID,
			Timestamp: reading.Timestamp,
			Shift1:    reading.Shift1,
			Shift2:    reading.Shift2,
			Shift3:    reading.Shift3,
		}
	}
	return entries, nil
}

// FleetTopUpHistory derives every station's top-up events concurrently
// and flattens them into one sequence ordered by station number, each
// station's block newest-first. The first fetch failure fails the call.
func (c *Coordinator) FleetTopUpHistory(ctx context.Context) ([]TopUpEvent, error) {
	perStation := make([][]TopUpEvent, c.stations)

	group, ctx := errgroup.WithContext(ctx)
	for stationNo := 1; stationNo <= c.stations; stationNo++ {
		stationNo := stationNo
		group.Go(func() error {
			readings, err := c.source.ListAllReadings(ctx, stationNo)
			if err != nil {
				return fmt.Errorf("station %d: list readings: %w", stationNo, err)
			}
			perStation[stationNo-1] = DeriveTopUps(stationNo, readings)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	flattened := make([]TopUpEvent, 0)
	for _, events := range perStation {
		flattened = append(flattened, events...)
	}
	return flattened, nil
}
