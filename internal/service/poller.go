package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"oil-tank-monitor/internal/gauge"
	"oil-tank-monitor/internal/scheduler"
	"oil-tank-monitor/internal/storage"
)

// ReadingWriter is the storage surface the poller needs.
type ReadingWriter interface {
	InsertReading(ctx context.Context, reading storage.Reading) (int64, error)
}

// Poller periodically reads every station's gauge and appends one
// shift-classified reading per station per tick.
type Poller struct {
	sched    *scheduler.Scheduler
	gauges   gauge.Reader
	store    ReadingWriter
	stations int
	logger   zerolog.Logger
}

// NewPoller constructs the ingestion poller.
func NewPoller(sched *scheduler.Scheduler, gauges gauge.Reader, store ReadingWriter, stations int, logger zerolog.Logger) *Poller {
	return &Poller{
		sched:    sched,
		gauges:   gauges,
		store:    store,
		stations: stations,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run begins the collection loop.
func (p *Poller) Run(ctx context.Context) error {
	if p.sched == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return p.sched.Run(ctx, p.CollectOnce)
}

// CollectOnce reads every station's gauge once. A failing station is
// logged and skipped; the remaining stations still record.
func (p *Poller) CollectOnce(ctx context.Context, tick time.Time) error {
	collected := 0
	failed := 0

	for stationNo := 1; stationNo <= p.stations; stationNo++ {
		sample, err := p.gauges.ReadGauge(ctx, stationNo)
		if err != nil {
			failed++
			p.logger.Error().Err(err).Int("station", stationNo).Msg("gauge read failed")
			continue
		}

		reading := NewShiftReading(stationNo, tick, sample)
		if _, err := p.store.InsertReading(ctx, reading); err != nil {
			failed++
			p.logger.Error().Err(err).Int("station", stationNo).Msg("failed to store reading")
			continue
		}

		collected++
		p.logger.Info().
			Int("station", stationNo).
			Str("oil_level", sample.OilLevel.String()).
			Int("shift", ActiveShift(tick)).
			Msg("reading recorded")
	}

	if collected == 0 && failed > 0 {
		return fmt.Errorf("all %d station reads failed", failed)
	}
	return nil
}

// NewShiftReading builds a reading with the sampled level in the
// currently active shift's column and zeros in the other two, the
// column scheme the readings table inherited from the plant.
func NewShiftReading(stationNo int, ts time.Time, sample gauge.Sample) storage.Reading {
	reading := storage.Reading{
		StationNo:    stationNo,
		Timestamp:    ts,
		TankCapacity: sample.TankCapacity,
		MinOilLevel:  sample.MinOilLevel,
	}

	switch ActiveShift(ts) {
	case 1:
		reading.Shift1 = sample.OilLevel
	case 2:
		reading.Shift2 = sample.OilLevel
	default:
		reading.Shift3 = sample.OilLevel
	}
	return reading
}

// ActiveShift maps a wall-clock instant to the plant's work shifts:
// shift 1 runs 06:00-14:00, shift 2 runs 14:00-22:00, shift 3 covers
// the night.
func ActiveShift(t time.Time) int {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 14:
		return 1
	case hour >= 14 && hour < 22:
		return 2
	default:
		return 3
	}
}
