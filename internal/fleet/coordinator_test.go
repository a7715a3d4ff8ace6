package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"oil-tank-monitor/internal/storage"
)

type fakeSource struct {
	readings map[int][]storage.Reading
	failFor  map[int]error
}

func (f *fakeSource) stationErr(stationNo int) error {
	if f.failFor == nil {
		return nil
	}
	return f.failFor[stationNo]
}

func (f *fakeSource) LatestReading(ctx context.Context, stationNo int) (*storage.Reading, error) {
	if err := f.stationErr(stationNo); err != nil {
		return nil, err
	}
	rows := f.readings[stationNo]
	if len(rows) == 0 {
		return nil, nil
	}
	latest := rows[len(rows)-1]
	return &latest, nil
}

func (f *fakeSource) ListRecentReadings(ctx context.Context, stationNo, limit int) ([]storage.Reading, error) {
	if err := f.stationErr(stationNo); err != nil {
		return nil, err
	}
	rows := f.readings[stationNo]
	out := make([]storage.Reading, 0, limit)
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rows[i])
	}
	return out, nil
}

func (f *fakeSource) ListAllReadings(ctx context.Context, stationNo int) ([]storage.Reading, error) {
	if err := f.stationErr(stationNo); err != nil {
		return nil, err
	}
	return f.readings[stationNo], nil
}

func levelReading(stationNo int, ts time.Time, total int64) storage.Reading {
	return storage.Reading{
		StationNo:    stationNo,
		Timestamp:    ts,
		Shift1:       decimal.NewFromInt(total),
		TankCapacity: decimal.NewFromInt(100),
		MinOilLevel:  decimal.NewFromInt(20),
	}
}

func TestFleetSummaryIndexStable(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)
	source := &fakeSource{readings: map[int][]storage.Reading{
		1: {levelReading(1, base, 40)},
		// station 2 has no rows at all
		3: {levelReading(3, base, 10), levelReading(3, base.Add(time.Hour), 70)},
	}}

	coord := NewCoordinator(source, 3, zerolog.Nop())
	summaries, err := coord.FleetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected one summary per station, got %d", len(summaries))
	}

	for i, summary := range summaries {
		if summary.StationNo != i+1 {
			t.Fatalf("summaries must be ordered by station number, got %d at index %d", summary.StationNo, i)
		}
	}

	if !summaries[1].CurrentOilLevel.IsZero() {
		t.Fatalf("station without readings must report zero, got %s", summaries[1].CurrentOilLevel)
	}
	if summaries[2].CurrentOilLevel.Cmp(decimal.NewFromInt(70)) != 0 {
		t.Fatalf("summary must use the latest reading, got %s", summaries[2].CurrentOilLevel)
	}
}

func TestFleetSummaryFailsOnFirstError(t *testing.T) {
	boom := errors.New("connection refused")
	source := &fakeSource{
		readings: map[int][]storage.Reading{},
		failFor:  map[int]error{2: boom},
	}

	coord := NewCoordinator(source, 3, zerolog.Nop())
	if _, err := coord.FleetSummary(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("a single station failure must fail the fan-in, got %v", err)
	}
}

func TestStationHistoryValidation(t *testing.T) {
	source := &fakeSource{readings: map[int][]storage.Reading{}}
	coord := NewCoordinator(source, 6, zerolog.Nop())

	for _, stationNo := range []int{0, -1, 7} {
		if _, err := coord.StationHistory(context.Background(), stationNo); !errors.Is(err, ErrStationOutOfRange) {
			t.Fatalf("station %d should be rejected, got %v", stationNo, err)
		}
	}

	if _, err := coord.StationHistory(context.Background(), 4); !errors.Is(err, ErrNoReadings) {
		t.Fatalf("in-range station with no rows should be not-found, got %v", err)
	}
}

func TestStationHistoryDescendingAndCapped(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	rows := make([]storage.Reading, 0, 120)
	for i := 0; i < 120; i++ {
		r := levelReading(1, base.Add(time.Duration(i)*time.Hour), int64(i))
		r.ID = int64(i + 1)
		rows = append(rows, r)
	}
	source := &fakeSource{readings: map[int][]storage.Reading{1: rows}}

	coord := NewCoordinator(source, 1, zerolog.Nop())
	entries, err := coord.StationHistory(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != historyRowLimit {
		t.Fatalf("expected %d entries, got %d", historyRowLimit, len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatal("history must be descending by timestamp")
		}
	}
	if entries[0].ID != 120 {
		t.Fatalf("newest row should come first, got id %d", entries[0].ID)
	}
}

func TestFleetTopUpHistoryFlattened(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	source := &fakeSource{readings: map[int][]storage.Reading{
		1: {
			levelReading(1, base, 10),
			levelReading(1, base.Add(time.Hour), 30),
		},
		2: {
			levelReading(2, base, 50),
			levelReading(2, base.Add(time.Hour), 45), // depletion only
		},
		3: {
			levelReading(3, base, 5),
			levelReading(3, base.Add(time.Hour), 15),
			levelReading(3, base.Add(2*time.Hour), 40),
		},
	}}

	coord := NewCoordinator(source, 3, zerolog.Nop())
	events, err := coord.FleetTopUpHistory(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events across the fleet, got %d", len(events))
	}

	if events[0].StationNo != 1 || events[1].StationNo != 3 || events[2].StationNo != 3 {
		t.Fatalf("events must be grouped by ascending station number: %+v", events)
	}
	// within station 3, newest first
	if !events[1].Timestamp.After(events[2].Timestamp) {
		t.Fatal("per-station events must be newest first")
	}
}

func TestFleetTopUpHistoryFailsOnFirstError(t *testing.T) {
	boom := errors.New("timeout")
	source := &fakeSource{
		readings: map[int][]storage.Reading{},
		failFor:  map[int]error{1: boom},
	}

	coord := NewCoordinator(source, 2, zerolog.Nop())
	if _, err := coord.FleetTopUpHistory(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected propagated failure, got %v", err)
	}
}
