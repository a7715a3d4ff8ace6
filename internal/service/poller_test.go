package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"oil-tank-monitor/internal/gauge"
	"oil-tank-monitor/internal/storage"
)

type fakeGauges struct {
	samples map[int]gauge.Sample
	failFor map[int]error
}

func (f *fakeGauges) ReadGauge(ctx context.Context, stationNo int) (gauge.Sample, error) {
	if err := f.failFor[stationNo]; err != nil {
		return gauge.Sample{}, err
	}
	return f.samples[stationNo], nil
}

type fakeWriter struct {
	inserted []storage.Reading
	err      error
}

func (f *fakeWriter) InsertReading(ctx context.Context, reading storage.Reading) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, reading)
	return int64(len(f.inserted)), nil
}

func TestActiveShiftWindows(t *testing.T) {
	cases := []struct {
		hour int
		want int
	}{
		{0, 3}, {5, 3}, {6, 1}, {13, 1}, {14, 2}, {21, 2}, {22, 3}, {23, 3},
	}
	for _, tc := range cases {
		ts := time.Date(2025, 3, 10, tc.hour, 30, 0, 0, time.Local)
		if got := ActiveShift(ts); got != tc.want {
			t.Fatalf("hour %d: expected shift %d, got %d", tc.hour, tc.want, got)
		}
	}
}

func TestNewShiftReadingPlacesLevel(t *testing.T) {
	sample := gauge.Sample{
		OilLevel:     decimal.NewFromInt(42),
		TankCapacity: decimal.NewFromInt(80),
		MinOilLevel:  decimal.NewFromInt(15),
	}

	morning := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	reading := NewShiftReading(3, morning, sample)
	if reading.Shift1.Cmp(sample.OilLevel) != 0 || !reading.Shift2.IsZero() || !reading.Shift3.IsZero() {
		t.Fatalf("morning reading should land in shift 1: %+v", reading)
	}
	if reading.TotalLevel().Cmp(sample.OilLevel) != 0 {
		t.Fatalf("total level must equal the sampled level, got %s", reading.TotalLevel())
	}

	night := time.Date(2025, 3, 10, 23, 0, 0, 0, time.Local)
	reading = NewShiftReading(3, night, sample)
	if reading.Shift3.Cmp(sample.OilLevel) != 0 || !reading.Shift1.IsZero() {
		t.Fatalf("night reading should land in shift 3: %+v", reading)
	}
}

func TestCollectOnceSkipsFailingStation(t *testing.T) {
	sample := gauge.Sample{
		OilLevel:     decimal.NewFromInt(40),
		TankCapacity: decimal.NewFromInt(80),
		MinOilLevel:  decimal.NewFromInt(15),
	}
	gauges := &fakeGauges{
		samples: map[int]gauge.Sample{1: sample, 2: sample, 3: sample},
		failFor: map[int]error{2: errors.New("modbus timeout")},
	}
	writer := &fakeWriter{}

	p := NewPoller(nil, gauges, writer, 3, zerolog.Nop())
	tick := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	if err := p.CollectOnce(context.Background(), tick); err != nil {
		t.Fatalf("partial failure should not fail the tick: %v", err)
	}

	if len(writer.inserted) != 2 {
		t.Fatalf("expected 2 stored readings, got %d", len(writer.inserted))
	}
	if writer.inserted[0].StationNo != 1 || writer.inserted[1].StationNo != 3 {
		t.Fatalf("station 2 should be skipped: %+v", writer.inserted)
	}
}

func TestCollectOnceAllFailed(t *testing.T) {
	gauges := &fakeGauges{
		samples: map[int]gauge.Sample{},
		failFor: map[int]error{1: errors.New("down"), 2: errors.New("down")},
	}

	p := NewPoller(nil, gauges, &fakeWriter{}, 2, zerolog.Nop())
	if err := p.CollectOnce(context.Background(), time.Now()); err == nil {
		t.Fatal("a tick where every station failed should report an error")
	}
}
