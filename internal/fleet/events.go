package fleet

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"oil-tank-monitor/internal/storage"
)

// maxTopUpRows bounds the reported history per station.
const maxTopUpRows = 100

// DeriveTopUps walks a station's readings in ascending timestamp order,
// emits an event for every consecutive pair whose total level strictly
// increased, and reports the result newest-first, capped at
// maxTopUpRows. Daily totals are attached before the cap is applied so
// truncated rows still contribute to their day's total.
func DeriveTopUps(stationNo int, readings []storage.Reading) []TopUpEvent {
	if len(readings) < 2 {
		return nil
	}

	ordered := make([]storage.Reading, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	events := make([]TopUpEvent, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		earlier := ordered[i-1].TotalLevel()
		later := ordered[i].TotalLevel()

		delta := later.Sub(earlier)
		if delta.Sign() <= 0 {
			continue
		}

		events = append(events, TopUpEvent{
			StationNo:    stationNo,
			Timestamp:    ordered[i].Timestamp,
			TopUp:        delta,
			OilReduction: earlier.Sub(later),
		})
	}
	if len(events) == 0 {
		return nil
	}

	applyDailyTotals(events)

	// newest first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if len(events) > maxTopUpRows {
		events = events[:maxTopUpRows]
	}
	return events
}

// applyDailyTotals sums TopUp per calendar day and writes the day's
// grand total onto every event of that day. Days are cut in the
// process-local time zone, one zone for the whole fleet.
func applyDailyTotals(events []TopUpEvent) {
	totals := make(map[string]decimal.Decimal)
	for _, event := range events {
		key := dayKey(event.Timestamp)
		totals[key] = totals[key].Add(event.TopUp)
	}
	for i := range events {
		events[i].TotalTopUpToday = totals[dayKey(events[i].Timestamp)]
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
