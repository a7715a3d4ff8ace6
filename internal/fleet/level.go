package fleet

import (
	"oil-tank-monitor/internal/storage"
)

// Summarize derives a station's summary from its most recent reading.
// A nil reading is a valid, reportable state: every field stays zero.
func Summarize(stationNo int, latest *storage.Reading) StationSummary {
	summary := StationSummary{StationNo: stationNo}
	if latest == nil {
		return summary
	}

	summary.CurrentOilLevel = latest.TotalLevel()
	summary.TankCapacity = latest.TankCapacity
	summary.MinimumOilLevel = latest.MinOilLevel
	return summary
}
