package fleet

import (
	"time"

	"github.com/shopspring/decimal"
)

// StationSummary reports a station's current level against its
// configured capacity and minimum. A station with no readings reports
// all-zero values rather than being omitted.
type StationSummary struct {
	StationNo       int
	CurrentOilLevel decimal.Decimal
	TankCapacity    decimal.Decimal
	MinimumOilLevel decimal.Decimal
}

// HistoryEntry is one stored reading projected for the history view.
type HistoryEntry struct {
	ID        int64
	Timestamp time.Time
	Shift1    decimal.Decimal
	Shift2    decimal.Decimal
	Shift3    decimal.Decimal
}

// TopUpEvent is derived, never persisted: the level strictly increased
// between two consecutive readings. Timestamp is the later reading's.
type TopUpEvent struct {
	StationNo int
	Timestamp time.Time
	// TopUp is the positive level delta for this pair.
	TopUp decimal.Decimal
	// TotalTopUpToday is the day's grand total, broadcast to every
	// event sharing this event's calendar day.
	TotalTopUpToday decimal.Decimal
	// OilReduction is earlier minus later on the same qualifying pair,
	// so it is never positive here. The legacy query reported it this
	// way; kept as-is.
	OilReduction decimal.Decimal
}
