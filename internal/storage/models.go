package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reading is one periodic shift-level observation for a station.
// Rows are append-only; the ingestion poller writes them and the API
// layer only ever reads.
type Reading struct {
	ID           int64
	StationNo    int
	Timestamp    time.Time
	Shift1       decimal.Decimal
	Shift2       decimal.Decimal
	Shift3       decimal.Decimal
	TankCapacity decimal.Decimal
	MinOilLevel  decimal.Decimal
	CreatedAt    time.Time
}

// TotalLevel is the station's absolute oil level at this instant: the
// sum of the three shift gauge columns, not a delta.
func (r Reading) TotalLevel() decimal.Decimal {
	return r.Shift1.Add(r.Shift2).Add(r.Shift3)
}
