package gauge

import (
	"context"

	"github.com/shopspring/decimal"
)

// Sample is one instantaneous gauge read for a station: the absolute
// oil level plus the capacity and minimum registers carried alongside.
type Sample struct {
	OilLevel     decimal.Decimal
	TankCapacity decimal.Decimal
	MinOilLevel  decimal.Decimal
}

// Reader retrieves the current gauge registers for one station.
type Reader interface {
	ReadGauge(ctx context.Context, stationNo int) (Sample, error)
}
