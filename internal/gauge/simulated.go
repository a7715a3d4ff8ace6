package gauge

import (
	"context"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	refillMargin = decimal.NewFromFloat(0.05)
)

type tankState struct {
	level    decimal.Decimal
	capacity decimal.Decimal
	minLevel decimal.Decimal
}

// Simulated produces synthetic gauge reads. Each read drains a small
// random amount, and a tank that falls near its minimum is refilled to
// capacity on the next read.
type Simulated struct {
	mu    sync.Mutex
	rng   *rand.Rand
	tanks map[int]*tankState
}

// NewSimulated seeds a simulated source. The same seed reproduces the
// same fleet behaviour.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		rng:   rand.New(rand.NewSource(seed)),
		tanks: make(map[int]*tankState),
	}
}

// ReadGauge returns the station's next synthetic sample.
func (s *Simulated) ReadGauge(ctx context.Context, stationNo int) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tank, ok := s.tanks[stationNo]
	if !ok {
		tank = s.newTank(stationNo)
		s.tanks[stationNo] = tank
	} else {
		s.advance(tank)
	}

	return Sample{
		OilLevel:     tank.level,
		TankCapacity: tank.capacity,
		MinOilLevel:  tank.minLevel,
	}, nil
}

func (s *Simulated) newTank(stationNo int) *tankState {
	capacity := decimal.NewFromInt(int64(400 + 50*stationNo))
	minLevel := capacity.Mul(decimal.NewFromFloat(0.2)).Round(3)

	// start somewhere between the minimum and full
	span := capacity.Sub(minLevel).InexactFloat64()
	level := minLevel.Add(decimal.NewFromFloat(s.rng.Float64() * span)).Round(3)

	return &tankState{level: level, capacity: capacity, minLevel: minLevel}
}

func (s *Simulated) advance(tank *tankState) {
	threshold := tank.minLevel.Add(tank.capacity.Mul(refillMargin))
	if tank.level.Cmp(threshold) < 0 {
		tank.level = tank.capacity
		return
	}

	// drain 0.5%..3% of capacity per read
	fraction := 0.005 + s.rng.Float64()*0.025
	drained := tank.capacity.Mul(decimal.NewFromFloat(fraction)).Round(3)
	tank.level = tank.level.Sub(drained)
	if tank.level.Sign() < 0 {
		tank.level = decimal.Zero
	}
}

var _ Reader = (*Simulated)(nil)
