package gauge

import (
	"context"
	"testing"
)

func TestSimulatedStaysWithinBounds(t *testing.T) {
	sim := NewSimulated(42)
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		sample, err := sim.ReadGauge(ctx, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sample.OilLevel.Sign() < 0 {
			t.Fatalf("level went negative: %s", sample.OilLevel)
		}
		if sample.OilLevel.Cmp(sample.TankCapacity) > 0 {
			t.Fatalf("level %s exceeded capacity %s", sample.OilLevel, sample.TankCapacity)
		}
	}
}

func TestSimulatedProducesRefills(t *testing.T) {
	sim := NewSimulated(7)
	ctx := context.Background()

	prev, err := sim.ReadGauge(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refills := 0
	for i := 0; i < 500; i++ {
		sample, err := sim.ReadGauge(ctx, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sample.OilLevel.Cmp(prev.OilLevel) > 0 {
			refills++
		}
		prev = sample
	}

	if refills == 0 {
		t.Fatal("a long run should include at least one refill")
	}
}

func TestSimulatedDeterministicPerSeed(t *testing.T) {
	ctx := context.Background()
	a := NewSimulated(99)
	b := NewSimulated(99)

	for i := 0; i < 50; i++ {
		sa, _ := a.ReadGauge(ctx, 1)
		sb, _ := b.ReadGauge(ctx, 1)
		if sa.OilLevel.Cmp(sb.OilLevel) != 0 {
			t.Fatalf("same seed must replay the same levels: %s vs %s", sa.OilLevel, sb.OilLevel)
		}
	}
}
