package bench

import (
	"context"
	"math"
	"testing"
)

func TestSweepMasses(t *testing.T) {
	masses := SweepMasses(0.5, 1.0, 0.1)

	want := []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	if len(masses) != len(want) {
		t.Errorf("got %d masses, want %d", len(masses), len(want))
		t.Logf("got: %v", masses)
		return
	}

	for i := range want {
		if math.Abs(masses[i]-want[i]) > 1e-9 {
			t.Errorf("mass[%d] = %v, want %v", i, masses[i], want[i])
		}
	}

	if got := SweepMasses(1, 0.5, 0.1); got != nil {
		t.Errorf("inverted range = %v, want nil", got)
	}
}

func TestSweep(t *testing.T) {
	gold := corpusFrom(t, "tomato t ah m aa t ow\nunknown ah n\n")
	tr := memoryFrom(t, `tomato t ah m ey t ow
tomato t ah m ey t ow
tomato t ah m ey t ow
tomato t ah m aa t ow
`)

	results, err := Sweep(context.Background(), tr, gold, DefaultConfig(), []float64{0.5, 0.9}, 0)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	best := results[0]
	if best.Mass != 0.9 || best.Coverage != 0.5 || best.MeanVariants != 1.0 {
		t.Errorf("best = %+v, want mass 0.9, coverage 0.5, mean 1.0", best)
	}
	worst := results[1]
	if worst.Mass != 0.5 || worst.Coverage != 0 || worst.MeanVariants != 0.5 {
		t.Errorf("worst = %+v, want mass 0.5, coverage 0, mean 0.5", worst)
	}
	if best.Failures != 1 {
		t.Errorf("Failures = %d, want 1", best.Failures)
	}
}
