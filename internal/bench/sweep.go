package bench

import (
	"context"
	"errors"
	"math"
	"slices"
	"sort"

	g2p "github.com/jamesainslie/go-g2p"
	"github.com/jamesainslie/go-g2p/engine"
)

// SweepResult holds variant statistics for one mass threshold.
type SweepResult struct {
	Mass         float64
	Coverage     float64 // share of words with a reference among the variants
	MeanVariants float64
	Failures     int
}

// SweepMasses returns thresholds from min to max inclusive in steps of step.
func SweepMasses(min, max, step float64) []float64 {
	if step <= 0 || max < min {
		return nil
	}
	n := int(math.Floor((max-min)/step + 1e-9))
	masses := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		masses = append(masses, min+float64(i)*step)
	}
	return masses
}

// Sweep enumerates variants for every corpus entry at each mass threshold
// and returns results sorted by coverage, fewest variants first on ties.
// number caps the variants per word; zero means no cap.
func Sweep(ctx context.Context, t engine.Translator, c *Corpus, cfg Config, masses []float64, number int) ([]SweepResult, error) {
	var results []SweepResult

	for _, mass := range masses {
		r := SweepResult{Mass: mass}
		covered, variants := 0, 0

		for _, e := range c.Entries {
			vs, err := g2p.SelectVariants(ctx, t, e.Graphemes, g2p.Limits{Mass: mass, Number: number})
			if errors.Is(err, engine.ErrTranslationFailure) {
				r.Failures++
				continue
			}
			if err != nil {
				return nil, err
			}
			variants += len(vs)
			if coveredBy(vs, e.References, cfg) {
				covered++
			}
		}

		if n := len(c.Entries); n > 0 {
			r.Coverage = float64(covered) / float64(n)
			r.MeanVariants = float64(variants) / float64(n)
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Coverage != results[j].Coverage {
			return results[i].Coverage > results[j].Coverage
		}
		return results[i].MeanVariants < results[j].MeanVariants
	})

	return results, nil
}

func coveredBy(vs []g2p.Variant, refs [][]string, cfg Config) bool {
	for _, v := range vs {
		h := filter(v.Phonemes, cfg)
		for _, ref := range refs {
			if slices.Equal(filter(ref, cfg), h) {
				return true
			}
		}
	}
	return false
}
