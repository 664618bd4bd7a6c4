package bruvo

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Check walks every pair of samples at a marker and reports the first pair
// whose ploidy difference would exceed the limits. It does no distance
// arithmetic, so callers can validate a whole data set before computing.
func Check(marker string, samples []string, genotypes map[string][]float64, lim Limits) error {
	for i := range samples {
		a := len(present(genotypes[samples[i]]))
		for j := 0; j < i; j++ {
			b := len(present(genotypes[samples[j]]))
			small, large := a, b
			if small > large {
				small, large = large, small
			}
			if err := lim.check(small, large); err != nil {
				return annotate(err, marker, samples[j], samples[i])
			}
		}
	}

	return nil
}

// MarkerMatrix computes the Bruvo distance between every pair of samples at
// one marker. Row and column i correspond to samples[i]. Each unordered pair
// is computed once; the diagonal is zero.
func MarkerMatrix(marker string, samples []string, genotypes map[string][]float64, unit float64, lim Limits) (*mat.SymDense, error) {
	n := len(samples)
	if n == 0 {
		return nil, errors.New("bruvo: no samples")
	}
	if !(unit > 0) {
		return nil, errors.New("bruvo: repeat unit must be positive")
	}

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			d, err := GenotypeDistance(genotypes[samples[i]], genotypes[samples[j]], unit, lim)
			if err != nil {
				return nil, annotate(err, marker, samples[j], samples[i])
			}
			out.SetSym(i, j, d)
		}
	}

	return out, nil
}

func annotate(err error, marker, a, b string) error {
	var ce *CombinatorialLimitError
	if errors.As(err, &ce) {
		ce.Marker, ce.SampleA, ce.SampleB = marker, a, b
	}
	return err
}
