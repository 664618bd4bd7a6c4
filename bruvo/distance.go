// Package bruvo implements Bruvo's distance between microsatellite
// genotypes of possibly different ploidy. Alleles are fragment sizes in base
// pairs; differences are converted to mutation steps using the marker's
// repeat unit.
//
// Bruvo R, Michiels NK, D'Souza TG, Schulenburg H. A simple method for the
// calculation of microsatellite genotype distances irrespective of ploidy
// level. Mol Ecol. 2004;13(7):2101-2106.
package bruvo

import (
	"math"

	"github.com/BenLubar/memoize"
)

// Missing alleles carry a value of 1 (or less) and are never compared.
const missing = 1.0

var memoizedStepDistance = memoize.Memoize(stepDistance)

// StepDistance is the distance between two alleles that are d mutation
// steps apart: 1 - 2^-d. Safe for concurrent use.
func StepDistance(d int) float64 {
	return memoizedStepDistance.(func(int) float64)(d)
}

func stepDistance(d int) float64 {
	if d < 0 {
		d = -d
	}
	return 1 - math.Pow(2, -float64(d))
}

// MaxSteps caps RepeatSteps. At 64 steps 1 - 2^-d is already 1 in float64.
const MaxSteps = 64

// RepeatSteps converts the base pair difference between two alleles into a
// number of repeat units, rounding to the nearest multiple of unit. Halves
// round to even. The result is capped at MaxSteps, which also covers
// differences that are huge relative to a tiny unit.
func RepeatSteps(a, b, unit float64) int {
	steps := math.RoundToEven(math.Abs(a-b) / unit)
	if !(steps < MaxSteps) {
		return MaxSteps
	}
	return int(steps)
}

// AlleleDistance is the Bruvo distance between two single alleles.
func AlleleDistance(a, b, unit float64) float64 {
	return StepDistance(RepeatSteps(a, b, unit))
}

// positional sums the allele distances of two equal-length genotypes, pairing
// alleles by position.
func positional(x, y []float64, unit float64) float64 {
	sum := 0.0
	for i := range x {
		sum += AlleleDistance(x[i], y[i], unit)
	}
	return sum
}

func present(alleles []float64) []float64 {
	out := make([]float64, 0, len(alleles))
	for _, v := range alleles {
		if v > missing {
			out = append(out, v)
		}
	}
	return out
}

// GenotypeDistance returns Bruvo's distance in [0, 1] between two genotypes
// at a marker with the given repeat unit. Alleles are expected in descending
// order; missing alleles are dropped before comparing.
//
// Equal ploidy pairs alleles by position. Unequal ploidy pads the smaller
// genotype to the size of the larger one, once with every distinct multiset
// of its own alleles (genome addition) and once with every distinct multiset
// of the larger genotype's alleles (genome loss), and averages over all of
// those candidates.
func GenotypeDistance(x, y []float64, unit float64, lim Limits) (float64, error) {
	x, y = present(x), present(y)

	if len(x) == len(y) {
		if len(x) == 0 {
			return 0, nil
		}
		return positional(x, y, unit) / float64(len(x)), nil
	}

	small, large := x, y
	if len(small) > len(large) {
		small, large = large, small
	}

	if err := lim.check(len(small), len(large)); err != nil {
		return 0, err
	}

	candidates := Candidates(small, large)

	total := 0.0
	for _, c := range candidates {
		total += positional(c, large, unit)
	}

	return total / float64(len(candidates)) / float64(len(large)), nil
}
