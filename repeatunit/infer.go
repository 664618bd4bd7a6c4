// Package repeatunit estimates the length of the repeated motif of each
// microsatellite marker from the spacing of the alleles observed in each
// sample.
package repeatunit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultTolerance absorbs floating point noise when comparing allele
// spacings. Sizes called by fragment analysis software are usually given to
// 2 decimals, so anything finer than this is noise.
const DefaultTolerance = 1e-6

// InferenceError means that no sample had at least two evenly spaced alleles
// at the marker, so there is nothing to estimate the repeat unit from.
type InferenceError struct {
	Marker string
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("marker %s: no sample has 2 or more evenly spaced alleles to infer a repeat unit from", e.Marker)
}

// CommonDifference returns the spacing between consecutive alleles if they
// are all evenly spaced. It reports false when there are fewer than 2
// alleles, when the spacing is uneven, or when alleles are duplicated.
func CommonDifference(alleles []float64, tol float64) (float64, bool) {
	if len(alleles) < 2 {
		return 0, false
	}

	sorted := append([]float64(nil), alleles...)
	sort.Float64s(sorted)

	diff := sorted[1] - sorted[0]
	if diff <= tol {
		return 0, false
	}

	for i := 2; i < len(sorted); i++ {
		if math.Abs((sorted[i]-sorted[i-1])-diff) > tol {
			return 0, false
		}
	}

	return diff, true
}

// Observations collects each sample's common difference at one marker,
// skipping samples that don't have one. Samples are visited in sorted order
// so the output is deterministic.
func Observations(genotypes map[string][]float64, tol float64) []float64 {
	names := make([]string, 0, len(genotypes))
	for name := range genotypes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]float64, 0, len(names))
	for _, name := range names {
		if d, ok := CommonDifference(genotypes[name], tol); ok {
			out = append(out, d)
		}
	}

	return out
}

// Infer picks the most frequently observed common difference at a marker.
// When several values are equally frequent, the smallest wins.
func Infer(marker string, genotypes map[string][]float64, tol float64) (float64, error) {
	obs := Observations(genotypes, tol)
	if len(obs) == 0 {
		return 0, &InferenceError{Marker: marker}
	}

	return mostFrequent(obs, tol), nil
}

// mostFrequent snaps observations that are within tol of each other onto a
// single value, then returns the smallest value with the modal count.
func mostFrequent(obs []float64, tol float64) float64 {
	sorted := append([]float64(nil), obs...)
	sort.Float64s(sorted)

	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] <= tol {
			sorted[i] = sorted[i-1]
		}
	}

	// stat.Mode breaks ties arbitrarily, so only its count is used.
	_, maxCount := stat.Mode(sorted, nil)

	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if float64(j-i) == maxCount {
			return sorted[i]
		}
		i = j
	}

	return sorted[0]
}
