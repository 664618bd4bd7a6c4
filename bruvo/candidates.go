package bruvo

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// Limits bounds the enumeration done for unequal ploidy. A zero field means
// no bound.
type Limits struct {
	MaxPloidyDifference int
	MaxCandidates       int
}

// DefaultLimits comfortably covers octoploids with a fully missing marker.
func DefaultLimits() Limits {
	return Limits{
		MaxPloidyDifference: 8,
		MaxCandidates:       100000,
	}
}

// CombinatorialLimitError is returned, before any enumeration happens, when
// padding a genotype would exceed the configured Limits.
type CombinatorialLimitError struct {
	Marker     string
	SampleA    string
	SampleB    string
	Smaller    int
	Larger     int
	Candidates float64
	Limits     Limits
}

func (e *CombinatorialLimitError) Error() string {
	where := ""
	if e.Marker != "" {
		where = fmt.Sprintf("marker %s, samples %s and %s: ", e.Marker, e.SampleA, e.SampleB)
	}
	if e.Limits.MaxPloidyDifference > 0 && e.Larger-e.Smaller > e.Limits.MaxPloidyDifference {
		return fmt.Sprintf("%sploidy %d vs %d differs by more than %d", where, e.Smaller, e.Larger, e.Limits.MaxPloidyDifference)
	}
	return fmt.Sprintf("%sploidy %d vs %d needs %.0f candidate genotypes (limit %d)", where, e.Smaller, e.Larger, e.Candidates, e.Limits.MaxCandidates)
}

// CandidateCount is the number of padded genotypes that Candidates can
// produce before duplicates are removed.
func CandidateCount(smaller, larger int) float64 {
	k := larger - smaller
	if k <= 0 {
		return 1
	}

	n := 0.0
	if smaller > 0 {
		n += multisets(smaller, k)
	}
	n += multisets(larger, k)

	return n
}

// multisets counts the multisets of size k drawn from n items.
func multisets(n, k int) float64 {
	return combin.GeneralizedBinomial(float64(n+k-1), float64(k))
}

func (l Limits) check(smaller, larger int) error {
	if l.MaxPloidyDifference > 0 && larger-smaller > l.MaxPloidyDifference {
		return &CombinatorialLimitError{Smaller: smaller, Larger: larger, Candidates: CandidateCount(smaller, larger), Limits: l}
	}
	if count := CandidateCount(smaller, larger); l.MaxCandidates > 0 && count > float64(l.MaxCandidates) {
		return &CombinatorialLimitError{Smaller: smaller, Larger: larger, Candidates: count, Limits: l}
	}
	return nil
}

// Candidates pads small up to the length of large. Genome addition
// candidates (padding drawn from small) come first, then genome loss
// candidates (padding drawn from large). Duplicates are removed within each
// group, but not across groups, so a padding that both models produce is
// counted once per model.
func Candidates(small, large []float64) [][]float64 {
	k := len(large) - len(small)
	if k <= 0 {
		return [][]float64{append([]float64(nil), small...)}
	}

	out := make([][]float64, 0, int(CandidateCount(len(small), len(large))))
	out = append(out, pad(small, small, k)...)
	out = append(out, pad(small, large, k)...)

	return out
}

// pad appends every distinct multiset of size k drawn from pool to base.
// Multisets are enumerated as k-combinations of n+k-1 positions (stars and
// bars): position c[i]-i of a sorted combination is an index into pool.
func pad(base, pool []float64, k int) [][]float64 {
	n := len(pool)
	if n == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	out := make([][]float64, 0)

	gen := combin.NewCombinationGenerator(n+k-1, k)
	c := make([]int, k)
	for gen.Next() {
		gen.Combination(c)

		candidate := make([]float64, 0, len(base)+k)
		candidate = append(candidate, base...)
		for i, pos := range c {
			candidate = append(candidate, pool[pos-i])
		}

		key := keyOf(candidate[len(base):])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, candidate)
	}

	return out
}

func keyOf(v []float64) string {
	b := strings.Builder{}
	for i, x := range v {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}
