// Package summary describes a computed distance matrix: per-marker and
// overall distance statistics plus a text histogram of the pairwise totals.
package summary

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/abi-sauce/treemaker/distmatrix"
	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/runningvariance"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Total is the name used for the row describing the summed matrix.
const Total = "total"

type Stats struct {
	Marker     string
	RepeatUnit float64 // 0 for the total
	Pairs      int

	Mean   float64
	SD     float64
	Min    float64
	Median float64
	P90    float64
	Max    float64

	// Correlation of this marker's pairwise distances with the total.
	// NaN when either side has no variance.
	Correlation float64
}

type Report struct {
	Samples int
	Markers []Stats
	Total   Stats

	// Distances holds the upper triangle of the total matrix, row by row.
	Distances []float64
}

// New summarizes total and its per-marker parts. units may be nil.
func New(total *distmatrix.Matrix, perMarker map[string]*distmatrix.Matrix, units map[string]float64) (*Report, error) {
	if total == nil {
		return nil, fmt.Errorf("summary: no matrix")
	}

	r := &Report{
		Samples:   total.Len(),
		Distances: upper(total),
	}

	var err error
	if r.Total, err = describe(Total, r.Distances, r.Distances); err != nil {
		return nil, err
	}

	markers := make([]string, 0, len(perMarker))
	for marker := range perMarker {
		markers = append(markers, marker)
	}
	sort.Strings(markers)

	for _, marker := range markers {
		m := perMarker[marker]
		if m.Len() != total.Len() {
			return nil, fmt.Errorf("summary: marker %s has %d samples, total has %d", marker, m.Len(), total.Len())
		}

		s, err := describe(marker, upper(m), r.Distances)
		if err != nil {
			return nil, err
		}
		s.RepeatUnit = units[marker]
		r.Markers = append(r.Markers, s)
	}

	return r, nil
}

func upper(m *distmatrix.Matrix) []float64 {
	n := m.Len()
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

func describe(name string, values, total []float64) (Stats, error) {
	s := Stats{Marker: name, Pairs: len(values), Correlation: math.NaN()}
	if len(values) == 0 {
		return s, nil
	}

	rs := runningvariance.NewRunningStat()
	for _, v := range values {
		rs.Push(v)
	}
	s.Mean = rs.Mean()
	if len(values) > 1 {
		s.SD = rs.StandardDeviation()
	}

	data := stats.Float64Data(values)

	var err error
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.P90, err = data.Percentile(90); err != nil {
		return s, err
	}

	if len(values) > 1 && s.Max > s.Min {
		if lo, hi := span(total); hi > lo {
			s.Correlation = stat.Correlation(values, total, nil)
		}
	}

	return s, nil
}

func span(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}

// Write prints the statistics as a tab-delimited table, followed by a
// histogram of the total distances when there is more than one pair.
func (r *Report) Write(w io.Writer, bins, width int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "samples\t%d\n", r.Samples)
	fmt.Fprintln(bw, "marker\trepeat\tpairs\tmean\tsd\tmin\tmedian\tp90\tmax\tcorrelation")
	for _, s := range append(append([]Stats(nil), r.Markers...), r.Total) {
		repeat := "NA"
		if s.RepeatUnit > 0 {
			repeat = fmt.Sprintf("%g", s.RepeatUnit)
		}
		corr := "NA"
		if !math.IsNaN(s.Correlation) {
			corr = fmt.Sprintf("%.3f", s.Correlation)
		}
		fmt.Fprintf(bw, "%s\t%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			s.Marker, repeat, s.Pairs, s.Mean, s.SD, s.Min, s.Median, s.P90, s.Max, corr)
	}

	if len(r.Distances) > 1 && bins > 0 {
		fmt.Fprintln(bw)
		hist := histogram.Hist(bins, r.Distances)
		if err := histogram.Fprint(bw, hist, histogram.Linear(width)); err != nil {
			return err
		}
	}

	return bw.Flush()
}
