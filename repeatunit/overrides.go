package repeatunit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/abi-sauce/treemaker/alleletable"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Override is one row of a repeat unit file: a marker name and the motif
// length to use for it instead of inferring one.
type Override struct {
	Marker string  `csv:"marker"`
	Repeat float64 `csv:"repeat"`
}

// ReadOverrides reads a tab-delimited file with a header of "marker" and
// "repeat".
func ReadOverrides(r io.Reader) (map[string]float64, error) {
	records := []*Override{}

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.LazyQuotes = true

	if err := gocsv.UnmarshalCSV(cr, &records); err != nil {
		return nil, pfx.Err(err)
	}

	out := make(map[string]float64, len(records))
	for _, rec := range records {
		marker := strings.TrimSpace(rec.Marker)
		if marker == "" {
			return nil, fmt.Errorf("repeat overrides: empty marker name")
		}
		if rec.Repeat <= 0 || math.IsInf(rec.Repeat, 0) || math.IsNaN(rec.Repeat) {
			return nil, fmt.Errorf("repeat overrides: marker %s has invalid repeat %v", marker, rec.Repeat)
		}
		if _, dup := out[marker]; dup {
			return nil, fmt.Errorf("repeat overrides: marker %s listed more than once", marker)
		}
		out[marker] = rec.Repeat
	}

	return out, nil
}

// InferAll returns a repeat unit for every marker in the table. Overrides
// are used as-is; every other marker is inferred. The first marker (in
// sorted order) that can't be inferred aborts with an *InferenceError.
func InferAll(tab *alleletable.Table, overrides map[string]float64, tol float64) (map[string]float64, error) {
	out := make(map[string]float64, len(tab.Markers))

	for _, marker := range tab.MarkerNames() {
		if v, exists := overrides[marker]; exists {
			out[marker] = v
			continue
		}

		v, err := Infer(marker, tab.Genotypes(marker), tol)
		if err != nil {
			return nil, err
		}
		out[marker] = v
	}

	return out, nil
}
