// Package alleletable parses fragment-size tables, where each row is one
// sample and each marker contributes a fixed number of allele slot columns
// named {marker}-{slot}.
package alleletable

import (
	"sort"
)

// Sentinel is the value stored for an allele slot that was not observed.
// Real microsatellite fragments are always larger than this.
const Sentinel = 1.0

type Marker struct {
	Name string

	// Columns holds the header names of this marker's slots, ordered by slot
	// number.
	Columns []string
}

type Record struct {
	Name    string
	Line    int
	Alleles map[string]float64 // column name => fragment size
}

type Table struct {
	Markers []Marker
	Records []Record

	// Samples are the non-empty names, in the order they were encountered.
	// Duplicates are collapsed onto their last occurrence.
	Samples []string

	Warnings []string
}

// MarkerNames returns the marker names sorted alphabetically. This is the
// order in which markers are processed downstream.
func (t *Table) MarkerNames() []string {
	out := make([]string, 0, len(t.Markers))
	for _, m := range t.Markers {
		out = append(out, m.Name)
	}
	sort.Strings(out)

	return out
}

func (t *Table) marker(name string) (Marker, bool) {
	for _, m := range t.Markers {
		if m.Name == name {
			return m, true
		}
	}

	return Marker{}, false
}

// SortedSamples returns a sorted copy of the sample list.
func (t *Table) SortedSamples() []string {
	out := append([]string(nil), t.Samples...)
	sort.Strings(out)
	return out
}

// Genotypes returns, for every named sample, the real alleles (> Sentinel) at
// the marker, sorted in descending order. Samples with no real alleles map to
// an empty, non-nil slice.
func (t *Table) Genotypes(marker string) map[string][]float64 {
	m, ok := t.marker(marker)
	if !ok {
		return nil
	}

	// Index the last record for each name, since that is the one that
	// survived deduplication.
	last := make(map[string]int, len(t.Records))
	for i, rec := range t.Records {
		if rec.Name == "" {
			continue
		}
		last[rec.Name] = i
	}

	out := make(map[string][]float64, len(last))
	for name, idx := range last {
		out[name] = Genotype(t.Records[idx], m)
	}

	return out
}

// Genotype extracts the real alleles of one record at one marker, sorted in
// descending order.
func Genotype(rec Record, m Marker) []float64 {
	alleles := make([]float64, 0, len(m.Columns))
	for _, col := range m.Columns {
		if v := rec.Alleles[col]; v > Sentinel {
			alleles = append(alleles, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(alleles)))

	return alleles
}
