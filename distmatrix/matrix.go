// Package distmatrix holds named, symmetric sample-by-sample distance
// matrices: summing per-marker matrices, extracting the lower triangle that
// tree building consumes, and reading and writing the plain text dump.
package distmatrix

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	Names []string
	*mat.SymDense
}

// New returns a zero matrix over names.
func New(names []string) (*Matrix, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("distmatrix: no names")
	}
	return &Matrix{
		Names:    append([]string(nil), names...),
		SymDense: mat.NewSymDense(len(names), nil),
	}, nil
}

// Sum adds the per-marker matrices elementwise. Every part must be
// len(names) square.
func Sum(names []string, parts ...*mat.SymDense) (*Matrix, error) {
	out, err := New(names)
	if err != nil {
		return nil, err
	}

	for k, p := range parts {
		if n := p.Symmetric(); n != len(names) {
			return nil, fmt.Errorf("distmatrix: part %d has %d rows, expected %d", k, n, len(names))
		}
		out.SymDense.AddSym(out.SymDense, p)
	}

	return out, nil
}

// Len is the number of samples.
func (m *Matrix) Len() int {
	return len(m.Names)
}

// LowerTriangle returns row i with its first i+1 entries, diagonal
// included.
func (m *Matrix) LowerTriangle() [][]float64 {
	n := m.Len()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, i+1)
		for j := 0; j <= i; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// FromLowerTriangle rebuilds a matrix from the output of LowerTriangle.
func FromLowerTriangle(names []string, rows [][]float64) (*Matrix, error) {
	if len(rows) != len(names) {
		return nil, fmt.Errorf("distmatrix: %d names but %d rows", len(names), len(rows))
	}

	out, err := New(names)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if len(row) != i+1 {
			return nil, fmt.Errorf("distmatrix: row %d (%s) has %d values, expected %d", i, names[i], len(row), i+1)
		}
		for j, v := range row {
			out.SetSym(i, j, v)
		}
	}

	return out, out.Validate()
}

// NewickReserved holds the characters that can't appear in an unquoted
// Newick label.
const NewickReserved = "(),:;[]'"

// Validate checks that the matrix can stand for distances: finite,
// non-negative, zero diagonal and unique non-empty names that Newick can
// carry.
func (m *Matrix) Validate() error {
	seen := make(map[string]struct{}, m.Len())
	for _, name := range m.Names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("distmatrix: empty sample name")
		}
		if strings.ContainsAny(name, NewickReserved) {
			return fmt.Errorf("distmatrix: sample name %q contains one of %s, which Newick reserves", name, NewickReserved)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("distmatrix: sample %q appears more than once", name)
		}
		seen[name] = struct{}{}
	}

	for i := 0; i < m.Len(); i++ {
		for j := 0; j <= i; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("distmatrix: %s vs %s has invalid distance %v", m.Names[i], m.Names[j], v)
			}
			if i == j && v != 0 {
				return fmt.Errorf("distmatrix: %s has non-zero self distance %v", m.Names[i], v)
			}
		}
	}

	return nil
}

// Pair is one off-diagonal cell of the matrix.
type Pair struct {
	SampleA  string  `csv:"sample_a"`
	SampleB  string  `csv:"sample_b"`
	Distance float64 `csv:"distance"`
}

// Pairs lists every unordered pair once, in row-major lower triangle order.
func (m *Matrix) Pairs() []Pair {
	n := m.Len()
	out := make([]Pair, 0, n*(n-1)/2)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			out = append(out, Pair{SampleA: m.Names[j], SampleB: m.Names[i], Distance: m.At(i, j)})
		}
	}
	return out
}
