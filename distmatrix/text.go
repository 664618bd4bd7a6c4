package distmatrix

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

type Layout int

const (
	// LayoutLower writes row i with i+1 values, diagonal included.
	LayoutLower Layout = iota

	// LayoutSquare writes every row in full, like a square PHYLIP matrix.
	LayoutSquare
)

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "", "lower":
		return LayoutLower, nil
	case "square", "full":
		return LayoutSquare, nil
	}
	return LayoutLower, fmt.Errorf("unknown matrix layout %q (valid: lower, square)", s)
}

// TextOptions controls how values are printed. Precision is the number of
// decimals; a negative value prints the shortest exact representation.
type TextOptions struct {
	Layout    Layout
	Precision int
}

func DefaultTextOptions() TextOptions {
	return TextOptions{Layout: LayoutLower, Precision: -1}
}

// SafeName replaces whitespace with underscores so that names survive
// whitespace-delimited consumers.
func SafeName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// WriteText writes the sample count on its own line, then one tab-delimited
// row per sample: its name followed by its distances.
func (m *Matrix) WriteText(w io.Writer, opts TextOptions) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d\n", m.Len())
	for i, name := range m.Names {
		bw.WriteString(SafeName(name))

		last := i
		if opts.Layout == LayoutSquare {
			last = m.Len() - 1
		}
		for j := 0; j <= last; j++ {
			bw.WriteByte('\t')
			bw.WriteString(strconv.FormatFloat(m.At(i, j), 'f', opts.Precision, 64))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// Text is WriteText into a string.
func (m *Matrix) Text(opts TextOptions) string {
	var b bytes.Buffer
	m.WriteText(&b, opts)
	return b.String()
}

// ReadText parses the output of WriteText in either layout. The layout is
// detected from the length of the first row.
func ReadText(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	lineNo := 0
	next := func() (string, bool) {
		for scanner.Scan() {
			lineNo++
			if line := strings.TrimRight(scanner.Text(), "\r"); strings.TrimSpace(line) != "" {
				return line, true
			}
		}
		return "", false
	}

	first, ok := next()
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, pfx.Err(err)
		}
		return nil, fmt.Errorf("distmatrix: empty input")
	}
	n, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("distmatrix: line %d: expected a positive sample count, got %q", lineNo, first)
	}

	names := make([]string, 0, n)
	rows := make([][]float64, 0, n)
	square := false

	for i := 0; i < n; i++ {
		line, ok := next()
		if !ok {
			if err := scanner.Err(); err != nil {
				return nil, pfx.Err(err)
			}
			return nil, fmt.Errorf("distmatrix: expected %d rows, got %d", n, i)
		}

		fields := strings.Fields(line)
		if i == 0 && len(fields)-1 == n && n > 1 {
			square = true
		}

		want := i + 1
		if square {
			want = n
		}
		if len(fields)-1 != want {
			return nil, fmt.Errorf("distmatrix: line %d: expected %d values, got %d", lineNo, want, len(fields)-1)
		}

		row := make([]float64, len(fields)-1)
		for k, f := range fields[1:] {
			if row[k], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, fmt.Errorf("distmatrix: line %d: value %q is not a number", lineNo, f)
			}
		}

		names = append(names, fields[0])
		rows = append(rows, row)
	}

	if square {
		for i := range rows {
			for j := 0; j < i; j++ {
				if rows[i][j] != rows[j][i] {
					return nil, fmt.Errorf("distmatrix: square matrix is not symmetric at %s/%s", names[i], names[j])
				}
			}
		}

		// Only after every pair has been compared
		for i := range rows {
			rows[i] = rows[i][:i+1]
		}
	}

	return FromLowerTriangle(names, rows)
}

// WritePairs writes a tab-delimited sample_a, sample_b, distance table.
func (m *Matrix) WritePairs(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	pairs := m.Pairs()
	if err := gocsv.MarshalCSV(&pairs, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}

	cw.Flush()
	return cw.Error()
}
