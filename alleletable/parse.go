package alleletable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// reservedNameChars would change the meaning of a Newick tree if they
// appeared in a leaf label.
const reservedNameChars = "(),:;[]'"

type Options struct {
	// Delimiter separates the fields of each row. Zero means tab.
	Delimiter rune

	// AssumeLegacyHeader reads every line as a sample row laid out as
	// LegacyHeader, for tables pasted without a header.
	AssumeLegacyHeader bool
}

// Parse is a convenience wrapper around ParseReader for pasted text.
func Parse(text string, opts Options) (*Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	return ParseReader(strings.NewReader(text), opts)
}

// ParseReader reads a header line followed by one row per sample. Every slot
// value is validated before anything is returned, so a table is either fully
// valid or rejected with a *ParseError.
func ParseReader(in io.Reader, opts Options) (*Table, error) {
	r := csv.NewReader(in)
	r.Comma = '\t'
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	var markers []Marker
	var colIndex map[string]int

	out := &Table{}
	position := make(map[string]int) // sample name => index in out.Samples

	useHeader := func(h []string, line int) error {
		var err error
		header = h
		if markers, err = discoverSchema(header, line); err != nil {
			return err
		}
		colIndex = make(map[string]int, len(header))
		for k, name := range header {
			colIndex[strings.TrimSpace(name)] = k
		}
		out.Markers = markers
		return nil
	}

	if opts.AssumeLegacyHeader {
		if err := useHeader(LegacyHeader(), 0); err != nil {
			return nil, err
		}
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &ParseError{Line: line, Msg: err.Error()}
		}
		line, _ := r.FieldPos(0)

		if isBlank(row) {
			continue
		}

		if header == nil {
			if err := useHeader(row, line); err != nil {
				return nil, err
			}
			continue
		}

		if len(row) != len(header) {
			return nil, &ParseError{
				Line: line,
				Msg:  fmt.Sprintf("expected %d fields, got %d", len(header), len(row)),
			}
		}

		rec := Record{
			Name:    strings.TrimSpace(row[0]),
			Line:    line,
			Alleles: make(map[string]float64, len(header)-1),
		}

		for _, m := range markers {
			for _, col := range m.Columns {
				v, err := parseSlot(row[colIndex[col]])
				if err != nil {
					return nil, &ParseError{Line: line, Column: col, Value: row[colIndex[col]], Msg: err.Error()}
				}
				rec.Alleles[col] = v
			}
		}

		if strings.ContainsAny(rec.Name, reservedNameChars) {
			return nil, &ParseError{
				Line:   line,
				Column: strings.TrimSpace(header[0]),
				Value:  rec.Name,
				Msg:    fmt.Sprintf("sample names can't contain any of %s", reservedNameChars),
			}
		}

		out.Records = append(out.Records, rec)
		if rec.Name == "" {
			continue
		}

		if _, seen := position[rec.Name]; seen {
			out.Warnings = append(out.Warnings, fmt.Sprintf("sample %q appears more than once; keeping line %d", rec.Name, line))
			continue
		}
		position[rec.Name] = len(out.Samples)
		out.Samples = append(out.Samples, rec.Name)
	}

	if header == nil || len(out.Samples) == 0 {
		return nil, ErrEmpty
	}

	return out, nil
}

// parseSlot converts one allele cell. Empty cells and non-positive values
// are missing alleles. Anything that isn't a number is rejected.
func parseSlot(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Sentinel, nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	if v <= 0 {
		return Sentinel, nil
	}

	return v, nil
}

// discoverSchema groups the header's {marker}-{slot} columns by marker. The
// first column is always the sample name, whatever it is called.
func discoverSchema(header []string, line int) ([]Marker, error) {
	if len(header) < 2 {
		return nil, &ParseError{Line: line, Msg: "header needs a name column and at least one {marker}-{slot} column"}
	}

	type slot struct {
		n   int
		col string
	}

	order := make([]string, 0)
	slots := make(map[string][]slot)
	seen := make(map[string]struct{})

	for _, raw := range header[1:] {
		col := strings.TrimSpace(raw)
		if _, dup := seen[col]; dup {
			return nil, &ParseError{Line: line, Column: col, Value: col, Msg: "duplicate column"}
		}
		seen[col] = struct{}{}

		cut := strings.LastIndex(col, "-")
		if cut <= 0 || cut == len(col)-1 {
			return nil, &ParseError{Line: line, Column: col, Value: col, Msg: "column name is not {marker}-{slot}"}
		}
		marker, slotText := col[:cut], col[cut+1:]
		n, err := strconv.Atoi(slotText)
		if err != nil || n < 1 {
			return nil, &ParseError{Line: line, Column: col, Value: slotText, Msg: "slot is not a positive integer"}
		}

		if _, exists := slots[marker]; !exists {
			order = append(order, marker)
		}
		slots[marker] = append(slots[marker], slot{n: n, col: col})
	}

	markers := make([]Marker, 0, len(order))
	for _, name := range order {
		s := slots[name]
		sort.Slice(s, func(i, j int) bool { return s[i].n < s[j].n })

		m := Marker{Name: name, Columns: make([]string, 0, len(s))}
		for k, v := range s {
			if k > 0 && s[k-1].n == v.n {
				return nil, &ParseError{Line: line, Column: v.col, Value: v.col, Msg: "slot number repeated for marker"}
			}
			m.Columns = append(m.Columns, v.col)
		}
		markers = append(markers, m)
	}

	return markers, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
