package distmatrix

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func symFromLower(rows [][]float64) *mat.SymDense {
	s := mat.NewSymDense(len(rows), nil)
	for i, row := range rows {
		for j, v := range row {
			s.SetSym(i, j, v)
		}
	}
	return s
}

func TestSumAndLowerTriangle(t *testing.T) {
	names := []string{"A", "B", "C"}
	a := symFromLower([][]float64{{0}, {0.2, 0}, {0.5, 0.3, 0}})
	b := symFromLower([][]float64{{0}, {0.1, 0}, {0.25, 1, 0}})

	m, err := Sum(names, a, b)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]float64{{0}, {0.3, 0}, {0.75, 1.3, 0}}
	got := m.LowerTriangle()
	for i := range want {
		if len(got[i]) != i+1 {
			t.Fatalf("row %d has %d entries", i, len(got[i]))
		}
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("(%d,%d): got %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}

	if m.At(0, 2) != m.At(2, 0) {
		t.Error("sum is not symmetric")
	}

	if _, err := Sum([]string{"A", "B"}, a); err == nil {
		t.Error("expected a dimension mismatch error")
	}
}

func TestTextRoundTrip(t *testing.T) {
	m, err := FromLowerTriangle(
		[]string{"plant one", "B", "C"},
		[][]float64{{0}, {0.1 + 0.2, 0}, {1.0 / 3.0, 2.75, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	for _, layout := range []Layout{LayoutLower, LayoutSquare} {
		opts := TextOptions{Layout: layout, Precision: -1}
		text := m.Text(opts)

		back, err := ReadText(strings.NewReader(text))
		if err != nil {
			t.Fatalf("layout %d: %v\n%s", layout, err, text)
		}

		if back.Names[0] != "plant_one" {
			t.Errorf("layout %d: expected whitespace in names to become underscores, got %q", layout, back.Names[0])
		}
		for i := 0; i < m.Len(); i++ {
			for j := 0; j < m.Len(); j++ {
				if back.At(i, j) != m.At(i, j) {
					t.Errorf("layout %d (%d,%d): got %v, want %v", layout, i, j, back.At(i, j), m.At(i, j))
				}
			}
		}

		if again := back.Text(opts); again != text {
			t.Errorf("layout %d: second serialization differs:\n%s\nvs\n%s", layout, again, text)
		}
	}
}

func TestWriteTextLowerFormat(t *testing.T) {
	m, err := FromLowerTriangle([]string{"A", "B"}, [][]float64{{0}, {0.5, 0}})
	if err != nil {
		t.Fatal(err)
	}

	got := m.Text(TextOptions{Layout: LayoutLower, Precision: 6})
	want := "2\nA\t0.000000\nB\t0.500000\t0.000000\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadTextErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"x\nA\t0\n",
		"2\nA\t0\n",
		"2\nA\t0\nB\t0.5\n",
		"2\nA\t0\nB\tabc\t0\n",
		"2\nA\t0\t0.5\nB\t0.4\t0\n",
		"2\nA\t1\nB\t0.5\t0\n",
		"2\nA\t0\nA\t0.5\t0\n",
		"2\nA:1\t0\nB\t0.5\t0\n",
		"3\nA\t0\t0.5\t0.25\nB\t0.5\t0\t1\nC\t0.25\t0.9\t0\n",
	} {
		if _, err := ReadText(strings.NewReader(input)); err == nil {
			t.Errorf("expected an error for %q", input)
		}
	}
}

func TestWritePairs(t *testing.T) {
	m, err := FromLowerTriangle([]string{"A", "B", "C"}, [][]float64{{0}, {0.2, 0}, {0.5, 0.3, 0}})
	if err != nil {
		t.Fatal(err)
	}

	var b bytes.Buffer
	if err := m.WritePairs(&b); err != nil {
		t.Fatal(err)
	}

	want := "sample_a\tsample_b\tdistance\nA\tB\t0.2\nA\tC\t0.5\nB\tC\t0.3\n"
	if b.String() != want {
		t.Fatalf("got %q, want %q", b.String(), want)
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout("square"); err != nil || l != LayoutSquare {
		t.Errorf("got %v, %v", l, err)
	}
	if l, err := ParseLayout(""); err != nil || l != LayoutLower {
		t.Errorf("got %v, %v", l, err)
	}
	if _, err := ParseLayout("diagonal"); err == nil {
		t.Error("expected an error")
	}
}

func TestReadTextSquare(t *testing.T) {
	m, err := ReadText(strings.NewReader("3\nA\t0\t0.5\t0.25\nB\t0.5\t0\t1\nC\t0.25\t1\t0\n"))
	if err != nil {
		t.Fatal(err)
	}

	want := [][]float64{{0}, {0.5, 0}, {0.25, 1, 0}}
	got := m.LowerTriangle()
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("(%d,%d): got %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}
