package summary

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/abi-sauce/treemaker/distmatrix"
)

func mustMatrix(t *testing.T, lower [][]float64) *distmatrix.Matrix {
	t.Helper()

	m, err := distmatrix.FromLowerTriangle([]string{"A", "B", "C"}, lower)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNew(t *testing.T) {
	x := mustMatrix(t, [][]float64{{0}, {0.2, 0}, {0.4, 0.6, 0}})
	y := mustMatrix(t, [][]float64{{0}, {0.5, 0}, {0.5, 0.5, 0}})
	total := mustMatrix(t, [][]float64{{0}, {0.7, 0}, {0.9, 1.1, 0}})

	r, err := New(total, map[string]*distmatrix.Matrix{"y": y, "x": x}, map[string]float64{"x": 3, "y": 4})
	if err != nil {
		t.Fatal(err)
	}

	if r.Samples != 3 || len(r.Distances) != 3 {
		t.Fatalf("got %d samples and %d distances", r.Samples, len(r.Distances))
	}
	if len(r.Markers) != 2 || r.Markers[0].Marker != "x" || r.Markers[1].Marker != "y" {
		t.Fatalf("markers should be sorted, got %+v", r.Markers)
	}

	xs := r.Markers[0]
	for _, v := range []struct {
		name      string
		got, want float64
	}{
		{"mean", xs.Mean, 0.4},
		{"sd", xs.SD, 0.2},
		{"min", xs.Min, 0.2},
		{"median", xs.Median, 0.4},
		{"max", xs.Max, 0.6},
		{"repeat", xs.RepeatUnit, 3},
		{"correlation", xs.Correlation, 1},
		{"total mean", r.Total.Mean, 0.9},
	} {
		if math.Abs(v.got-v.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", v.name, v.got, v.want)
		}
	}

	// Constant distances have no correlation
	if !math.IsNaN(r.Markers[1].Correlation) {
		t.Errorf("expected NaN correlation, got %v", r.Markers[1].Correlation)
	}
}

func TestNewRejectsMismatch(t *testing.T) {
	total := mustMatrix(t, [][]float64{{0}, {0.7, 0}, {0.9, 1.1, 0}})
	small, err := distmatrix.FromLowerTriangle([]string{"A"}, [][]float64{{0}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(total, map[string]*distmatrix.Matrix{"x": small}, nil); err == nil {
		t.Fatal("expected a size mismatch error")
	}
	if _, err := New(nil, nil, nil); err == nil {
		t.Fatal("expected an error without a matrix")
	}
}

func TestWrite(t *testing.T) {
	total := mustMatrix(t, [][]float64{{0}, {0.7, 0}, {0.9, 1.1, 0}})
	r, err := New(total, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	var b bytes.Buffer
	if err := r.Write(&b, 5, 20); err != nil {
		t.Fatal(err)
	}

	out := b.String()
	if !strings.HasPrefix(out, "samples\t3\nmarker\trepeat\t") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "total\tNA\t3\t0.9000\t") {
		t.Fatalf("missing total row:\n%s", out)
	}
}
