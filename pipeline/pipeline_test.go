package pipeline

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/evolbioinfo/gotree/io/newick"
)

const sampleTable = "Name\tA-1\tA-2\tA-3\tB-1\tB-2\n" +
	"s3\t143\t140\t\t204\t200\n" +
	"s1\t143\t140\t\t204\t200\n" +
	"s2\t146\t143\t140\t208\t200\n" +
	"s4\t149\t149\t\t212\t208\n"

func TestRunProducesTree(t *testing.T) {
	res := Run(Request{Table: sampleTable, Options: DefaultOptions()})
	if res.Kind != KindOK {
		t.Fatalf("expected ok, got %s: %s", res.Kind, res.Message)
	}
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(res.Samples, []string{"s1", "s2", "s3", "s4"}) {
		t.Fatalf("samples: got %v", res.Samples)
	}
	if !reflect.DeepEqual(res.Markers, []string{"A", "B"}) {
		t.Fatalf("markers: got %v", res.Markers)
	}
	if res.RepeatUnits["A"] != 3 || res.RepeatUnits["B"] != 4 {
		t.Fatalf("repeat units: got %v", res.RepeatUnits)
	}

	n := res.Matrix.Len()
	for i := 0; i < n; i++ {
		if res.Matrix.At(i, i) != 0 {
			t.Errorf("diagonal (%d) is %v", i, res.Matrix.At(i, i))
		}
		for j := 0; j < n; j++ {
			v := res.Matrix.At(i, j)
			if v != res.Matrix.At(j, i) {
				t.Errorf("(%d,%d) is not symmetric", i, j)
			}
			if v < 0 || v > float64(len(res.Markers)) {
				t.Errorf("(%d,%d)=%v is out of range", i, j, v)
			}
		}
	}

	// s1 and s3 are identical
	if res.Matrix.At(0, 2) != 0 {
		t.Errorf("identical samples should be at distance 0, got %v", res.Matrix.At(0, 2))
	}

	// On marker A, [143 140] vs [146 143 140] with a repeat of 3
	if got := res.PerMarker["A"].At(0, 1); math.Abs(got-0.45) > 1e-12 {
		t.Errorf("marker A s1/s2: got %v, want 0.45", got)
	}

	parsed, err := newick.NewParser(strings.NewReader(res.Newick)).Parse()
	if err != nil {
		t.Fatalf("could not parse %q: %v", res.Newick, err)
	}
	if len(parsed.Tips()) != 4 {
		t.Fatalf("expected 4 leaves in %q", res.Newick)
	}

	if !strings.HasPrefix(res.MatrixText, "4\ns1\t0\n") {
		t.Fatalf("unexpected matrix text %q", res.MatrixText)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	req := Request{Table: sampleTable, Options: DefaultOptions()}

	a, b := Run(req), Run(req)
	if a.Newick != b.Newick || a.MatrixText != b.MatrixText {
		t.Fatalf("two runs differ:\n%s\n%s", a.Newick, b.Newick)
	}
}

func TestRunRowOrderDoesNotMatter(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(sampleTable), "\n")
	reversed := []string{lines[0]}
	for i := len(lines) - 1; i > 0; i-- {
		reversed = append(reversed, lines[i])
	}

	a := Run(Request{Table: sampleTable, Options: DefaultOptions()})
	b := Run(Request{Table: strings.Join(reversed, "\n"), Options: DefaultOptions()})
	if a.MatrixText != b.MatrixText {
		t.Fatalf("matrix depends on row order:\n%s\n%s", a.MatrixText, b.MatrixText)
	}
}

func TestRunErrorKinds(t *testing.T) {
	tight := DefaultOptions()
	tight.Limits.MaxCandidates = 1

	for _, v := range []struct {
		name  string
		table string
		opts  Options
		want  Kind
	}{
		{"empty", "", DefaultOptions(), KindEmpty},
		{"header only", "Name\tA-1\tA-2\n", DefaultOptions(), KindEmpty},
		{"not a number", "Name\tA-1\tA-2\ns1\t140\tabc\n", DefaultOptions(), KindParse},
		{"bad header", "Name\tA1\ns1\t140\n", DefaultOptions(), KindParse},
		{"newick syntax in a name", "Name\tA-1\tA-2\ns(1)\t140\t143\ns2\t143\t146\n", DefaultOptions(), KindParse},
		{"no repeat evidence", "Name\tA-1\tA-2\ns1\t140\t\ns2\t143\t\n", DefaultOptions(), KindInference},
		{"too many candidates", sampleTable, tight, KindCombinatorialLimit},
	} {
		res := Run(Request{Table: v.table, Options: v.opts})
		if res.Kind != v.want {
			t.Errorf("%s: got %s (%s), want %s", v.name, res.Kind, res.Message, v.want)
			continue
		}
		if res.Kind == KindEmpty {
			if res.Err() != nil {
				t.Errorf("%s: empty input is not an error", v.name)
			}
			continue
		}
		if res.Err() == nil || res.Message == "" {
			t.Errorf("%s: expected an error and a message", v.name)
		}
		if res.Matrix != nil || res.Tree != nil || res.Newick != "" {
			t.Errorf("%s: failed run left partial output", v.name)
		}
	}
}

func TestRepeatOverrides(t *testing.T) {
	opts := DefaultOptions()
	opts.RepeatOverrides = map[string]float64{"A": 1.5, "missing": 2}

	res := Run(Request{Table: sampleTable, Options: opts})
	if res.Kind != KindOK {
		t.Fatalf("got %s: %s", res.Kind, res.Message)
	}
	if res.RepeatUnits["A"] != 1.5 {
		t.Fatalf("override ignored: %v", res.RepeatUnits)
	}

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "missing") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning about the unknown marker, got %v", res.Warnings)
	}
}

func TestKindOfWrapped(t *testing.T) {
	if KindOf(nil) != KindOK {
		t.Error("nil should be ok")
	}
	if KindOf(errString("boom")) != KindInternal {
		t.Error("unknown errors should be internal")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
