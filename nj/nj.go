// Package nj builds unrooted trees from distance matrices by neighbor
// joining (Saitou and Nei, 1987).
package nj

import (
	"fmt"
	"math"

	"github.com/abi-sauce/treemaker/distmatrix"
	"github.com/evolbioinfo/gotree/tree"
)

type Options struct {
	// Precision is the number of decimals kept on branch lengths in the
	// tree. Negative keeps full precision.
	Precision int
}

func DefaultOptions() Options {
	return Options{Precision: 6}
}

// Merge records one join. For the final join of the last two nodes, Parent
// is empty and Left is the node the tree is drawn from.
type Merge struct {
	Parent      string
	Left        string
	Right       string
	LeftLength  float64
	RightLength float64
}

type Tree struct {
	*tree.Tree

	Merges []Merge

	// Clamped counts branch lengths that came out negative and were set to
	// zero.
	Clamped int
}

// Build validates names and the lower triangular matrix (row i holds i+1
// values, diagonal included) and joins neighbors until one tree remains.
func Build(names []string, lower [][]float64, opts Options) (*Tree, error) {
	m, err := distmatrix.FromLowerTriangle(names, lower)
	if err != nil {
		return nil, err
	}

	return FromMatrix(m, opts)
}

// FromMatrix runs neighbor joining on an already validated matrix.
func FromMatrix(m *distmatrix.Matrix, opts Options) (*Tree, error) {
	n := m.Len()
	if n == 0 {
		return nil, fmt.Errorf("nj: empty matrix")
	}

	b := builder{
		t:    &Tree{Tree: tree.NewTree()},
		opts: opts,
	}

	// Working copy, shrunk as nodes are joined
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = m.At(i, j)
		}
	}

	nodes := make([]*tree.Node, n)
	labels := make([]string, n)
	seen := make(map[string]string, n)
	for i, name := range m.Names {
		labels[i] = distmatrix.SafeName(name)
		if prev, exists := seen[labels[i]]; exists {
			return nil, fmt.Errorf("nj: samples %q and %q have the same Newick label %q", prev, name, labels[i])
		}
		seen[labels[i]] = name
		nodes[i] = b.t.NewNode()
		nodes[i].SetName(labels[i])
	}

	switch n {
	case 1:
		b.t.SetRoot(nodes[0])
		return b.finish()
	case 2:
		root := b.t.NewNode()
		root.SetName("Inner")
		half := d[1][0] / 2
		b.join(root, "Inner", nodes[1], labels[1], half, nodes[0], labels[0], d[1][0]-half)
		b.t.SetRoot(root)
		return b.finish()
	}

	r := make([]float64, n)
	inner := 0
	var last *tree.Node
	var lastLabel string

	for len(d) > 2 {
		size := len(d)

		for i := 0; i < size; i++ {
			r[i] = 0
			for j := 0; j < size; j++ {
				r[i] += d[i][j]
			}
			r[i] /= float64(size - 2)
		}

		// First strict minimum, scanning the lower triangle row by row
		minI, minJ := 1, 0
		minQ := d[1][0] - r[1] - r[0]
		for i := 1; i < size; i++ {
			for j := 0; j < i; j++ {
				if q := d[i][j] - r[i] - r[j]; q < minQ {
					minQ, minI, minJ = q, i, j
				}
			}
		}

		dij := d[minI][minJ]
		li := (dij + r[minI] - r[minJ]) / 2
		lj := dij - li

		inner++
		lastLabel = fmt.Sprintf("Inner%d", inner)
		last = b.t.NewNode()
		last.SetName(lastLabel)
		b.join(last, lastLabel, nodes[minI], labels[minI], li, nodes[minJ], labels[minJ], lj)

		// The new node takes minJ's slot; minI is dropped
		for k := 0; k < size; k++ {
			if k == minI || k == minJ {
				continue
			}
			v := (d[minI][k] + d[minJ][k] - dij) / 2
			d[minJ][k], d[k][minJ] = v, v
		}
		d[minJ][minJ] = 0
		nodes[minJ], labels[minJ] = last, lastLabel

		d = removeIndex(d, minI)
		nodes = append(nodes[:minI], nodes[minI+1:]...)
		labels = append(labels[:minI], labels[minI+1:]...)
	}

	// The most recently created node is one of the two that remain. It
	// becomes the root and the other hangs off it.
	other, otherLabel := nodes[0], labels[0]
	if nodes[0] == last {
		other, otherLabel = nodes[1], labels[1]
	}
	length := b.length(d[1][0])
	e := b.t.ConnectNodes(last, other)
	e.SetLength(b.round(length))
	b.t.Merges = append(b.t.Merges, Merge{Left: lastLabel, Right: otherLabel, RightLength: length})
	b.t.SetRoot(last)

	return b.finish()
}

type builder struct {
	t    *Tree
	opts Options
}

func (b *builder) join(parent *tree.Node, parentLabel string, left *tree.Node, leftLabel string, leftLength float64, right *tree.Node, rightLabel string, rightLength float64) {
	leftLength, rightLength = b.length(leftLength), b.length(rightLength)

	e := b.t.ConnectNodes(parent, left)
	e.SetLength(b.round(leftLength))
	e = b.t.ConnectNodes(parent, right)
	e.SetLength(b.round(rightLength))

	b.t.Merges = append(b.t.Merges, Merge{
		Parent:      parentLabel,
		Left:        leftLabel,
		Right:       rightLabel,
		LeftLength:  leftLength,
		RightLength: rightLength,
	})
}

// length clamps negative branch lengths, which neighbor joining produces on
// distances that aren't additive, to zero.
func (b *builder) length(v float64) float64 {
	if v < 0 {
		b.t.Clamped++
		return 0
	}
	return v
}

func (b *builder) round(v float64) float64 {
	if b.opts.Precision < 0 {
		return v
	}
	scale := math.Pow(10, float64(b.opts.Precision))
	v = math.Round(v*scale) / scale
	if v <= 0 {
		// No negative zero in the output
		return 0
	}
	return v
}

func (b *builder) finish() (*Tree, error) {
	b.t.ReinitIndexes()
	return b.t, nil
}

func removeIndex(d [][]float64, idx int) [][]float64 {
	d = append(d[:idx], d[idx+1:]...)
	for i := range d {
		d[i] = append(d[i][:idx], d[i][idx+1:]...)
	}
	return d
}
