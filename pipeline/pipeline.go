// Package pipeline runs the whole tree-making computation for one request:
// parse the allele table, infer repeat units, compute Bruvo distances per
// marker, sum them and join neighbors. Every run is a pure function of its
// Request.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/abi-sauce/treemaker/alleletable"
	"github.com/abi-sauce/treemaker/bruvo"
	"github.com/abi-sauce/treemaker/distmatrix"
	"github.com/abi-sauce/treemaker/nj"
	"github.com/abi-sauce/treemaker/repeatunit"
	"gonum.org/v1/gonum/mat"
)

type Options struct {
	Table alleletable.Options

	// RepeatOverrides replaces inference for the markers it names.
	RepeatOverrides map[string]float64

	// Tolerance is used when comparing allele spacings.
	Tolerance float64

	Limits bruvo.Limits
	Tree   nj.Options
	Matrix distmatrix.TextOptions
}

func DefaultOptions() Options {
	return Options{
		Tolerance: repeatunit.DefaultTolerance,
		Limits:    bruvo.DefaultLimits(),
		Tree:      nj.DefaultOptions(),
		Matrix:    distmatrix.DefaultTextOptions(),
	}
}

type Request struct {
	// Table is the raw delimited text: a header line, then one row per
	// sample.
	Table   string
	Options Options
}

type Result struct {
	Kind    Kind
	Message string

	Samples     []string // sorted; matrix index order
	Markers     []string // sorted; processing order
	RepeatUnits map[string]float64

	// PerMarker holds each marker's contribution, in [0, 1] per cell.
	PerMarker map[string]*distmatrix.Matrix
	Matrix    *distmatrix.Matrix
	Tree      *nj.Tree

	Newick     string
	MatrixText string

	Warnings []string
}

// OK reports whether a tree was built.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Err returns nil for successful and empty results, and an error carrying
// the kind and message otherwise.
func (r Result) Err() error {
	switch r.Kind {
	case KindOK, KindEmpty:
		return nil
	}
	return fmt.Errorf("%s: %s", r.Kind, r.Message)
}

// Run never returns partial output: on any failure only Kind, Message and
// the warnings gathered so far are set.
func Run(req Request) Result {
	var warnings []string

	fail := func(err error) Result {
		return Result{Kind: KindOf(err), Message: err.Error(), Warnings: warnings}
	}

	tab, err := alleletable.Parse(req.Table, req.Options.Table)
	if errors.Is(err, alleletable.ErrEmpty) {
		return Result{Kind: KindEmpty, Message: "nothing to compute"}
	} else if err != nil {
		return fail(err)
	}
	warnings = append(warnings, tab.Warnings...)

	samples := tab.SortedSamples()
	markers := tab.MarkerNames()

	genotypes := make(map[string]map[string][]float64, len(markers))
	for _, marker := range markers {
		genotypes[marker] = tab.Genotypes(marker)
	}

	units, err := repeatunit.InferAll(tab, req.Options.RepeatOverrides, req.Options.Tolerance)
	if err != nil {
		return fail(err)
	}
	for marker := range req.Options.RepeatOverrides {
		if _, exists := genotypes[marker]; !exists {
			warnings = append(warnings, fmt.Sprintf("repeat override for marker %s, which is not in the table", marker))
		}
	}

	// Check every pair before doing any arithmetic, so a blowup on the
	// last marker doesn't cost the work on all the others.
	for _, marker := range markers {
		if err := bruvo.Check(marker, samples, genotypes[marker], req.Options.Limits); err != nil {
			return fail(err)
		}
	}

	perMarker := make(map[string]*distmatrix.Matrix, len(markers))
	parts := make([]*mat.SymDense, 0, len(markers))
	for _, marker := range markers {
		m, err := bruvo.MarkerMatrix(marker, samples, genotypes[marker], units[marker], req.Options.Limits)
		if err != nil {
			return fail(err)
		}
		parts = append(parts, m)
		perMarker[marker] = &distmatrix.Matrix{Names: samples, SymDense: m}
	}

	total, err := distmatrix.Sum(samples, parts...)
	if err != nil {
		return fail(err)
	}

	tree, err := nj.Build(total.Names, total.LowerTriangle(), req.Options.Tree)
	if err != nil {
		return fail(err)
	}
	if tree.Clamped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d negative branch length(s) were set to 0", tree.Clamped))
	}

	return Result{
		Kind:        KindOK,
		Samples:     samples,
		Markers:     markers,
		RepeatUnits: units,
		PerMarker:   perMarker,
		Matrix:      total,
		Tree:        tree,
		Newick:      tree.Newick(),
		MatrixText:  total.Text(req.Options.Matrix),
		Warnings:    warnings,
	}
}
