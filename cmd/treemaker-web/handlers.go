package main

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abi-sauce/treemaker"
	"github.com/abi-sauce/treemaker/compileinfo"
	"github.com/abi-sauce/treemaker/distmatrix"
	"github.com/abi-sauce/treemaker/pipeline"
	"gopkg.in/guregu/null.v3"
)

type treeResponse struct {
	Success bool
	Kind    pipeline.Kind
	Message null.String

	Samples     []string
	Markers     []string
	RepeatUnits map[string]float64

	Newick  null.String
	Matrix  null.String
	Clamped null.Int

	Warnings []string
}

func (h *handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (h *handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, compileinfo.Get())
}

// Tree runs the pipeline on the posted table. The table is either the raw
// request body or, for form posts, the "table" field. Query parameters
// override the server's default options.
func (h *handler) Tree(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)

	text, err := readTable(r)
	if err != nil {
		JSONError(h, w, r, err, http.StatusBadRequest)
		return
	}

	opts, err := optionsFromQuery(h.Defaults, r.URL.Query(), []byte(text))
	if err != nil {
		JSONError(h, w, r, err, http.StatusBadRequest)
		return
	}

	res := pipeline.Run(pipeline.Request{Table: text, Options: opts})

	out := treeResponse{
		Success:     res.Kind == pipeline.KindOK || res.Kind == pipeline.KindEmpty,
		Kind:        res.Kind,
		Message:     null.NewString(res.Message, res.Message != ""),
		Samples:     res.Samples,
		Markers:     res.Markers,
		RepeatUnits: res.RepeatUnits,
		Newick:      null.NewString(res.Newick, res.OK()),
		Matrix:      null.NewString(res.MatrixText, res.OK()),
		Warnings:    res.Warnings,
	}
	if res.Tree != nil {
		out.Clamped = null.IntFrom(int64(res.Tree.Clamped))
	}

	if !out.Success {
		h.log.Println(r.Host, r.URL.Path, ":", res.Kind, res.Message)
	}

	writeJSON(w, statusFor(res.Kind), out)
}

func statusFor(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindOK, pipeline.KindEmpty:
		return http.StatusOK
	case pipeline.KindParse, pipeline.KindInference, pipeline.KindCombinatorialLimit:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func readTable(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 10); err != nil && err != http.ErrNotMultipart {
			return "", err
		}
		return r.FormValue("table"), nil
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func optionsFromQuery(opts pipeline.Options, q url.Values, sample []byte) (pipeline.Options, error) {
	var err error

	if v := q.Get("delimiter"); v != "" {
		if opts.Table.Delimiter, err = treemaker.ParseDelimiter(v, sample); err != nil {
			return opts, err
		}
	} else if opts.Table.Delimiter == 0 {
		opts.Table.Delimiter = treemaker.DetermineDelimiter(sample)
	}

	if v := q.Get("legacy_header"); v != "" {
		if opts.Table.AssumeLegacyHeader, err = strconv.ParseBool(v); err != nil {
			return opts, fmt.Errorf("legacy_header: %w", err)
		}
	}

	// Clients may only tighten the server's limits. The server's own values
	// are the ceilings, and 0 (no limit) is never accepted from a request.
	limits := []struct {
		key string
		dst *int
	}{
		{"max_ploidy_diff", &opts.Limits.MaxPloidyDifference},
		{"max_candidates", &opts.Limits.MaxCandidates},
	}
	for _, v := range limits {
		s := q.Get(v.key)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", v.key, err)
		}
		if n < 1 || (*v.dst > 0 && n > *v.dst) {
			return opts, fmt.Errorf("%s: %d is outside 1..%s", v.key, n, ceiling(*v.dst))
		}
		*v.dst = n
	}

	if v := q.Get("precision"); v != "" {
		if opts.Tree.Precision, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("precision: %w", err)
		}
	}

	if v := q.Get("tolerance"); v != "" {
		if opts.Tolerance, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, fmt.Errorf("tolerance: %w", err)
		}
		if !(opts.Tolerance >= 0) || math.IsInf(opts.Tolerance, 0) {
			return opts, fmt.Errorf("tolerance: %v is not a finite, non-negative number", opts.Tolerance)
		}
	}

	if v := q.Get("layout"); v != "" {
		if opts.Matrix.Layout, err = distmatrix.ParseLayout(v); err != nil {
			return opts, err
		}
	}

	// repeats=A:3,B:4
	if v := q.Get("repeats"); v != "" {
		overrides := make(map[string]float64)
		for k, u := range opts.RepeatOverrides {
			overrides[k] = u
		}
		for _, pair := range strings.Split(v, ",") {
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				return opts, fmt.Errorf("repeats: %q is not marker:unit", pair)
			}
			unit, err := strconv.ParseFloat(parts[1], 64)
			if err != nil || unit <= 0 {
				return opts, fmt.Errorf("repeats: %q needs a positive unit", pair)
			}
			overrides[strings.TrimSpace(parts[0])] = unit
		}
		opts.RepeatOverrides = overrides
	}

	return opts, nil
}

func ceiling(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}
