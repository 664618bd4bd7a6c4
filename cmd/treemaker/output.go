package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/abi-sauce/treemaker"
	"github.com/abi-sauce/treemaker/pipeline"
	"github.com/abi-sauce/treemaker/summary"
	"github.com/carbocation/pfx"
)

func writeOutputs(cfg config, res pipeline.Result) error {
	if err := writeTo(cfg.newickFile, os.Stdout, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, res.Newick)
		return err
	}); err != nil {
		return err
	}

	if cfg.matrixFile != "" {
		if err := writeTo(cfg.matrixFile, nil, func(w io.Writer) error {
			return res.Matrix.WriteText(w, cfg.opts.Matrix)
		}); err != nil {
			return err
		}
	}

	if cfg.pairsFile != "" {
		if err := writeTo(cfg.pairsFile, nil, res.Matrix.WritePairs); err != nil {
			return err
		}
	}

	if cfg.summaryFile != "" {
		report, err := summary.New(res.Matrix, res.PerMarker, res.RepeatUnits)
		if err != nil {
			return err
		}

		path := cfg.summaryFile
		if path == "-" {
			path = ""
		}
		if err := writeTo(path, os.Stderr, func(w io.Writer) error {
			return report.Write(w, 20, 60)
		}); err != nil {
			return err
		}
	}

	return nil
}

// writeTo calls write on path, or on fallback when path is empty.
func writeTo(path string, fallback io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(fallback)
	}

	expanded, err := treemaker.ExpandHome(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(expanded, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return pfx.Err(err)
	}
	if err := bw.Flush(); err != nil {
		return pfx.Err(err)
	}

	return f.Close()
}
