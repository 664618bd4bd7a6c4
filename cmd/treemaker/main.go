// treemaker reads a table of microsatellite fragment sizes, computes Bruvo
// distances between samples and writes a neighbor-joining tree.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/abi-sauce/treemaker"
	_ "github.com/abi-sauce/treemaker/compileinfoprint"
	"github.com/abi-sauce/treemaker/distmatrix"
	"github.com/abi-sauce/treemaker/pipeline"
	"github.com/abi-sauce/treemaker/repeatunit"
)

type config struct {
	inputFile   string
	delimiter   string
	repeatsFile string
	layout      string

	newickFile  string
	matrixFile  string
	pairsFile   string
	summaryFile string

	opts pipeline.Options
}

func main() {
	cfg := config{opts: pipeline.DefaultOptions()}

	flag.StringVar(&cfg.inputFile, "file", "", "Path to the allele table. May be a google storage URL (gs://), an http(s) URL, or - for stdin. gzip, zip, xz, bzip2 and zlib inputs are decompressed.")
	flag.StringVar(&cfg.delimiter, "delimiter", "auto", "Column delimiter: auto, tab, comma or semicolon")
	flag.StringVar(&cfg.repeatsFile, "repeats", "", "(Optional) Tab-delimited file with marker and repeat columns that overrides repeat unit inference")
	flag.BoolVar(&cfg.opts.Table.AssumeLegacyHeader, "legacy-header", false, "Treat the first line as data and use the legacy 10-marker header")
	flag.IntVar(&cfg.opts.Limits.MaxPloidyDifference, "max-ploidy-diff", cfg.opts.Limits.MaxPloidyDifference, "Largest ploidy difference between two genotypes. 0 for no limit.")
	flag.IntVar(&cfg.opts.Limits.MaxCandidates, "max-candidates", cfg.opts.Limits.MaxCandidates, "Largest number of padded genotypes per pair. 0 for no limit.")
	flag.Float64Var(&cfg.opts.Tolerance, "tolerance", cfg.opts.Tolerance, "Tolerance when comparing allele spacings")
	flag.IntVar(&cfg.opts.Tree.Precision, "precision", cfg.opts.Tree.Precision, "Decimals kept on Newick branch lengths. -1 for full precision.")
	flag.StringVar(&cfg.layout, "layout", "lower", "Matrix dump layout: lower or square")
	flag.StringVar(&cfg.newickFile, "newick", "", "Path for the Newick tree. Stdout if empty.")
	flag.StringVar(&cfg.matrixFile, "matrix", "", "(Optional) Path for the distance matrix dump")
	flag.StringVar(&cfg.pairsFile, "pairs", "", "(Optional) Path for the pairwise distances in long format")
	flag.StringVar(&cfg.summaryFile, "summary", "", "(Optional) Path for the distance summary report. - for stderr.")
	flag.Parse()

	if cfg.inputFile == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config) error {
	var client *storage.Client
	if treemaker.IsGoogleStorage(cfg.inputFile) || treemaker.IsGoogleStorage(cfg.repeatsFile) {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
	}

	text, err := treemaker.ReadAll(ctx, cfg.inputFile, client)
	if err != nil {
		return err
	}

	if cfg.opts.Table.Delimiter, err = treemaker.ParseDelimiter(cfg.delimiter, []byte(text)); err != nil {
		return err
	}
	if cfg.opts.Matrix.Layout, err = distmatrix.ParseLayout(cfg.layout); err != nil {
		return err
	}

	if cfg.repeatsFile != "" {
		rc, err := treemaker.Open(ctx, cfg.repeatsFile, client)
		if err != nil {
			return err
		}
		cfg.opts.RepeatOverrides, err = repeatunit.ReadOverrides(rc)
		rc.Close()
		if err != nil {
			return err
		}
		log.Printf("Loaded %d repeat unit override(s) from %s\n", len(cfg.opts.RepeatOverrides), cfg.repeatsFile)
	}

	res := pipeline.Run(pipeline.Request{Table: text, Options: cfg.opts})
	for _, w := range res.Warnings {
		log.Println("Warning:", w)
	}
	if err := res.Err(); err != nil {
		return err
	}
	if res.Kind == pipeline.KindEmpty {
		log.Println("No samples in", cfg.inputFile, "- nothing to do")
		return nil
	}

	log.Printf("Built a tree of %d samples from %d markers\n", len(res.Samples), len(res.Markers))
	for _, marker := range res.Markers {
		log.Printf("Marker %s: repeat unit %g\n", marker, res.RepeatUnits[marker])
	}

	return writeOutputs(cfg, res)
}
