// matrix2newick rebuilds a neighbor-joining tree from a distance matrix dump
// written by treemaker -matrix.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/abi-sauce/treemaker"
	_ "github.com/abi-sauce/treemaker/compileinfoprint"
	"github.com/abi-sauce/treemaker/distmatrix"
	"github.com/abi-sauce/treemaker/nj"
)

func main() {
	var inputFile string
	opts := nj.DefaultOptions()

	flag.StringVar(&inputFile, "file", "", "Path to the matrix dump (lower or square). May be a google storage URL (gs://) or - for stdin.")
	flag.IntVar(&opts.Precision, "precision", opts.Precision, "Decimals kept on branch lengths. -1 for full precision.")
	flag.Parse()

	if inputFile == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()

	var client *storage.Client
	if treemaker.IsGoogleStorage(inputFile) {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
	}

	rc, err := treemaker.Open(ctx, inputFile, client)
	if err != nil {
		log.Fatalln(err)
	}
	defer rc.Close()

	if err := run(rc, os.Stdout, opts); err != nil {
		log.Fatalln(err)
	}
}

func run(r io.Reader, w io.Writer, opts nj.Options) error {
	m, err := distmatrix.ReadText(r)
	if err != nil {
		return err
	}

	tree, err := nj.FromMatrix(m, opts)
	if err != nil {
		return err
	}
	if tree.Clamped > 0 {
		log.Printf("%d negative branch length(s) were set to 0\n", tree.Clamped)
	}

	_, err = fmt.Fprintln(w, tree.Newick())
	return err
}
