// treemaker-web serves the tree maker over HTTP: POST an allele table to
// /tree and get the Newick tree and distance matrix back as JSON.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	_ "github.com/abi-sauce/treemaker/compileinfoprint"
	"github.com/abi-sauce/treemaker/pipeline"
)

var global *Global

func main() {
	errors := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	defaults := pipeline.DefaultOptions()

	port := flag.Int("port", 9019, "Port for HTTP server")
	maxBody := flag.Int64("max-body", 8<<20, "Largest allele table, in bytes, that will be accepted")
	flag.IntVar(&defaults.Limits.MaxPloidyDifference, "max-ploidy-diff", defaults.Limits.MaxPloidyDifference, "Default largest ploidy difference between two genotypes. 0 for no limit.")
	flag.IntVar(&defaults.Limits.MaxCandidates, "max-candidates", defaults.Limits.MaxCandidates, "Default largest number of padded genotypes per pair. 0 for no limit.")
	flag.Parse()

	global = &Global{
		Site:         "treemaker",
		log:          log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
		MaxBodyBytes: *maxBody,
		Defaults:     defaults,
	}

	global.log.Println("Launching", global.Site)

	go func() {
		global.log.Println("Starting HTTP server on port", *port)
		if err := http.ListenAndServe(fmt.Sprintf(`:%d`, *port), router(global)); err != nil {
			errors <- err
			global.log.Println(err)
			sig <- syscall.SIGTERM
			return
		}
	}()

Outer:
	for {
		select {
		case sigl := <-sig:
			if sigl == syscall.SIGUSR1 {
				SigStatus()
				continue
			}

			// By default, exit
			global.log.Printf("\nExit: %s\n", sigl.String())

			break Outer

		case err := <-errors:
			if err == nil {
				global.log.Println("Finished")
				break Outer
			}

			// Return a status code indicating failure
			global.log.Println("Exiting due to error", err)
			os.Exit(1)
		}
	}
}

func SigStatus() {
	global.log.Println("There are", runtime.NumGoroutine(), "goroutines running")
}
