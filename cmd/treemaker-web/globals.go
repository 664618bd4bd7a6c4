package main

import (
	"github.com/abi-sauce/treemaker/pipeline"
)

type Global struct {
	log logger

	Site string

	// MaxBodyBytes bounds the size of a posted table.
	MaxBodyBytes int64

	// Defaults are the pipeline options that query parameters start from.
	Defaults pipeline.Options
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
