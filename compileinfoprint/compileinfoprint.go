// Package compileinfoprint is imported for the side effect of printing the
// build banner to stderr when a treemaker binary starts.
package compileinfoprint

import "github.com/abi-sauce/treemaker/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
