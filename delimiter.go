package treemaker

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit
// the values in sample, assuming a CSV-like table. Allele tables are
// tab-delimited unless the data says otherwise.
func DetermineDelimiter(sample []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return '\t'
}

// ParseDelimiter turns a -delimiter flag value into a rune. "auto" (or an
// empty string) detects it from sample.
func ParseDelimiter(value string, sample []byte) (rune, error) {
	switch strings.ToLower(value) {
	case "", "auto":
		return DetermineDelimiter(sample), nil
	case "tab", `\t`:
		return '\t', nil
	case "comma", ",":
		return ',', nil
	case "semicolon", ";":
		return ';', nil
	}

	return 0, fmt.Errorf("unknown delimiter %q: expected auto, tab, comma or semicolon", value)
}
