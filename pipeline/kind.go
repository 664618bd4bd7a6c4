package pipeline

import (
	"errors"

	"github.com/abi-sauce/treemaker/alleletable"
	"github.com/abi-sauce/treemaker/bruvo"
	"github.com/abi-sauce/treemaker/repeatunit"
)

// Kind classifies the outcome of a run so that callers can react without
// matching on messages.
type Kind string

const (
	KindOK                 Kind = "ok"
	KindEmpty              Kind = "empty"
	KindParse              Kind = "parse"
	KindInference          Kind = "inference"
	KindCombinatorialLimit Kind = "combinatorial_limit"
	KindInternal           Kind = "internal"
)

func KindOf(err error) Kind {
	var (
		pe *alleletable.ParseError
		ie *repeatunit.InferenceError
		ce *bruvo.CombinatorialLimitError
	)

	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, alleletable.ErrEmpty):
		return KindEmpty
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ie):
		return KindInference
	case errors.As(err, &ce):
		return KindCombinatorialLimit
	}

	return KindInternal
}
