package parser

import (
	"log"

	"github.com/coreseekdev/texere-core/pkg/kinderr"
)

// ExceptionSink receives errors raised inside a parser's Advance call:
// errors thrown by plugins/parsers are logged via the registered
// exception sink but never allowed to corrupt the state.
type ExceptionSink func(error)

// DefaultSink logs to the standard logger.
func DefaultSink(err error) {
	log.Printf("parser: %v", err)
}

func wrapPanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return kinderr.New(kinderr.Parse, "parser panicked: %v", err)
	}
	return kinderr.New(kinderr.Parse, "parser panicked: %v", r)
}
