// Package kinderr defines the error taxonomy shared by every layer of the
// state engine: text, change algebra, the extension resolver, and the
// transaction pipeline all fail with one of a small set of kinds so that
// host code can discriminate on cause rather than on message text.
package kinderr

import "fmt"

// Kind classifies why an operation in the engine failed.
type Kind int

const (
	// Bounds marks a position outside the document, a negative index, or
	// an inverted (from > to) range.
	Bounds Kind = iota
	// Configuration marks a duplicate compartment, an unrecognised
	// extension value, a cyclic slot dependency, or an invalid indent unit.
	Configuration
	// SchemaViolation marks malformed JSON, an empty selection set, or
	// overlapping non-empty selection ranges.
	SchemaViolation
	// Parse marks an error raised by a pluggable parser or parser plugin.
	Parse
)

func (k Kind) String() string {
	switch k {
	case Bounds:
		return "Bounds"
	case Configuration:
		return "Configuration"
	case SchemaViolation:
		return "SchemaViolation"
	case Parse:
		return "Parse"
	default:
		return "Unknown"
	}
}

// Error is a Kind-tagged error value.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error.
func New(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a Kind-tagged error around an existing cause.
func Wrap(k Kind, err error, format string, args ...interface{}) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is a kinderr.Error of the given Kind.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
