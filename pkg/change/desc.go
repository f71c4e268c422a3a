// Package change implements the change algebra of a text editing core:
// ChangeDesc and ChangeSet, with composition, cross-mapping, position
// mapping, and inversion. The segment encoding and the compose algorithm
// are adapted from the teacher package's Operation/ChangeSet model
// (github.com/coreseekdev/texere, pkg/rope/transaction.go and
// pkg/rope/composition.go, itself credited there to the Helix editor's
// transaction.rs), reshaped into an alternating (unchanged length,
// replacement length) segment form.
package change

import (
	"github.com/coreseekdev/texere-core/pkg/kinderr"
)

// op is one segment of a ChangeDesc: either a retained run of oldLen
// characters (replace == false, newLen unused) or a replacement consuming
// oldLen old characters and producing newLen new ones.
type op struct {
	replace bool
	oldLen  int
	newLen  int
}

// ChangeDesc is a compact, textless description of an edit: how many old
// characters each segment consumes and how many new characters it
// produces. It supports every algebraic operation that doesn't need the
// actual inserted text.
type ChangeDesc struct {
	ops       []op
	length    int // old document length
	newLength int // new document length
}

// Length returns the old document length the ChangeDesc applies to.
func (d *ChangeDesc) Length() int { return d.length }

// NewLength returns the document length after applying the ChangeDesc.
func (d *ChangeDesc) NewLength() int { return d.newLength }

// Empty reports whether the ChangeDesc makes no changes.
func (d *ChangeDesc) Empty() bool {
	for _, o := range d.ops {
		if o.replace {
			return false
		}
	}
	return true
}

func boundsErr(format string, args ...interface{}) error {
	return kinderr.New(kinderr.Bounds, format, args...)
}

// coalesce merges adjacent segments of the same kind and drops zero-length
// retains, keeping the encoding normalised.
func coalesce(ops []op) []op {
	out := make([]op, 0, len(ops))
	for _, o := range ops {
		if !o.replace && o.oldLen == 0 {
			continue
		}
		if o.replace && o.oldLen == 0 && o.newLen == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].replace == o.replace {
			out[n-1].oldLen += o.oldLen
			out[n-1].newLen += o.newLen
		} else {
			out = append(out, o)
		}
	}
	return out
}

// TouchesRange reports whether the ChangeDesc's changed regions intersect
// [from,to) of the old document — used by callers (e.g. pkg/parser's
// fragment reuse) that need to invalidate a cached span an edit overlaps,
// not just remap its endpoints.
func (d *ChangeDesc) TouchesRange(from, to int) bool {
	return d.touchesRange(from, to)
}

// touchesRange reports whether the ChangeDesc's changed regions intersect
// [from,to) of the old document.
func (d *ChangeDesc) touchesRange(from, to int) bool {
	pos := 0
	for _, o := range d.ops {
		end := pos + o.oldLen
		if o.replace && end > from && pos < to {
			return true
		}
		pos = end
	}
	return false
}

// Desc strips the inserted text from a ChangeSet, yielding its ChangeDesc.
func (c *ChangeSet) Desc() *ChangeDesc {
	return &ChangeDesc{ops: append([]op(nil), c.ops...), length: c.length, newLength: c.newLength}
}
