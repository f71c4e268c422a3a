package change

import (
	"sort"

	"github.com/coreseekdev/texere-core/pkg/text"
)

// ChangeSet is a ChangeDesc that also carries the text inserted by every
// replacement segment.
type ChangeSet struct {
	ChangeDesc
	inserted []string
}

// Spec describes one user-supplied edit: replace [From,To) of the old
// document with Insert.
type Spec struct {
	From, To int
	Insert   string
}

// Of normalises a list of edit specs against a document of the given
// length into a canonical ChangeSet: segments sorted, non-overlapping, and
// coalesced.
func Of(specs []Spec, docLength int) (*ChangeSet, error) {
	sorted := append([]Spec(nil), specs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	ops := make([]op, 0, len(sorted)*2+1)
	inserted := make([]string, 0, len(sorted))
	pos := 0
	for _, s := range sorted {
		if s.From < pos || s.From > s.To || s.To > docLength {
			return nil, boundsErr("invalid or overlapping edit [%d,%d) against length %d", s.From, s.To, docLength)
		}
		if s.From > pos {
			ops = append(ops, op{replace: false, oldLen: s.From - pos})
		}
		ops = append(ops, op{replace: true, oldLen: s.To - s.From, newLen: text.Of(s.Insert).Length()})
		inserted = append(inserted, s.Insert)
		pos = s.To
	}
	if pos < docLength {
		ops = append(ops, op{replace: false, oldLen: docLength - pos})
	}
	return fromOps(ops, inserted, docLength), nil
}

// Empty returns a no-op ChangeSet over a document of the given length.
func Empty(docLength int) *ChangeSet {
	return fromOps(nil, nil, docLength)
}

// fromOps coalesces ops (merging adjacent same-kind segments and dropping
// zero-length ones) and threads the inserted-text slice through the same
// merge/drop decisions, so a replace op and its inserted text never drift
// out of lockstep. coalesce (desc.go) is textless and only safe for
// ChangeDesc-only code paths; every ChangeSet constructor goes through
// this function instead.
func fromOps(ops []op, inserted []string, docLength int) *ChangeSet {
	outOps := make([]op, 0, len(ops))
	outIns := make([]string, 0, len(inserted))
	insIdx := 0
	newLen := 0
	for _, o := range ops {
		var txt string
		if o.replace {
			txt = inserted[insIdx]
			insIdx++
		}
		if !o.replace && o.oldLen == 0 {
			continue
		}
		if o.replace && o.oldLen == 0 && o.newLen == 0 {
			continue
		}
		if n := len(outOps); n > 0 && outOps[n-1].replace == o.replace {
			outOps[n-1].oldLen += o.oldLen
			outOps[n-1].newLen += o.newLen
			if o.replace {
				outIns[len(outIns)-1] += txt
			}
		} else {
			outOps = append(outOps, o)
			if o.replace {
				outIns = append(outIns, txt)
			}
		}
	}
	for _, o := range outOps {
		if o.replace {
			newLen += o.newLen
		} else {
			newLen += o.oldLen
		}
	}
	return &ChangeSet{
		ChangeDesc: ChangeDesc{ops: outOps, length: docLength, newLength: newLen},
		inserted:   outIns,
	}
}

// Apply runs the ChangeSet against doc, which must have length
// c.Length(), producing a Text of length c.NewLength().
func (c *ChangeSet) Apply(doc *text.Text) (*text.Text, error) {
	if doc.Length() != c.length {
		return nil, boundsErr("changeset expects document of length %d, got %d", c.length, doc.Length())
	}
	pos := 0
	insIdx := 0
	result := doc
	shift := 0 // accumulated (newLen-oldLen) from edits already applied, to offset positions in `result`
	for _, o := range c.ops {
		if o.replace {
			from, to := pos+shift, pos+o.oldLen+shift
			var err error
			result, err = result.Replace(from, to, c.inserted[insIdx])
			if err != nil {
				return nil, err
			}
			shift += o.newLen - o.oldLen
			insIdx++
		}
		pos += o.oldLen
	}
	return result, nil
}

// Invert returns the ChangeSet that undoes c when applied to the document
// produced by c, given the pre-edit document `original`.
func (c *ChangeSet) Invert(original *text.Text) (*ChangeSet, error) {
	if original.Length() != c.length {
		return nil, boundsErr("invert expects the pre-edit document (length %d), got %d", c.length, original.Length())
	}
	ops := make([]op, 0, len(c.ops))
	inserted := make([]string, 0, len(c.inserted))
	pos := 0
	insIdx := 0
	for _, o := range c.ops {
		if o.replace {
			deleted, err := original.Slice(pos, pos+o.oldLen)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op{replace: true, oldLen: o.newLen, newLen: o.oldLen})
			inserted = append(inserted, deleted.String())
			insIdx++
		} else {
			ops = append(ops, op{replace: false, oldLen: o.oldLen})
		}
		pos += o.oldLen
	}
	return fromOps(ops, inserted, c.newLength), nil
}

// InsertedText returns the text inserted by the i-th replacement segment in
// document order (0-based, counting only segments with replace==true).
func (c *ChangeSet) InsertedText(i int) string {
	if i < 0 || i >= len(c.inserted) {
		return ""
	}
	return c.inserted[i]
}
