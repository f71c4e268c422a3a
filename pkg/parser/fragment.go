package parser

import "github.com/coreseekdev/texere-core/pkg/change"

// TreeFragment is a reusable piece of a previously completed parse, keyed
// by the (FromA,ToA,FromB,ToB) document ranges that produced it. FromA/ToA
// name the fragment's span in the document the tree was originally built
// against; FromB/ToB are the same span re-expressed against the current
// document, updated by ApplyChanges as edits land.
type TreeFragment struct {
	FromA, ToA int
	FromB, ToB int
	Tree       Tree
}

// NewFragment wraps a freshly completed tree as a fragment spanning
// [from,to) of the document it was parsed against.
func NewFragment(tree Tree, from, to int) TreeFragment {
	return TreeFragment{FromA: from, ToA: to, FromB: from, ToB: to, Tree: tree}
}

// ApplyChanges maps fragments through desc, dropping any fragment whose
// span an edit touches and remapping the rest's current-document span, so
// they can seed the next incremental reparse.
func ApplyChanges(fragments []TreeFragment, desc *change.ChangeDesc) []TreeFragment {
	out := make([]TreeFragment, 0, len(fragments))
	for _, f := range fragments {
		if desc.TouchesRange(f.FromB, f.ToB) {
			continue
		}
		// Endpoints map inward: text inserted at a fragment's edge stays
		// outside it and is parsed afresh.
		newFrom, okFrom := desc.MapPos(f.FromB, 1, change.Simple)
		newTo, okTo := desc.MapPos(f.ToB, -1, change.Simple)
		if !okFrom || !okTo || newFrom >= newTo {
			continue
		}
		out = append(out, TreeFragment{FromA: f.FromA, ToA: f.ToA, FromB: newFrom, ToB: newTo, Tree: f.Tree})
	}
	return out
}

// exciseSkipped drops fragments overlapping any of skipped, so that when
// the viewport changes to include that range it will be re-parsed.
func exciseSkipped(fragments []TreeFragment, skipped []Range) []TreeFragment {
	if len(skipped) == 0 {
		return fragments
	}
	out := make([]TreeFragment, 0, len(fragments))
	for _, f := range fragments {
		overlapped := false
		for _, r := range skipped {
			if r.From < f.ToB && f.FromB < r.To {
				overlapped = true
				break
			}
		}
		if !overlapped {
			out = append(out, f)
		}
	}
	return out
}
