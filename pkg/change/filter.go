package change

// Range is a half-open [From,To) span of the old document.
type Range struct {
	From, To int
}

func inRanges(ranges []Range, pos int) bool {
	for _, r := range ranges {
		if pos >= r.From && pos < r.To {
			return true
		}
	}
	return false
}

// Filter splits c against ranges (regions of the old document where
// changes are allowed to apply): the returned kept ChangeSet applies
// only within ranges; every replacement segment
// (or the part of one) outside ranges reverts to a retain. desc
// describes the complementary, filtered-out portion — replace where
// kept retains, retain where kept replaces — so callers can remap
// positions that assumed the unfiltered change through it.
//
// A replacement segment straddling a range boundary is split at that
// boundary; its inserted text is carried in full by the first kept
// sub-segment if the op has one at all, otherwise by the first
// sub-segment outright — the same "attribute once, at first touch"
// convention used elsewhere in this package (compose.go, mapping.go).
func (c *ChangeSet) Filter(ranges []Range) (kept *ChangeSet, desc *ChangeDesc) {
	var keptOps, dropOps []op
	var keptIns []string

	appendKept := func(o op, text string) {
		if n := len(keptOps); n > 0 && keptOps[n-1].replace == o.replace {
			keptOps[n-1].oldLen += o.oldLen
			keptOps[n-1].newLen += o.newLen
			if o.replace {
				keptIns[len(keptIns)-1] += text
			}
			return
		}
		keptOps = append(keptOps, o)
		if o.replace {
			keptIns = append(keptIns, text)
		}
	}
	appendDrop := func(o op) {
		if n := len(dropOps); n > 0 && dropOps[n-1].replace == o.replace {
			dropOps[n-1].oldLen += o.oldLen
			dropOps[n-1].newLen += o.newLen
			return
		}
		dropOps = append(dropOps, o)
	}

	pos := 0
	insI := 0
	for _, o := range c.ops {
		if !o.replace {
			appendKept(op{replace: false, oldLen: o.oldLen}, "")
			appendDrop(op{replace: false, oldLen: o.oldLen})
			pos += o.oldLen
			continue
		}
		text := c.inserted[insI]
		insI++

		if o.oldLen == 0 { // pure insertion: a point event, not an interval
			if inRanges(ranges, pos) {
				appendKept(op{replace: true, oldLen: 0, newLen: o.newLen}, text)
			} else {
				appendDrop(op{replace: true, oldLen: 0, newLen: o.newLen})
			}
			continue
		}

		cutSet := map[int]bool{pos: true, pos + o.oldLen: true}
		for _, r := range ranges {
			if r.From > pos && r.From < pos+o.oldLen {
				cutSet[r.From] = true
			}
			if r.To > pos && r.To < pos+o.oldLen {
				cutSet[r.To] = true
			}
		}
		pts := make([]int, 0, len(cutSet))
		for p := range cutSet {
			pts = append(pts, p)
		}
		sortInts(pts)

		opHasKept := false
		for i := 0; i+1 < len(pts); i++ {
			if inRanges(ranges, pts[i]) {
				opHasKept = true
				break
			}
		}

		textGiven := false
		for i := 0; i+1 < len(pts); i++ {
			lo, hi := pts[i], pts[i+1]
			step := hi - lo
			if inRanges(ranges, lo) {
				newLen := 0
				var txt string
				if opHasKept && !textGiven {
					newLen, txt, textGiven = o.newLen, text, true
				}
				appendKept(op{replace: true, oldLen: step, newLen: newLen}, txt)
				appendDrop(op{replace: false, oldLen: step})
			} else {
				appendKept(op{replace: false, oldLen: step}, "")
				newLen := 0
				if !opHasKept && !textGiven {
					newLen, textGiven = o.newLen, true
				}
				appendDrop(op{replace: true, oldLen: step, newLen: newLen})
			}
		}
		pos += o.oldLen
	}

	kept = fromOps(keptOps, keptIns, c.length)
	dropOps = coalesce(dropOps)
	dropNewLen := 0
	for _, o := range dropOps {
		if o.replace {
			dropNewLen += o.newLen
		} else {
			dropNewLen += o.oldLen
		}
	}
	desc = &ChangeDesc{ops: dropOps, length: c.length, newLength: dropNewLen}
	return kept, desc
}
