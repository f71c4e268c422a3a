package change

// span is one op projected into the shared "middle" document frame: for
// the left-hand changeset that frame is its new-side length, for the
// right-hand changeset it is its old-side length (both equal c.newLength
// == other.length when composing).
type span struct {
	start, end int
	isReplace  bool
	oldLen     int // only meaningful when isReplace: how many old-side chars this op consumed
	newLen     int // only meaningful when isReplace: how many new-side chars this op produced
	text       string
}

func leftSpans(ops []op, inserted []string) []span {
	spans := make([]span, 0, len(ops))
	pos := 0
	insIdx := 0
	for _, o := range ops {
		width := o.oldLen
		var txt string
		if o.replace {
			width = o.newLen
			txt = inserted[insIdx]
			insIdx++
		}
		spans = append(spans, span{start: pos, end: pos + width, isReplace: o.replace, oldLen: o.oldLen, newLen: o.newLen, text: txt})
		pos += width
	}
	return spans
}

func rightSpans(ops []op, inserted []string) []span {
	spans := make([]span, 0, len(ops))
	pos := 0
	insIdx := 0
	for _, o := range ops {
		width := o.oldLen // the right side's old length is always its "middle-frame" width
		var txt string
		if o.replace {
			txt = inserted[insIdx]
			insIdx++
		}
		spans = append(spans, span{start: pos, end: pos + width, isReplace: o.replace, oldLen: o.oldLen, newLen: o.newLen, text: txt})
		pos += width
	}
	return spans
}

// Compose produces a ChangeSet whose effect is "apply c then apply other".
// Both changesets are projected into the shared middle document frame
// (c's new doc, which must equal other's old doc) and subdivided at the
// union of both sides' boundaries — the teacher's pkg/rope/composition.go
// walks the same two segment sequences simultaneously; this
// subdivide-then-zip shape is an equivalent, simpler restatement of that
// walk for the alternating-segment encoding.
func (c *ChangeSet) Compose(other *ChangeSet) (*ChangeSet, error) {
	if c.newLength != other.length {
		return nil, boundsErr("compose: left newLength %d != right length %d", c.newLength, other.length)
	}
	if c.Empty() {
		return other, nil
	}
	if other.Empty() {
		return c, nil
	}

	left := leftSpans(c.ops, c.inserted)
	right := rightSpans(other.ops, other.inserted)

	cuts := map[int]bool{0: true, c.newLength: true}
	for _, s := range left {
		cuts[s.start] = true
		cuts[s.end] = true
	}
	for _, s := range right {
		cuts[s.start] = true
		cuts[s.end] = true
	}
	points := make([]int, 0, len(cuts))
	for p := range cuts {
		points = append(points, p)
	}
	sortInts(points)

	li, ri := 0, 0
	var outOps []op
	var outIns []string
	// A replace span with no width in the middle document (a deletion by c,
	// or a pure insertion by other) is emitted at its point as it is passed.
	zeroWidth := func(s span) {
		if s.isReplace && s.start == s.end {
			outOps = append(outOps, op{replace: true, oldLen: s.oldLen, newLen: s.newLen})
			outIns = append(outIns, s.text)
		}
	}
	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]
		for left[li].end <= lo {
			zeroWidth(left[li])
			li++
		}
		for right[ri].end <= lo {
			zeroWidth(right[ri])
			ri++
		}
		a, b := left[li], right[ri]

		if !a.isReplace && !b.isReplace {
			outOps = append(outOps, op{replace: false, oldLen: hi - lo})
			continue
		}

		oldLen := hi - lo
		if a.isReplace {
			oldLen = 0
			if lo == a.start {
				oldLen = a.oldLen
			}
		}

		var newLen int
		var txt string
		if !b.isReplace {
			if a.isReplace {
				newLen = hi - lo
				txt = utf16Slice(a.text, lo-a.start, hi-a.start)
			} else {
				newLen = hi - lo
			}
		} else if lo == b.start {
			newLen = b.newLen
			txt = b.text
		}

		if n := len(outOps); n > 0 && outOps[n-1].replace {
			outOps[n-1].oldLen += oldLen
			outOps[n-1].newLen += newLen
			outIns[len(outIns)-1] += txt
		} else {
			outOps = append(outOps, op{replace: true, oldLen: oldLen, newLen: newLen})
			outIns = append(outIns, txt)
		}
	}
	for _, s := range append(left[li:], right[ri:]...) {
		zeroWidth(s)
	}

	return fromOps(outOps, outIns, c.length), nil
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// utf16Len and utf16Slice duplicate the small conversion helpers in
// pkg/text: both packages need them, and the logic is a handful of lines
// not worth exporting as cross-package API surface.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func utf16Slice(s string, from, to int) string {
	if from >= to {
		return ""
	}
	units, start, end := 0, len(s), len(s)
	started := false
	for i, r := range s {
		if units == from && !started {
			start = i
			started = true
		}
		if units == to {
			end = i
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	if !started {
		start = len(s)
	}
	return s[start:end]
}
