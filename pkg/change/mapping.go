package change

// MapMode controls how MapPos treats a position that falls inside or
// touches a deleted range.
type MapMode int

const (
	// Simple always returns an image, clamping a position inside a
	// replacement to the replacement's start or end.
	Simple MapMode = iota
	// TrackDel reports no image for a position wholly inside a deletion.
	TrackDel
	// TrackBefore reports no image when the character immediately
	// before the position was deleted.
	TrackBefore
	// TrackAfter reports no image when the character immediately after
	// the position was deleted.
	TrackAfter
)

// MapPos returns the image of pos (a position in the document d applies
// to) in the document d produces. assoc < 0 biases the result towards
// content before pos, assoc > 0 towards content after; at an exact
// replacement the result is the replacement's start (assoc <= 0) or end
// (assoc >= 0). ok is false when mode rules out an image for pos.
func (d *ChangeDesc) MapPos(pos int, assoc int, mode MapMode) (mapped int, ok bool) {
	if pos < 0 || pos > d.length {
		return 0, false
	}
	posOld, posNew := 0, 0
	for _, o := range d.ops {
		if !o.replace {
			end := posOld + o.oldLen
			if end > pos || (end == pos && assoc <= 0) {
				return posNew + (pos - posOld), true
			}
			posOld = end
			posNew += o.oldLen
			continue
		}

		start, end := posOld, posOld+o.oldLen
		if o.oldLen > 0 {
			switch mode {
			case TrackDel:
				if start < pos && pos < end {
					return 0, false
				}
			case TrackBefore:
				if start < pos && pos <= end {
					return 0, false
				}
			case TrackAfter:
				if start <= pos && pos < end {
					return 0, false
				}
			}
		}

		if pos < start || (pos == start && assoc <= 0) {
			return posNew, true
		}
		if pos >= end {
			posOld, posNew = end, posNew+o.newLen
			continue
		}
		if assoc <= 0 {
			return posNew, true
		}
		return posNew + o.newLen, true
	}
	return posNew + (pos - posOld), true
}

// Map rebases d, an edit against the same source document as other, so it
// applies to the document other produces — the textless half of
// ChangeSet.Map. before resolves ties when d and other both insert at the
// same point: true places d's insertion first.
func (d *ChangeDesc) Map(other *ChangeDesc, before bool) (*ChangeDesc, error) {
	if d.length != other.length {
		return nil, boundsErr("map: %d != %d", d.length, other.length)
	}
	ops := coalesce(mapSpans(d.ops, nil, other.ops, before))
	newLen := 0
	for _, o := range ops {
		if o.replace {
			newLen += o.newLen
		} else {
			newLen += o.oldLen
		}
	}
	return &ChangeDesc{ops: ops, length: other.newLength, newLength: newLen}, nil
}

// Map rebases c so it applies to the document other produces instead of
// the document c was built against.
func (c *ChangeSet) Map(other *ChangeDesc, before bool) (*ChangeSet, error) {
	if c.length != other.length {
		return nil, boundsErr("map: %d != %d", c.length, other.length)
	}
	ops, ins := mapSpans(c.ops, c.inserted, other.ops, before)
	return fromOps(ops, ins, other.newLength), nil
}

// mapSpans walks aOps (with aIns, or nil for a textless ChangeDesc) and
// bOps — both describing edits against the same source document — as a
// single merge pass, producing the segments of a rebased onto b's
// result. This mirrors the teacher's PositionMapper walk
// (pkg/rope/transaction_advanced.go) generalised from single positions to
// whole change descriptions: the same "consume the smaller of the two
// remaining run lengths" loop, one merge pass instead of one per queried
// position.
//
// When a and b both replace overlapping source content, a's side is kept
// as a pure insertion at that point and its consumed-length contribution
// is dropped (the content a targeted no longer exists once b has run) —
// a deliberate, documented simplification of full OT conflict resolution,
// matching the bounded-generality tradeoffs already made in Replace and
// Compose.
func mapSpans(aOps []op, aIns []string, bOps []op, before bool) ([]op, []string) {
	var outOps []op
	var outIns []string
	emit := func(o op, text string) {
		if n := len(outOps); n > 0 && outOps[n-1].replace == o.replace {
			outOps[n-1].oldLen += o.oldLen
			outOps[n-1].newLen += o.newLen
			if o.replace {
				outIns[len(outIns)-1] += text
			}
			return
		}
		outOps = append(outOps, o)
		if o.replace {
			outIns = append(outIns, text)
		}
	}

	ai, bi := 0, 0
	aInsI := 0
	aOff, bOff := 0, 0

	for ai < len(aOps) || bi < len(bOps) {
		aIsIns := ai < len(aOps) && aOps[ai].replace && aOps[ai].oldLen == 0
		bIsIns := bi < len(bOps) && bOps[bi].replace && bOps[bi].oldLen == 0

		if aIsIns && (before || !bIsIns) {
			var txt string
			if aIns != nil {
				txt = aIns[aInsI]
			}
			emit(op{replace: true, oldLen: 0, newLen: aOps[ai].newLen}, txt)
			ai++
			aInsI++
			continue
		}
		if bIsIns {
			emit(op{replace: false, oldLen: bOps[bi].newLen}, "")
			bi++
			continue
		}
		if ai >= len(aOps) || bi >= len(bOps) {
			break
		}

		aRem := aOps[ai].oldLen - aOff
		bRem := bOps[bi].oldLen - bOff
		step := aRem
		if bRem < step {
			step = bRem
		}

		aReplace, bReplace := aOps[ai].replace, bOps[bi].replace
		aFirst, bFirst := aOff == 0, bOff == 0

		switch {
		case !aReplace && !bReplace:
			emit(op{replace: false, oldLen: step}, "")
		case aReplace && !bReplace:
			newLen := 0
			var txt string
			if aFirst {
				newLen = aOps[ai].newLen
				if aIns != nil {
					txt = aIns[aInsI]
				}
			}
			emit(op{replace: true, oldLen: step, newLen: newLen}, txt)
		case !aReplace && bReplace:
			width := 0
			if bFirst {
				width = bOps[bi].newLen
			}
			emit(op{replace: false, oldLen: width}, "")
		default: // both replace overlapping content
			newLen := 0
			var txt string
			if aFirst {
				newLen = aOps[ai].newLen
				if aIns != nil {
					txt = aIns[aInsI]
				}
			}
			emit(op{replace: true, oldLen: 0, newLen: newLen}, txt)
		}

		aOff += step
		bOff += step
		if aOff == aOps[ai].oldLen {
			if aReplace {
				aInsI++
			}
			ai++
			aOff = 0
		}
		if bOff == bOps[bi].oldLen {
			bi++
			bOff = 0
		}
	}

	return outOps, outIns
}
