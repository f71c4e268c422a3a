package text

// clip returns the clipped line fragments of a leaf covering the UTF-16
// range [from,to) local to that leaf. Fragments are returned in order;
// whether the first/last returned fragment is a complete logical line or a
// continuation of a neighbouring leaf is decided by the caller, which
// knows the tree-wide context (see collectLines).
func (l *leaf) clip(from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > l.length {
		to = l.length
	}
	if from >= to {
		return nil
	}
	var res []string
	offset := 0
	for i, f := range l.frags {
		flen := utf16Len(f)
		fragStart, fragEnd := offset, offset+flen
		lo, hi := max(from, fragStart), min(to, fragEnd)
		if lo < hi {
			res = append(res, sliceUTF16(f, lo-fragStart, hi-fragStart))
		} else if fragStart == fragEnd && from <= fragStart && fragStart < to {
			res = append(res, "")
		}
		offset = fragEnd
		if i < len(l.frags)-1 {
			offset++ // step over the real internal separator
		}
	}
	return res
}

func pushLeafFrags(frags []string, out *[]string, carry *string, have *bool) {
	if len(frags) == 0 {
		return
	}
	if len(frags) == 1 {
		if *have {
			*carry += frags[0]
		} else {
			*carry = frags[0]
			*have = true
		}
		return
	}
	first := frags[0]
	if *have {
		first = *carry + first
	}
	*out = append(*out, first)
	*out = append(*out, frags[1:len(frags)-1]...)
	*carry = frags[len(frags)-1]
	*have = true
}

// collectLines walks n, appending the line fragments covering [from,to)
// (n-local offsets) into out, carrying a pending fragment across leaf
// boundaries since no real separator lives there.
func collectLines(n node, from, to int, out *[]string, carry *string, have *bool) {
	if from >= to {
		return
	}
	switch v := n.(type) {
	case *leaf:
		pushLeafFrags(v.clip(from, to), out, carry, have)
	case *branch:
		offset := 0
		for i, c := range v.children {
			clen := v.childLen[i]
			lo, hi := max(from, offset), min(to, offset+clen)
			if lo < hi {
				collectLines(c, lo-offset, hi-offset, out, carry, have)
			}
			offset += clen
			if offset >= to {
				break
			}
		}
	}
}

func linesInRange(n node, from, to int) []string {
	var out []string
	var carry string
	have := false
	collectLines(n, from, to, &out, &carry, &have)
	if have {
		out = append(out, carry)
	}
	if out == nil {
		out = []string{""}
	}
	return out
}

// Slice returns the sub-Text spanning the UTF-16 range [from,to).
func (t *Text) Slice(from, to int) (*Text, error) {
	if err := t.checkRange(from, to); err != nil {
		return nil, err
	}
	return OfLines(linesInRange(t.root, from, to)), nil
}

// SliceString returns the substring spanning [from,to), joined with
// lineSep (defaulting to "\n" when empty).
func (t *Text) SliceString(from, to int, lineSep ...string) string {
	sep := "\n"
	if len(lineSep) > 0 && lineSep[0] != "" {
		sep = lineSep[0]
	}
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if max := t.Length(); to > max {
		to = max
	}
	lines := linesInRange(t.root, from, to)
	out := lines[0]
	for _, l := range lines[1:] {
		out += sep + l
	}
	return out
}
