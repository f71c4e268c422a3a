package selection

import (
	"unicode"

	"github.com/clipperhouse/uax29/graphemes"

	"github.com/coreseekdev/texere-core/pkg/text"
)

// NextGrapheme returns the position one grapheme cluster after pos,
// clamped to the document end. Grounded on the teacher's Graphemes()
// iterator (pkg/rope/graphemes.go), which segments with the same
// library; here segmentation runs once per call on the text ahead of
// pos rather than over the whole document.
func NextGrapheme(t *text.Text, pos int) int {
	if pos >= t.Length() {
		return t.Length()
	}
	ahead := t.SliceString(pos, t.Length())
	segs := graphemes.SegmentAllString(ahead)
	if len(segs) == 0 {
		return pos
	}
	return pos + utf16Len(segs[0])
}

// PrevGrapheme returns the position one grapheme cluster before pos.
func PrevGrapheme(t *text.Text, pos int) int {
	if pos <= 0 {
		return 0
	}
	behind := t.SliceString(0, pos)
	segs := graphemes.SegmentAllString(behind)
	if len(segs) == 0 {
		return 0
	}
	last := segs[len(segs)-1]
	return pos - utf16Len(last)
}

// NextWordStart finds the start of the word following pos, skipping any
// whitespace pos sits in first. Adapted from the teacher's
// WordBoundary.NextWordStart, rewritten against pkg/text instead of the
// teacher's rope iterator.
func NextWordStart(t *text.Text, pos int) int {
	if pos >= t.Length() {
		return t.Length()
	}
	runes := []rune(t.SliceString(pos, t.Length()))
	i := 0
	for i < len(runes) && !unicode.IsSpace(runes[i]) { // past any word pos sits in
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) { // past the gap before the next word
		i++
	}
	return pos + utf16Len(string(runes[:i]))
}

// PrevWordStart finds the start of the word preceding pos, per the
// teacher's WordBoundary.PrevWordStart.
func PrevWordStart(t *text.Text, pos int) int {
	if pos <= 0 {
		return 0
	}
	runes := []rune(t.SliceString(0, pos))
	i := len(runes)
	for i > 0 && !unicode.IsSpace(runes[i-1]) { // past any word pos sits in
		i--
	}
	for i > 0 && unicode.IsSpace(runes[i-1]) { // past the gap
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) { // to the start of the previous word
		i--
	}
	return utf16Len(string(runes[:i]))
}

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
