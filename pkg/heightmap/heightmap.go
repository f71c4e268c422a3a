package heightmap

import (
	"github.com/coreseekdev/texere-core/pkg/text"
)

// QueryKind selects whether LineAt/BlockAt's value argument is a
// character position or a pixel height.
type QueryKind int

const (
	ByPos QueryKind = iota
	ByHeight
)

// LineInfo describes the line (or block) a query resolved to.
type LineInfo struct {
	From, To    int // character range, exclusive of a trailing line break
	Top, Bottom float64
}

// HeightMap is a persistent balanced tree mapping character offsets to
// pixel heights.
type HeightMap struct {
	root node
}

// NewHeightMap builds a height map for a document of docChars characters
// over docLines lines, as a single gap spanning the whole document, then
// computes its initial height from oracle.
func NewHeightMap(docChars, docLines int, oracle HeightOracle) *HeightMap {
	hm := &HeightMap{root: NewGap(docChars, docLines)}
	hm.UpdateHeight(oracle, 0, true, nil)
	return hm
}

// Height returns the total pixel height of the document.
func (hm *HeightMap) Height() float64 { return hm.root.height() }

// Length returns the total character length the height map covers.
func (hm *HeightMap) Length() int { return hm.root.length() }

// UpdateHeight recomputes heights top-down, honoring any sticky measured
// overrides in measured (keyed by the character offset of the line a
// measurement was taken for), and marks every node fresh.
func (hm *HeightMap) UpdateHeight(oracle HeightOracle, offset int, force bool, measured map[int]float64) {
	hm.root = updateHeightNode(hm.root, oracle, offset, force, measured)
}

func updateHeightNode(n node, oracle HeightOracle, offset int, force bool, measured map[int]float64) node {
	switch v := n.(type) {
	case *leaf:
		if h, ok := measured[offset]; ok && v.kind == TextBlock {
			v.h = h + float64(v.widgetBreaks)*oracle.LineHeight()
			v.measured = true
			v.stale = false
			return v
		}
		if (force || v.stale) && !v.measured {
			switch v.kind {
			case Gap:
				v.h = wrapHeight(oracle, v.len, v.ln)
			case TextBlock:
				v.h = wrapHeight(oracle, v.len, 1) + float64(v.widgetBreaks)*oracle.LineHeight()
			}
		}
		v.stale = false
		return v
	case *branch:
		left := updateHeightNode(v.left, oracle, offset, force || v.stale, measured)
		right := updateHeightNode(v.right, oracle, offset+v.left.length(), force || v.stale, measured)
		v.left, v.right = left, right
		v.h = left.height() + right.height()
		v.ln = left.lines() + right.lines()
		v.len = left.length() + right.length()
		v.stale = false
		return v
	}
	return n
}

// descend walks from the root choosing left/right by value per kind,
// returning the leaf reached along with its character offset and the
// accumulated height above it.
func descend(n node, value float64, kind QueryKind) (lf *leaf, pos int, top float64) {
	pos, top = 0, 0
	for {
		b, ok := n.(*branch)
		if !ok {
			return n.(*leaf), pos, top
		}
		var goLeft bool
		switch kind {
		case ByPos:
			goLeft = value <= float64(pos+b.left.length())
		case ByHeight:
			goLeft = value < top+b.left.height()
		}
		if goLeft {
			n = b.left
			continue
		}
		pos += b.left.length()
		top += b.left.height()
		n = b.right
	}
}

// LineAt resolves a character position or pixel height to the line (or
// block) that contains it. doc supplies exact per-line boundaries inside
// a multi-line gap, whose lines share a uniform height by construction.
func (hm *HeightMap) LineAt(doc *text.Text, value float64, kind QueryKind) LineInfo {
	lf, pos, top := descend(hm.root, value, kind)

	switch lf.kind {
	case BlockWidget:
		return LineInfo{From: pos, To: pos, Top: top, Bottom: top + lf.h}
	case TextBlock:
		return LineInfo{From: pos, To: pos + lf.len, Top: top, Bottom: top + lf.h}
	default: // Gap
		return gapLineAt(doc, lf, pos, top, value, kind)
	}
}

// BlockAt is LineAt's coarser sibling: it never subdivides a gap into
// individual lines, returning the whole leaf's span instead.
func (hm *HeightMap) BlockAt(value float64, kind QueryKind) LineInfo {
	lf, pos, top := descend(hm.root, value, kind)
	return LineInfo{From: pos, To: pos + lf.len, Top: top, Bottom: top + lf.h}
}

func gapLineAt(doc *text.Text, lf *leaf, pos int, top float64, value float64, kind QueryKind) LineInfo {
	if lf.ln <= 0 {
		return LineInfo{From: pos, To: pos + lf.len, Top: top, Bottom: top + lf.h}
	}
	perLine := lf.h / float64(lf.ln)

	startLine, err := doc.LineAt(pos)
	if err != nil {
		return LineInfo{From: pos, To: pos + lf.len, Top: top, Bottom: top + lf.h}
	}

	var idx int
	switch kind {
	case ByPos:
		target := int(value)
		if target < pos {
			target = pos
		}
		if target > pos+lf.len {
			target = pos + lf.len
		}
		line, lerr := doc.LineAt(target)
		if lerr != nil {
			line = startLine
		}
		idx = line.Number - startLine.Number
	case ByHeight:
		idx = int((value - top) / perLine)
	}
	if idx < 0 {
		idx = 0
	}
	if idx > lf.ln-1 {
		idx = lf.ln - 1
	}

	line, lerr := doc.Line(startLine.Number + idx)
	if lerr != nil {
		line = startLine
	}
	return LineInfo{
		From: line.From, To: line.To,
		Top:    top + float64(idx)*perLine,
		Bottom: top + float64(idx+1)*perLine,
	}
}

// ForEachLine invokes cb for every line overlapping [from,to), expanding
// a gap into its constituent lines the same way LineAt does.
func (hm *HeightMap) ForEachLine(doc *text.Text, from, to int, cb func(LineInfo)) {
	var walk func(n node, pos int, top float64)
	walk = func(n node, pos int, top float64) {
		if pos >= to || pos+n.length() <= from {
			return
		}
		switch v := n.(type) {
		case *branch:
			walk(v.left, pos, top)
			walk(v.right, pos+v.left.length(), top+v.left.height())
		case *leaf:
			switch v.kind {
			case Gap:
				if v.ln <= 0 {
					return
				}
				perLine := v.h / float64(v.ln)
				startLine, err := doc.LineAt(pos)
				if err != nil {
					cb(LineInfo{From: pos, To: pos + v.len, Top: top, Bottom: top + v.h})
					return
				}
				for i := 0; i < v.ln; i++ {
					line, lerr := doc.Line(startLine.Number + i)
					if lerr != nil {
						continue
					}
					if line.To < from || line.From > to {
						continue
					}
					cb(LineInfo{
						From: line.From, To: line.To,
						Top:    top + float64(i)*perLine,
						Bottom: top + float64(i+1)*perLine,
					})
				}
			default:
				cb(LineInfo{From: pos, To: pos + v.len, Top: top, Bottom: top + v.h})
			}
		}
	}
	walk(hm.root, 0, 0)
}
