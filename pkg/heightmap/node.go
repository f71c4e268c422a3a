// Package heightmap implements a persistent balanced tree over the
// document that turns character positions into vertical pixel positions
// for the layout engine. There is no teacher analogue to a height/layout
// map; the balanced-tree discipline (rebuild-by-collecting-leaves,
// size-proportional rebalancing) is grounded on pkg/rope/balance.go's
// buildBalancedTree/collectLeaves.
package heightmap

import "math"

// NodeKind distinguishes the three leaf shapes a height map node can take.
type NodeKind int

const (
	// Gap is a uniform-height run of plain text spanning one or more
	// lines, none of which carry decorations.
	Gap NodeKind = iota
	// TextBlock is exactly one document line, possibly with collapsed
	// regions or widget-contributed extra line breaks.
	TextBlock
	// BlockWidget is an opaque, fixed-height block occupying zero
	// document characters but one implicit line break.
	BlockWidget
)

func (k NodeKind) String() string {
	switch k {
	case Gap:
		return "Gap"
	case TextBlock:
		return "TextBlock"
	case BlockWidget:
		return "BlockWidget"
	default:
		return "Unknown"
	}
}

// node is one member of the height map tree: either a leaf (gap/text/
// block) or a branch combining two subtrees.
type node interface {
	length() int // characters of the document this node covers
	lines() int  // line breaks this node contributes
	height() float64
	isLeaf() bool
	isStale() bool
}

// leaf is a gap, text-block, or block-widget node.
type leaf struct {
	kind         NodeKind
	len          int
	ln           int
	h            float64
	measured     bool // height set by an external measurement, not the formula
	widgetBreaks int  // extra line breaks a widget contributes (TextBlock only)
	stale        bool
}

func (l *leaf) length() int    { return l.len }
func (l *leaf) lines() int     { return l.ln }
func (l *leaf) height() float64 { return l.h }
func (l *leaf) isLeaf() bool   { return true }
func (l *leaf) isStale() bool  { return l.stale }

// NewGap builds a gap leaf over chars characters spanning lines lines,
// its height left stale until the next UpdateHeight.
func NewGap(chars, lines int) node {
	return &leaf{kind: Gap, len: chars, ln: lines, stale: true}
}

// NewTextBlock builds a single-line leaf, with widgetBreaks extra line
// breaks contributed by block widgets attached to the line.
func NewTextBlock(chars, widgetBreaks int) node {
	return &leaf{kind: TextBlock, len: chars, ln: 1, widgetBreaks: widgetBreaks, stale: true}
}

// NewBlockWidget builds a fixed-height block occupying no document
// characters; its height is never recomputed from the wrap formula.
func NewBlockWidget(height float64) node {
	return &leaf{kind: BlockWidget, len: 0, ln: 1, h: height, measured: true, stale: false}
}

// branch combines two subtrees, caching their combined length/lines/
// height so queries don't need to re-walk children to compare.
type branch struct {
	left, right node
	len, ln     int
	h           float64
	stale       bool
}

func (b *branch) length() int    { return b.len }
func (b *branch) lines() int     { return b.ln }
func (b *branch) height() float64 { return b.h }
func (b *branch) isLeaf() bool   { return false }
func (b *branch) isStale() bool  { return b.stale }

func newBranch(left, right node) node {
	return &branch{
		left: left, right: right,
		len: left.length() + right.length(),
		ln:  left.lines() + right.lines(),
		h:   left.height() + right.height(),
		stale: left.isStale() || right.isStale(),
	}
}

// HeightOracle supplies the line metrics needed to estimate a gap or
// text-block's height.
type HeightOracle interface {
	LineHeight() float64
	LineLength() int
	Wrapping() bool
}

// wrapHeight estimates wrapped height: without wrapping a gap of n lines
// contributes n*lineHeight; with wrapping, a gap of c characters across n
// lines additionally contributes
// max(0, ceil((c - n*lineLength/2)/lineLength)) wrapped lines.
func wrapHeight(oracle HeightOracle, chars, lines int) float64 {
	lh := oracle.LineHeight()
	if lines <= 0 {
		lines = 1
	}
	if !oracle.Wrapping() {
		return float64(lines) * lh
	}
	ll := oracle.LineLength()
	if ll <= 0 {
		return float64(lines) * lh
	}
	raw := (float64(chars) - float64(lines*ll)/2) / float64(ll)
	extraLines := math.Ceil(raw)
	if extraLines < 0 {
		extraLines = 0
	}
	return float64(lines)*lh + extraLines*lh
}
