package heightmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/texere-core/pkg/text"
)

type fixedOracle struct {
	lineHeight float64
	lineLength int
	wrapping   bool
}

func (o fixedOracle) LineHeight() float64 { return o.lineHeight }
func (o fixedOracle) LineLength() int     { return o.lineLength }
func (o fixedOracle) Wrapping() bool      { return o.wrapping }

func TestWrapHeightNoWrapping(t *testing.T) {
	o := fixedOracle{lineHeight: 20, wrapping: false}
	assert.Equal(t, 60.0, wrapHeight(o, 500, 3))
}

func TestWrapHeightWithWrapping(t *testing.T) {
	o := fixedOracle{lineHeight: 20, lineLength: 80, wrapping: true}
	// 240 chars over 3 lines: (240-3*40)/80 rounds up to 2 extra rows.
	assert.Equal(t, 100.0, wrapHeight(o, 240, 3))
	// One line of 200 chars wraps into extra rows.
	h := wrapHeight(o, 200, 1)
	assert.Greater(t, h, 20.0)
}

func docOf(lines ...string) *text.Text {
	return text.OfLines(lines)
}

func TestNewHeightMapUniformGap(t *testing.T) {
	doc := docOf("aaaa", "bbbb", "cccc", "dddd")
	o := fixedOracle{lineHeight: 16, wrapping: false}
	hm := NewHeightMap(doc.Length(), doc.Lines(), o)

	assert.Equal(t, doc.Length(), hm.Length())
	assert.Equal(t, 64.0, hm.Height())
	assert.True(t, isBalanced(hm.root))
}

func TestLineAtByHeightWithinGap(t *testing.T) {
	doc := docOf("aaaa", "bbbb", "cccc", "dddd")
	o := fixedOracle{lineHeight: 10, wrapping: false}
	hm := NewHeightMap(doc.Length(), doc.Lines(), o)

	li := hm.LineAt(doc, 25, ByHeight) // line index 2 ("cccc")
	line3, err := doc.Line(3)
	require.NoError(t, err)
	assert.Equal(t, line3.From, li.From)
	assert.Equal(t, line3.To, li.To)
	assert.Equal(t, 20.0, li.Top)
	assert.Equal(t, 30.0, li.Bottom)
}

func TestLineAtByPosWithinGap(t *testing.T) {
	doc := docOf("aaaa", "bbbb", "cccc", "dddd")
	o := fixedOracle{lineHeight: 10, wrapping: false}
	hm := NewHeightMap(doc.Length(), doc.Lines(), o)

	line2, err := doc.Line(2)
	require.NoError(t, err)
	li := hm.LineAt(doc, float64(line2.From+1), ByPos)
	assert.Equal(t, line2.From, li.From)
	assert.Equal(t, line2.To, li.To)
}

func TestForEachLineCoversRequestedRange(t *testing.T) {
	doc := docOf("aaaa", "bbbb", "cccc", "dddd", "eeee")
	o := fixedOracle{lineHeight: 10, wrapping: false}
	hm := NewHeightMap(doc.Length(), doc.Lines(), o)

	line2, _ := doc.Line(2)
	line4, _ := doc.Line(4)

	var got []LineInfo
	hm.ForEachLine(doc, line2.From, line4.To, func(li LineInfo) {
		got = append(got, li)
	})
	require.Len(t, got, 3) // lines 2, 3, 4
	assert.Equal(t, line2.From, got[0].From)
	assert.Equal(t, line4.To, got[len(got)-1].To)
}

func TestBlockAtReturnsWholeGapLeaf(t *testing.T) {
	doc := docOf("aaaa", "bbbb")
	o := fixedOracle{lineHeight: 10, wrapping: false}
	hm := NewHeightMap(doc.Length(), doc.Lines(), o)

	bi := hm.BlockAt(5, ByHeight)
	assert.Equal(t, 0, bi.From)
	assert.Equal(t, doc.Length(), bi.To)
}

func TestUpdateHeightMeasuredOverride(t *testing.T) {
	o := fixedOracle{lineHeight: 10, wrapping: false}
	hm := &HeightMap{root: NewTextBlock(4, 0)}
	hm.UpdateHeight(o, 0, true, map[int]float64{0: 37})
	assert.Equal(t, 37.0, hm.Height())
}

func TestBlockWidgetHeightNeverRecomputed(t *testing.T) {
	o := fixedOracle{lineHeight: 10, wrapping: false}
	widget := NewBlockWidget(123)
	hm := &HeightMap{root: widget}
	hm.UpdateHeight(o, 0, true, nil)
	assert.Equal(t, 123.0, hm.Height())
}

func TestBuildBalancedTreeInvariant(t *testing.T) {
	var leaves []node
	for i := 0; i < 17; i++ {
		leaves = append(leaves, NewTextBlock(4, 0))
	}
	root := buildBalancedTree(leaves)
	assert.True(t, isBalanced(root))
	assert.Equal(t, 17, root.lines())
	assert.Len(t, collectLeaves(root), 17)
}

func bigDoc(lines int) *text.Text {
	ls := make([]string, lines)
	for i := range ls {
		ls[i] = strings.Repeat("x", 10)
	}
	return text.OfLines(ls)
}

func TestForEachLineOnLargerDocument(t *testing.T) {
	doc := bigDoc(200)
	o := fixedOracle{lineHeight: 15, wrapping: false}
	hm := NewHeightMap(doc.Length(), doc.Lines(), o)

	var count int
	hm.ForEachLine(doc, 0, doc.Length(), func(LineInfo) { count++ })
	assert.Equal(t, 200, count)
}
