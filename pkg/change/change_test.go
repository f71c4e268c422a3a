package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/texere-core/pkg/text"
)

func TestOfAndApply(t *testing.T) {
	doc := text.Of("onetwo")
	cs, err := Of([]Spec{{From: 2, To: 4, Insert: "XY"}}, doc.Length())
	require.NoError(t, err)
	assert.Equal(t, 6, cs.Length())
	assert.Equal(t, 6, cs.NewLength())

	out, err := cs.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, "onXYwo", out.String())
}

func TestChangeRoundTripInvert(t *testing.T) {
	doc := text.Of("hello world")
	cs, err := Of([]Spec{{From: 5, To: 6, Insert: ", "}, {From: 11, To: 11, Insert: "!"}}, doc.Length())
	require.NoError(t, err)

	edited, err := cs.Apply(doc)
	require.NoError(t, err)

	inv, err := cs.Invert(doc)
	require.NoError(t, err)
	back, err := inv.Apply(edited)
	require.NoError(t, err)
	assert.True(t, doc.Eq(back))
}

func TestComposeSequential(t *testing.T) {
	doc := text.Of("abcdef")
	a, err := Of([]Spec{{From: 0, To: 2, Insert: "XY"}}, doc.Length())
	require.NoError(t, err)
	mid, err := a.Apply(doc)
	require.NoError(t, err)

	b, err := Of([]Spec{{From: 2, To: 2, Insert: "-"}}, mid.Length())
	require.NoError(t, err)
	want, err := b.Apply(mid)
	require.NoError(t, err)

	composed, err := a.Compose(b)
	require.NoError(t, err)
	got, err := composed.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.String())
}

func TestComposeAssociativity(t *testing.T) {
	doc := text.Of("abcdefgh")
	a, err := Of([]Spec{{From: 1, To: 3, Insert: "Z"}}, doc.Length())
	require.NoError(t, err)
	d1, err := a.Apply(doc)
	require.NoError(t, err)

	b, err := Of([]Spec{{From: 0, To: 0, Insert: "Q"}}, d1.Length())
	require.NoError(t, err)
	d2, err := b.Apply(d1)
	require.NoError(t, err)

	c, err := Of([]Spec{{From: d2.Length() - 1, To: d2.Length(), Insert: "!!"}}, d2.Length())
	require.NoError(t, err)

	ab, err := a.Compose(b)
	require.NoError(t, err)
	left, err := ab.Compose(c)
	require.NoError(t, err)

	bc, err := b.Compose(c)
	require.NoError(t, err)
	right, err := a.Compose(bc)
	require.NoError(t, err)

	gotLeft, err := left.Apply(doc)
	require.NoError(t, err)
	gotRight, err := right.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, gotLeft.String(), gotRight.String())
}

func TestComposeWithEmpty(t *testing.T) {
	doc := text.Of("abc")
	a, err := Of([]Spec{{From: 0, To: 1, Insert: "X"}}, doc.Length())
	require.NoError(t, err)
	empty := Empty(a.NewLength())

	composed, err := a.Compose(empty)
	require.NoError(t, err)
	got, err := composed.Apply(doc)
	require.NoError(t, err)
	want, err := a.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.String())
}

func TestMapNonOverlapping(t *testing.T) {
	doc := text.Of("abcd")
	a, err := Of([]Spec{{From: 0, To: 1, Insert: "X"}}, doc.Length())
	require.NoError(t, err)
	b, err := Of([]Spec{{From: 2, To: 3, Insert: "YZ"}}, doc.Length())
	require.NoError(t, err)

	aMapped, err := a.Map(b.Desc(), false)
	require.NoError(t, err)

	bDoc, err := b.Apply(doc)
	require.NoError(t, err)
	result, err := aMapped.Apply(bDoc)
	require.NoError(t, err)
	assert.Equal(t, "XbYZd", result.String())
}

func TestMapPosSimple(t *testing.T) {
	doc := text.Of("onetwo")
	cs, err := Of([]Spec{{From: 2, To: 4, Insert: "Q"}}, doc.Length())
	require.NoError(t, err)

	p, ok := cs.MapPos(0, -1, Simple)
	require.True(t, ok)
	assert.Equal(t, 0, p)

	p, ok = cs.MapPos(6, -1, Simple)
	require.True(t, ok)
	assert.Equal(t, 5, p)

	p, ok = cs.MapPos(3, -1, Simple) // inside the replaced range
	require.True(t, ok)
	assert.Equal(t, 2, p) // clamps to replacement start
	p, ok = cs.MapPos(3, 1, Simple)
	require.True(t, ok)
	assert.Equal(t, 3, p) // clamps to replacement end
}

func TestMapPosTrackDel(t *testing.T) {
	cs, err := Of([]Spec{{From: 2, To: 4, Insert: ""}}, text.Of("onetwo").Length())
	require.NoError(t, err)
	_, ok := cs.MapPos(3, -1, TrackDel)
	assert.False(t, ok)
	_, ok = cs.MapPos(2, -1, TrackDel)
	assert.True(t, ok) // boundary, not interior
}

func TestFilterExampleThree(t *testing.T) {
	doc := text.Of("onetwo")
	cs, err := Of([]Spec{{From: 0, To: 6, Insert: ""}}, doc.Length())
	require.NoError(t, err)

	kept, dropped := cs.Filter([]Range{{From: 2, To: 4}})
	out, err := kept.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, "onwo", out.String())
	assert.Equal(t, 6, dropped.Length())
}

func TestFromDiff(t *testing.T) {
	cs, err := FromDiff("the quick fox", "the slow fox")
	require.NoError(t, err)
	doc := text.Of("the quick fox")
	out, err := cs.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, "the slow fox", out.String())
}

func TestChangeDescTouchesRange(t *testing.T) {
	cs, err := Of([]Spec{{From: 3, To: 5, Insert: "Z"}}, text.Of("abcdefgh").Length())
	require.NoError(t, err)
	desc := cs.Desc()
	assert.True(t, desc.touchesRange(4, 6))
	assert.False(t, desc.touchesRange(6, 8))
}

func TestEmptyChangeSet(t *testing.T) {
	e := Empty(5)
	assert.True(t, e.Empty())
	assert.Equal(t, 5, e.Length())
	assert.Equal(t, 5, e.NewLength())
}
