package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/texere-core/pkg/change"
	"github.com/coreseekdev/texere-core/pkg/text"
)

func TestCursorAndRange(t *testing.T) {
	c := Cursor(5, AssocAfter)
	assert.True(t, c.Empty())
	assert.Equal(t, 5, c.Anchor())
	assert.Equal(t, 5, c.Head())

	r, err := Range(3, 7, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Anchor())
	assert.Equal(t, 7, r.Head())
	assert.Equal(t, 3, r.From())
	assert.Equal(t, 7, r.To())

	rev, err := Range(7, 3, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 7, rev.Anchor())
	assert.Equal(t, 3, rev.Head())
	assert.Equal(t, 3, rev.From())
	assert.Equal(t, 7, rev.To())
}

func TestCreateSortsAndMerges(t *testing.T) {
	r0, _ := Range(0, 5, -1, -1)
	r1, _ := Range(3, 8, -1, -1)
	r2 := Cursor(10, AssocAfter)

	sel, err := Create([]SelectionRange{r0, r1, r2}, 1)
	require.NoError(t, err)
	require.Equal(t, 2, sel.Len())
	assert.Equal(t, 0, sel.Ranges()[0].From())
	assert.Equal(t, 8, sel.Ranges()[0].To())
	assert.Equal(t, 10, sel.Ranges()[1].From())
	assert.Equal(t, 0, sel.MainIndex()) // the overlap absorbed original index 1
}

func TestCreateKeepsTouchingCursorsDistinct(t *testing.T) {
	a := Cursor(4, AssocAfter)
	b := Cursor(4, AssocBefore)
	sel, err := Create([]SelectionRange{a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, sel.Len())
}

func TestAsSingle(t *testing.T) {
	r0, _ := Range(0, 2, -1, -1)
	r1, _ := Range(5, 6, -1, -1)
	sel, err := Create([]SelectionRange{r0, r1}, 1)
	require.NoError(t, err)
	single := sel.AsSingle()
	assert.Equal(t, 1, single.Len())
	assert.Equal(t, 5, single.Main().From())
}

func TestMapCollapsesOnDeletion(t *testing.T) {
	cs, err := change.Of([]change.Spec{{From: 2, To: 4, Insert: ""}}, text.Of("onetwo").Length())
	require.NoError(t, err)

	r, err := Range(2, 4, -1, -1)
	require.NoError(t, err)
	mapped := r.Map(cs.Desc(), AssocDefault)
	assert.True(t, mapped.Empty())
	assert.Equal(t, 2, mapped.From())
}

func TestMapShiftsUnaffectedRange(t *testing.T) {
	cs, err := change.Of([]change.Spec{{From: 0, To: 0, Insert: "XX"}}, text.Of("onetwo").Length())
	require.NoError(t, err)

	r, err := Range(2, 4, -1, -1)
	require.NoError(t, err)
	mapped := r.Map(cs.Desc(), AssocDefault)
	assert.Equal(t, 4, mapped.From())
	assert.Equal(t, 6, mapped.To())
}

func TestNextPrevGrapheme(t *testing.T) {
	doc := text.Of("a\U0001F600b")
	assert.Equal(t, 1, NextGrapheme(doc, 0))
	assert.Equal(t, 3, NextGrapheme(doc, 1))
	assert.Equal(t, 4, NextGrapheme(doc, 3))
	assert.Equal(t, 1, PrevGrapheme(doc, 3))
	assert.Equal(t, 3, PrevGrapheme(doc, 4))
}

func TestWordMotion(t *testing.T) {
	doc := text.Of("the quick fox")
	assert.Equal(t, 4, NextWordStart(doc, 0))
	assert.Equal(t, 10, NextWordStart(doc, 5))
	assert.Equal(t, 4, PrevWordStart(doc, 10))
	assert.Equal(t, 0, PrevWordStart(doc, 6))
}
