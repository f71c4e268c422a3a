package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/texere-core/pkg/change"
)

func appendDesc(t *testing.T, oldLen, insertLen int) *change.ChangeDesc {
	t.Helper()
	cs, err := change.Of([]change.Spec{{From: oldLen, To: oldLen, Insert: strings.Repeat("a", insertLen)}}, oldLen)
	require.NoError(t, err)
	return cs.Desc()
}

// fakeTree is the simplest possible Tree: it just remembers how much of
// the document it covers.
type fakeTree struct{ length int }

func (t fakeTree) Length() int { return t.length }

// fakePartial simulates a parser that processes step characters of real
// work per Advance call, sleeping perChar*step to stand in for CPU cost,
// so the scheduler's time budget genuinely limits how far a single slice
// gets.
type fakePartial struct {
	pos     int
	target  int
	step    int
	perChar time.Duration
	stopAt  int
	hasStop bool
}

func (p *fakePartial) ParsedPos() int { return p.pos }

func (p *fakePartial) StoppedAt() (int, bool) { return p.stopAt, p.hasStop }

func (p *fakePartial) StopAt(pos int) {
	p.stopAt = pos
	p.hasStop = true
}

func (p *fakePartial) Advance() (Tree, bool) {
	limit := p.target
	if p.hasStop && p.stopAt < limit {
		limit = p.stopAt
	}
	if p.pos >= limit {
		return fakeTree{length: p.pos}, true
	}
	next := p.pos + p.step
	if next > limit {
		next = limit
	}
	time.Sleep(p.perChar * time.Duration(next-p.pos))
	p.pos = next
	if p.pos >= limit {
		return fakeTree{length: p.pos}, true
	}
	return nil, false
}

// fakeParser reuses a prefix fragment starting at 0, if one is offered,
// mirroring how a real incremental parser would skip already-parsed text.
type fakeParser struct {
	step    int
	perChar time.Duration
}

func (fp *fakeParser) StartParse(input Input, fragments []TreeFragment, ranges []Range) PartialParse {
	start := 0
	for _, f := range fragments {
		if f.FromB == 0 && f.ToB > start {
			start = f.ToB
		}
	}
	return &fakePartial{pos: start, target: input.Length(), step: fp.step, perChar: fp.perChar}
}

func sliceInputOf(doc string) Input {
	return NewInput(len(doc), func(from, to int) string { return doc[from:to] })
}

func TestWorkRespectsShortBudgetThenFinishesWithUnbounded(t *testing.T) {
	doc := strings.Repeat("x", 2000)
	p := &fakeParser{step: 50, perChar: 100 * time.Microsecond} // ~5ms/call, ~200ms total
	pc := NewParseContext(p, sliceInputOf(doc))
	pc.SetFocused(true)
	pc.SetViewport(0, len(doc))

	done := pc.Work(10*time.Millisecond, len(doc), nil)
	assert.False(t, done, "a 10ms slice shouldn't finish a ~200ms parse")
	assert.Less(t, pc.TreeLen(), len(doc))

	ok := pc.Work(Unbounded, len(doc), nil)
	require.True(t, ok)
	require.NotNil(t, pc.Tree())
	assert.Equal(t, len(doc), pc.Tree().Length())
}

func TestEnsureSyntaxTreeUnbounded(t *testing.T) {
	doc := strings.Repeat("y", 1500)
	p := &fakeParser{step: 100, perChar: 50 * time.Microsecond}
	pc := NewParseContext(p, sliceInputOf(doc))

	tree := EnsureSyntaxTree(pc, len(doc), Unbounded)
	require.NotNil(t, tree)
	assert.Equal(t, len(doc), tree.Length())
	assert.True(t, SyntaxTreeAvailable(pc, len(doc)))
}

func TestChangesReusesPrefixFragmentAfterTrailingEdit(t *testing.T) {
	doc := strings.Repeat("z", 1000)
	p := &fakeParser{step: 200, perChar: 20 * time.Microsecond}
	pc := NewParseContext(p, sliceInputOf(doc))

	require.True(t, pc.Work(Unbounded, len(doc), nil))
	require.Equal(t, len(doc), pc.TreeLen())

	// Insert two characters at the very end of the document: a fragment
	// spanning the whole old document is still untouched (the insertion
	// point is its own ToB, not strictly inside it), so the next parse
	// only needs to cover the two new characters.
	newDoc := doc + "ab"
	desc := appendDesc(t, len(doc), 2)

	pc.Changes(sliceInputOf(newDoc), desc)
	ok := pc.Work(50*time.Millisecond, len(newDoc), nil)
	assert.True(t, ok, "reusing the prefix fragment should let a short slice finish")
	assert.Equal(t, len(newDoc), pc.TreeLen())
}

func TestForceParsingReportsCoverage(t *testing.T) {
	doc := strings.Repeat("w", 800)
	p := &fakeParser{step: 400, perChar: 10 * time.Microsecond}
	pc := NewParseContext(p, sliceInputOf(doc))

	assert.True(t, ForceParsing(pc, len(doc), Unbounded))
	assert.False(t, ForceParsing(pc, len(doc)+1, time.Millisecond))
}
