package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfAndString(t *testing.T) {
	txt := Of("hello\nworld")
	assert.Equal(t, "hello\nworld", txt.String())
	assert.Equal(t, 11, txt.Length())
	assert.Equal(t, 2, txt.Lines())
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, 0, Empty.Length())
	assert.Equal(t, 1, Empty.Lines())
	assert.Equal(t, "", Empty.String())
}

func TestSliceRoundTrip(t *testing.T) {
	txt := Of("the quick brown fox")
	for from := 0; from <= txt.Length(); from++ {
		for to := from; to <= txt.Length(); to++ {
			s, err := txt.Slice(from, to)
			require.NoError(t, err)
			assert.Equal(t, to-from, s.Length())
		}
	}
}

func TestReplaceFullDocument(t *testing.T) {
	txt := Of("abcdef")
	replaced, err := txt.Replace(0, txt.Length(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", replaced.String())
}

func TestLineAndLineAt(t *testing.T) {
	txt := Of("one\ntwo\nthree")
	l1, err := txt.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "one", l1.Text)
	assert.Equal(t, 0, l1.From)
	assert.Equal(t, 3, l1.To)

	l2, err := txt.Line(2)
	require.NoError(t, err)
	assert.Equal(t, "two", l2.Text)

	l3, err := txt.Line(3)
	require.NoError(t, err)
	assert.Equal(t, "three", l3.Text)
	assert.Equal(t, txt.Length(), l3.To)

	at, err := txt.LineAt(5) // inside "two"
	require.NoError(t, err)
	assert.Equal(t, 2, at.Number)
}

func TestLineAtBoundaries(t *testing.T) {
	txt := Of("ab\ncd")
	at, err := txt.LineAt(2) // just before the '\n'
	require.NoError(t, err)
	assert.Equal(t, 1, at.Number)

	at, err = txt.LineAt(3) // just after the '\n'
	require.NoError(t, err)
	assert.Equal(t, 2, at.Number)
}

func TestInsertAndDelete(t *testing.T) {
	txt := Of("hello")
	ins, err := txt.Insert(5, " world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", ins.String())

	del, err := ins.Delete(5, 11)
	require.NoError(t, err)
	assert.Equal(t, "hello", del.String())
}

func TestReplaceAcrossLines(t *testing.T) {
	txt := Of("line one\nline two\nline three")
	r, err := txt.Replace(5, 14, "X")
	require.NoError(t, err)
	assert.Equal(t, "line Xtwo\nline three", r.String())
	assert.Equal(t, 2, r.Lines())
}

func TestAppend(t *testing.T) {
	a := Of("foo")
	b := Of("bar\nbaz")
	c := a.Append(b)
	assert.Equal(t, "foobar\nbaz", c.String())
}

func TestBoundsErrors(t *testing.T) {
	txt := Of("abc")
	_, err := txt.Slice(-1, 2)
	require.Error(t, err)
	_, err = txt.Slice(2, 10)
	require.Error(t, err)
	_, err = txt.Line(0)
	require.Error(t, err)
	_, err = txt.Line(99)
	require.Error(t, err)
}

func TestEqComparesContent(t *testing.T) {
	a := Of("abc\ndef")
	b := Of("abc\ndef")
	assert.True(t, a.Eq(b))
	c := Of("abc\ndeg")
	assert.False(t, a.Eq(c))
}

func TestLargeDocumentSpine(t *testing.T) {
	// A large multi-leaf, multi-branch document; insert near the start
	// should leave the tail content byte-identical.
	lines := make([]string, 0, 5000)
	for i := 0; i < 5000; i++ {
		lines = append(lines, "line content here")
	}
	txt := OfLines(lines)
	require.Equal(t, 5000, txt.Lines())

	edited, err := txt.Replace(0, 4, "XXXX")
	require.NoError(t, err)
	assert.Equal(t, 5000, edited.Lines())
	lastOriginal, _ := txt.Line(5000)
	lastEdited, _ := edited.Line(5000)
	assert.Equal(t, lastOriginal.Text, lastEdited.Text)
}

func TestIterAlternatesContentAndBreaks(t *testing.T) {
	txt := Of("a\nb\nc")
	it := txt.Iter(Forward)
	var kinds []TokenKind
	var values []string
	for it.Next() {
		v := it.Value()
		kinds = append(kinds, v.Kind)
		values = append(values, v.Value)
	}
	assert.Equal(t, []TokenKind{Content, LineBreak, Content, LineBreak, Content}, kinds)
	assert.Equal(t, []string{"a", "", "b", "", "c"}, values)
}

func TestIterLines(t *testing.T) {
	txt := Of("a\nb\nc")
	it := txt.IterLines()
	var got []string
	for it.Next() {
		got = append(got, it.Value().Value)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestUTF16SurrogatePairLength(t *testing.T) {
	// U+1F600 (grinning face) is outside the BMP and costs 2 UTF-16 units.
	txt := Of("a\U0001F600b")
	assert.Equal(t, 4, txt.Length())
}
