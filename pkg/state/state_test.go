package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreseekdev/texere-core/pkg/change"
)

func TestCreateAndReadField(t *testing.T) {
	changeCount := DefineField(
		func(s *State) int { return 0 },
		func(old int, tr *Transaction) int {
			if tr.DocChanged() {
				return old + 1
			}
			return old
		},
	)

	s, err := Create(CreateOptions{Doc: "hello", Extensions: changeCount.Extension()})
	require.NoError(t, err)
	assert.Equal(t, 0, changeCount.Read(s))

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{{From: 0, To: 0, Insert: "X"}}})
	require.NoError(t, err)
	assert.Equal(t, "Xhello", tr.State().Doc().String())
	assert.Equal(t, 1, changeCount.Read(tr.State()))

	tr2, err := tr.State().Update(TransactionSpec{})
	require.NoError(t, err)
	assert.Equal(t, 1, changeCount.Read(tr2.State()))
}

func TestFacetStaticCombineAndReuse(t *testing.T) {
	s, err := Create(CreateOptions{Doc: "abc", Extensions: Of(TabSize.Of(2))})
	require.NoError(t, err)
	assert.Equal(t, 2, TabSize.Read(s))

	tr, err := s.Update(TransactionSpec{})
	require.NoError(t, err)
	assert.Equal(t, 2, TabSize.Read(tr.State()))
	assert.Same(t, s.config, tr.State().config, "non-reconfiguring update carries over the same Configuration")
}

func TestHighestPrecedenceOverridesTraversalOrder(t *testing.T) {
	s, err := Create(CreateOptions{Doc: "", Extensions: Of(TabSize.Of(2), Highest(TabSize.Of(8)))})
	require.NoError(t, err)
	assert.Equal(t, 8, TabSize.Read(s))
}

func TestLowestPrecedenceLosesToTraversalOrder(t *testing.T) {
	s, err := Create(CreateOptions{Doc: "", Extensions: Of(Lowest(TabSize.Of(8)), TabSize.Of(2))})
	require.NoError(t, err)
	assert.Equal(t, 2, TabSize.Read(s))
}

func TestFacetDefault(t *testing.T) {
	s, err := Create(CreateOptions{Doc: ""})
	require.NoError(t, err)
	assert.Equal(t, 4, TabSize.Read(s))
}

func TestDynamicFacetRecomputesOnDocChange(t *testing.T) {
	lineLen := DefineFacet(
		func(vs []int) int {
			if len(vs) == 0 {
				return 0
			}
			return vs[0]
		},
		func(a, b int) bool { return a == b },
	)
	ext := lineLen.Compute([]Dep{DepDoc()}, func(r *Resolver) int { return r.Doc().Length() })

	s, err := Create(CreateOptions{Doc: "abc", Extensions: ext})
	require.NoError(t, err)
	assert.Equal(t, 3, lineLen.Read(s))

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{{From: 3, To: 3, Insert: "de"}}})
	require.NoError(t, err)
	assert.Equal(t, 5, lineLen.Read(tr.State()))
}

func TestCompartmentReconfigure(t *testing.T) {
	compartment := NewCompartment(TabSize.Of(2))

	s, err := Create(CreateOptions{Doc: "x", Extensions: compartment.Of()})
	require.NoError(t, err)
	assert.Equal(t, 2, TabSize.Read(s))

	tr, err := s.Update(TransactionSpec{Effects: []StateEffect{compartment.Reconfigure(TabSize.Of(8))}})
	require.NoError(t, err)
	assert.Equal(t, 8, TabSize.Read(tr.State()))

	// a fresh resolve of the same tree after reconfigure re-enters the
	// compartment's newly installed content
	s2, err := Create(CreateOptions{Doc: "y", Extensions: compartment.Of()})
	require.NoError(t, err)
	assert.Equal(t, 8, TabSize.Read(s2))
}

func TestChangeFilterSuppressesRange(t *testing.T) {
	filter := ChangeFilterFunc(func(tr *Transaction) ChangeFilterResult {
		return SuppressRanges(Range{From: 0, To: 2})
	})
	s, err := Create(CreateOptions{Doc: "abcdef", Extensions: ChangeFilterFacet.Of(filter)})
	require.NoError(t, err)

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{
		{From: 1, To: 1, Insert: "X"},
		{From: 4, To: 4, Insert: "Y"},
	}})
	require.NoError(t, err)
	// the edit inside [0,2) is dropped, the edit at 4 passes through
	assert.Equal(t, "abcdYef", tr.State().Doc().String())
}

func TestChangeFilterDropsEverything(t *testing.T) {
	filter := ChangeFilterFunc(func(tr *Transaction) ChangeFilterResult {
		return DropChanges()
	})
	s, err := Create(CreateOptions{Doc: "abc", Extensions: ChangeFilterFacet.Of(filter)})
	require.NoError(t, err)

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{{From: 0, To: 0, Insert: "X"}}})
	require.NoError(t, err)
	assert.Equal(t, "abc", tr.State().Doc().String())
}

func TestTransactionFilterReplacesSpecs(t *testing.T) {
	filter := TransactionFilterFunc(func(tr *Transaction) []TransactionSpec {
		return []TransactionSpec{{Changes: []change.Spec{{From: 0, To: 0, Insert: "Z"}}}}
	})
	s, err := Create(CreateOptions{Doc: "abc", Extensions: TransactionFilterFacet.Of(filter)})
	require.NoError(t, err)

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{{From: 0, To: 0, Insert: "Q"}}})
	require.NoError(t, err)
	assert.Equal(t, "Zabc", tr.State().Doc().String())
}

func TestExtenderAddsAnnotation(t *testing.T) {
	extender := TransactionExtenderFunc(func(tr *Transaction) TransactionExtension {
		return TransactionExtension{Annotations: []annotationValue{AddToHistory.Of(true)}}
	})
	s, err := Create(CreateOptions{Doc: "abc", Extensions: TransactionExtenderFacet.Of(extender)})
	require.NoError(t, err)

	tr, err := s.Update(TransactionSpec{})
	require.NoError(t, err)
	v, ok := AddToHistory.get(tr.annotations)
	require.True(t, ok)
	assert.True(t, v)
}

func TestIsUserEventHierarchy(t *testing.T) {
	s, err := Create(CreateOptions{Doc: "abc"})
	require.NoError(t, err)

	tr, err := s.Update(TransactionSpec{UserEvent: "select.pointer"})
	require.NoError(t, err)
	assert.True(t, IsUserEvent(tr, "select"))
	assert.True(t, IsUserEvent(tr, "select.pointer"))
	assert.False(t, IsUserEvent(tr, "select.pointer.extra"))
	assert.False(t, IsUserEvent(tr, "delete"))
}

func TestJSONRoundTrip(t *testing.T) {
	s, err := Create(CreateOptions{Doc: "hello world"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	data, err := s.ToJSON()
	require.NoError(t, err)

	back, err := FromJSON(data, Extension{})
	require.NoError(t, err)
	assert.Equal(t, "hello world", back.Doc().String())
	assert.Equal(t, s.Selection().Ranges()[0].From(), back.Selection().Ranges()[0].From())
	assert.Equal(t, s.ID(), back.ID())
}

func TestEachStateGetsADistinctID(t *testing.T) {
	s, err := Create(CreateOptions{Doc: "abc"})
	require.NoError(t, err)

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{{From: 0, To: 0, Insert: "X"}}})
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), tr.State().ID())
}

func TestListFacetConcatenates(t *testing.T) {
	type marker string
	items := DefineListFacet[marker]()
	s, err := Create(CreateOptions{Doc: "", Extensions: Of(items.Of("a"), items.Of("b"))})
	require.NoError(t, err)
	assert.ElementsMatch(t, []marker{"a", "b"}, items.Read(s))
}

func TestFieldUpdateReadsNewDoc(t *testing.T) {
	length := DefineField(
		func(s *State) int { return s.Doc().Length() },
		func(old int, tr *Transaction) int { return tr.NewDoc().Length() },
	)
	s, err := Create(CreateOptions{Doc: "abc", Extensions: length.Extension()})
	require.NoError(t, err)
	assert.Equal(t, 3, length.Read(s))

	tr, err := s.Update(TransactionSpec{Changes: []change.Spec{{From: 3, To: 3, Insert: "de"}}})
	require.NoError(t, err)
	assert.Equal(t, 5, length.Read(tr.State()))
}
