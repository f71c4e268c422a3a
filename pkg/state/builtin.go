package state

// Built-in facets.
var (
	// TabSize combines by taking the first contributed value, defaulting
	// to 4 when nothing contributes.
	TabSize = DefineFacet(
		func(vs []int) int {
			if len(vs) == 0 {
				return 4
			}
			return vs[0]
		},
		func(a, b int) bool { return a == b },
	)

	// LineSeparator combines by taking the first contributed value; ""
	// means "auto-detect from the document".
	LineSeparator = DefineFacet(
		func(vs []string) string {
			for _, v := range vs {
				if v != "" {
					return v
				}
			}
			return ""
		},
		func(a, b string) bool { return a == b },
	)

	// ReadOnly combines by "any true".
	ReadOnly = DefineFacet(anyTrue, boolsEqual)

	// AllowMultipleSelections combines by "any true".
	AllowMultipleSelections = DefineFacet(anyTrue, boolsEqual)

	// Phrases merges per-key translation tables, first contributor wins
	// a given key.
	Phrases = DefineFacet(
		func(vs []map[string]string) map[string]string {
			merged := map[string]string{}
			for _, m := range vs {
				for k, v := range m {
					if _, exists := merged[k]; !exists {
						merged[k] = v
					}
				}
			}
			return merged
		},
		func(a, b map[string]string) bool {
			if len(a) != len(b) {
				return false
			}
			for k, v := range a {
				if b[k] != v {
					return false
				}
			}
			return true
		},
	)

	// LanguageData is a list of functions consulted to answer language-
	// mode queries (comment syntax, indent unit…) for a position.
	LanguageData = DefineListFacet[LanguageDataProvider]()

	// ChangeFilterFacet holds every registered change filter, consulted
	// in facet order during the transaction pipeline's step 2.
	ChangeFilterFacet = DefineListFacet[ChangeFilterFunc]()

	// TransactionFilterFacet holds every registered transaction filter,
	// consulted in reverse facet order during step 3.
	TransactionFilterFacet = DefineListFacet[TransactionFilterFunc]()

	// TransactionExtenderFacet holds every registered extender,
	// consulted in reverse facet order during step 4.
	TransactionExtenderFacet = DefineListFacet[TransactionExtenderFunc]()
)

func anyTrue(vs []bool) bool {
	for _, v := range vs {
		if v {
			return true
		}
	}
	return false
}

func boolsEqual(a, b bool) bool { return a == b }

// LanguageDataProvider answers a languageData query for a position in s.
type LanguageDataProvider func(s *State, pos int) map[string]interface{}

// ChangeFilterFunc is a registered change filter, consulted during the
// transaction pipeline's change-filter pass.
type ChangeFilterFunc func(tr *Transaction) ChangeFilterResult

// ChangeFilterResult is what a ChangeFilterFunc returns: Keep true passes
// the changes through untouched; Keep false drops every change; a non-nil
// Suppress names ranges (in the pre-transaction document) whose changes
// are dropped while the rest pass through.
type ChangeFilterResult struct {
	Keep     bool
	Suppress []Range
}

// KeepChanges is the default, pass-everything ChangeFilterResult.
func KeepChanges() ChangeFilterResult { return ChangeFilterResult{Keep: true} }

// DropChanges drops every change in the transaction.
func DropChanges() ChangeFilterResult { return ChangeFilterResult{Keep: false} }

// SuppressRanges keeps the transaction but drops the parts of its changes
// that fall inside ranges; the rest of each change passes through.
func SuppressRanges(ranges ...Range) ChangeFilterResult {
	return ChangeFilterResult{Keep: true, Suppress: ranges}
}

// Range names a half-open position range in the pre-transaction document.
type Range struct{ From, To int }

// TransactionFilterFunc is a registered transaction filter, consulted
// during the transaction pipeline's filter pass. Returning nil keeps tr
// unchanged; returning one or more specs replaces it with the
// (re-resolved) transactions built from them.
type TransactionFilterFunc func(tr *Transaction) []TransactionSpec

// TransactionExtenderFunc is a registered extender: it may contribute
// additional effects and annotations, never changes or a selection.
type TransactionExtenderFunc func(tr *Transaction) TransactionExtension

// TransactionExtension is the contribution an extender makes to a
// transaction already past filtering.
type TransactionExtension struct {
	Effects     []StateEffect
	Annotations []annotationValue
}
