package state

import "github.com/coreseekdev/texere-core/pkg/kinderr"

// Precedence orders competing extensions within the same facet. Lower
// numeric value wins: PrecHighest beats PrecLowest.
type Precedence int

const (
	PrecHighest Precedence = iota
	PrecHigh
	PrecDefault
	PrecLow
	PrecLowest
	precedenceCount
)

// FacetID identifies a Facet across configurations; stable for the life
// of the process, assigned by a single monotonic id generator.
type FacetID int64

// Dep names something a dynamic facet provider or field update reads, used
// by the resolver to decide when a dynamic slot must recompute.
type Dep struct {
	doc       bool
	selection bool
	field     *fieldDef
	facet     FacetID
}

// DepDoc marks a dynamic provider as sensitive to document changes.
func DepDoc() Dep { return Dep{doc: true} }

// DepSelection marks a dynamic provider as sensitive to selection changes
// (and, implicitly, to document changes too, since a selection is
// meaningless without the document it addresses).
func DepSelection() Dep { return Dep{selection: true} }

// DepField marks a dynamic provider as depending on a field's current
// value; the field must already have been resolved into the configuration.
func DepField[T any](f *StateFieldOf[T]) Dep { return Dep{field: f.def} }

// DepFacet marks a dynamic provider as depending on another facet's
// resolved output.
func DepFacet[T any](f *FacetOf[T]) Dep { return Dep{facet: f.def.id} }

// facetProvider is one contribution to a facet: either a fixed value or a
// computation over named dependencies.
type facetProvider struct {
	facetID FacetID
	static  bool
	value   interface{}            // valid when static
	deps    []Dep                  // valid when dynamic
	compute func(*Resolver) interface{} // valid when dynamic
}

// facetDef is the untyped core of a Facet. The typed facade, FacetOf[T],
// wraps every value in and out of interface{}.
type facetDef struct {
	id      FacetID
	combine func([]interface{}) interface{}
	compare func(a, b interface{}) bool
}

// FacetOf is a typed handle to a declared facet of value type T. Construct
// one with DefineFacet; read its resolved value with Read; contribute to it
// with Of or Compute extensions.
type FacetOf[T any] struct {
	def *facetDef
}

// DefineFacet declares a new facet with a combine function (how multiple
// providers' values reduce to one) and a compare function. For a facet with
// dynamic providers, compare is consulted only when none of its inputs
// changed in the transaction: the recombined value is then replaced by the
// previous one if the two compare equal. When an input did change, the
// recombined value is written back without consulting compare.
func DefineFacet[T any](combine func([]T) T, compare func(a, b T) bool) *FacetOf[T] {
	def := &facetDef{
		id: FacetID(allocID()),
		combine: func(vs []interface{}) interface{} {
			typed := make([]T, len(vs))
			for i, v := range vs {
				typed[i] = v.(T)
			}
			return combine(typed)
		},
		compare: func(a, b interface{}) bool {
			return compare(a.(T), b.(T))
		},
	}
	facetRegistry[def.id] = def
	return &FacetOf[T]{def: def}
}

// Of returns a static extension contributing value to the facet.
func (f *FacetOf[T]) Of(value T) Extension {
	return Extension{kind: extFacetProvider, provider: &facetProvider{facetID: f.def.id, static: true, value: value}}
}

// Compute returns a dynamic extension: compute is re-run whenever one of
// deps changes, and its result is read back through r by the combiner.
func (f *FacetOf[T]) Compute(deps []Dep, compute func(r *Resolver) T) Extension {
	p := &facetProvider{
		facetID: f.def.id,
		static:  false,
		deps:    deps,
		compute: func(r *Resolver) interface{} { return compute(r) },
	}
	return Extension{kind: extFacetProvider, provider: p}
}

// Read returns the facet's resolved value in s, computing any stale
// dynamic slots on first access.
func (f *FacetOf[T]) Read(s *State) T {
	v, err := s.facetValue(f.def.id)
	if err != nil {
		panic(err) // a facet read outside a resolved Configuration is a programming error
	}
	return v.(T)
}

func kinderrCyclic(id interface{}) error {
	return kinderr.New(kinderr.Configuration, "cyclic dependency resolving slot %v", id)
}

// ListFacet is a facet whose providers each contribute one element to a
// flat list, rather than reducing to a single combined value — the shape
// used for languageData, changeFilter, transactionFilter and
// transactionExtender.
type ListFacet[E any] struct {
	inner *FacetOf[[]E]
}

// DefineListFacet declares a new list-shaped facet.
func DefineListFacet[E any]() *ListFacet[E] {
	inner := DefineFacet(
		func(vs [][]E) []E {
			var out []E
			for _, v := range vs {
				out = append(out, v...)
			}
			return out
		},
		func(a, b []E) bool { return false }, // lists never short-circuit a recombination
	)
	return &ListFacet[E]{inner: inner}
}

// Of contributes one element statically.
func (lf *ListFacet[E]) Of(e E) Extension { return lf.inner.Of([]E{e}) }

// Compute contributes one element, recomputed when deps change.
func (lf *ListFacet[E]) Compute(deps []Dep, compute func(r *Resolver) E) Extension {
	return lf.inner.Compute(deps, func(r *Resolver) []E { return []E{compute(r)} })
}

// Read returns every element contributed to the facet, in resolved order.
func (lf *ListFacet[E]) Read(s *State) []E { return lf.inner.Read(s) }
