package state

import (
	"reflect"

	"github.com/coreseekdev/texere-core/pkg/kinderr"
)

// facetInputSpec is one ordered contribution to a facet's combine call:
// either a baked-in static value, or a reference to a dynamic provider
// that must be computed per state.
type facetInputSpec struct {
	static   bool
	value    interface{}
	provider *facetProvider
}

// facetPlan is the resolved recipe for one facet across a Configuration,
// built by Phase B of Resolve().
type facetPlan struct {
	def    *facetDef
	inputs []facetInputSpec
}

// Configuration is the output of resolving an Extension tree: an ordered
// list of fields (Phase B's per-field dynamic slots) and, per facet
// actually referenced, either a fixed combined value (the "static
// address" case) or a facetPlan to recombine lazily.
type Configuration struct {
	root             Extension
	fields           []*fieldDef
	facetOrder       []FacetID
	facetDefs        map[FacetID]*facetDef
	facetStatic      map[FacetID]interface{}
	facetStaticInput map[FacetID][]interface{} // raw provider values behind facetStatic, for sameStaticSet
	facetPlans       map[FacetID]*facetPlan
}

func (c *Configuration) fieldByID(id FieldID) *fieldDef {
	for _, f := range c.fields {
		if f.id == id {
			return f
		}
	}
	return nil
}

// Resolve runs the two-phase extension resolver over root, producing a
// Configuration. prev, if non-nil, is consulted
// when a facet's providers are all static: an identical static value set
// lets the new configuration reuse the previous facet output verbatim.
func Resolve(root Extension, prev *Configuration) (*Configuration, error) {
	fl := newFlattener()
	if err := fl.flatten(root, PrecDefault); err != nil {
		return nil, err
	}

	fields := make([]*fieldDef, 0, len(fl.fieldOrder))
	for _, e := range fl.orderedFields() {
		fields = append(fields, e.def)
	}

	byFacet := map[FacetID][]*facetProvider{}
	var facetOrder []FacetID
	for _, e := range fl.orderedProviders() {
		p := e.provider
		if _, seen := byFacet[p.facetID]; !seen {
			facetOrder = append(facetOrder, p.facetID)
		}
		byFacet[p.facetID] = append(byFacet[p.facetID], p)
	}

	cfg := &Configuration{
		root:             root,
		fields:           fields,
		facetOrder:       facetOrder,
		facetDefs:        map[FacetID]*facetDef{},
		facetStatic:      map[FacetID]interface{}{},
		facetStaticInput: map[FacetID][]interface{}{},
		facetPlans:       map[FacetID]*facetPlan{},
	}

	for _, fid := range facetOrder {
		providers := byFacet[fid]
		def := fl.facetDefByID[fid]
		cfg.facetDefs[fid] = def

		allStatic := true
		for _, p := range providers {
			if !p.static {
				allStatic = false
				break
			}
		}

		if allStatic {
			values := make([]interface{}, len(providers))
			for i, p := range providers {
				values[i] = p.value
			}
			if prev != nil {
				if old, ok := prev.facetStatic[fid]; ok && sameStaticSet(prev.facetStaticInput[fid], values) {
					cfg.facetStatic[fid] = old
					cfg.facetStaticInput[fid] = prev.facetStaticInput[fid]
					continue
				}
			}
			cfg.facetStatic[fid] = def.combine(values)
			cfg.facetStaticInput[fid] = values
			continue
		}

		plan := &facetPlan{def: def}
		for _, p := range providers {
			if p.static {
				plan.inputs = append(plan.inputs, facetInputSpec{static: true, value: p.value})
			} else {
				plan.inputs = append(plan.inputs, facetInputSpec{provider: p})
			}
		}
		cfg.facetPlans[fid] = plan
	}

	return cfg, nil
}

// sameStaticSet reports whether a facet's all-static provider values match,
// value for value and in order, the set the previous configuration
// combined — the condition under which the resolver can reuse the old
// output instead of recombining.
func sameStaticSet(prevValues, values []interface{}) bool {
	if prevValues == nil || len(prevValues) != len(values) {
		return false
	}
	for i := range values {
		if !reflect.DeepEqual(prevValues[i], values[i]) {
			return false
		}
	}
	return true
}

// flattener walks an Extension tree depth-first (Phase A), recording
// every field and facet provider it finds in traversal order, tagged with
// the precedence in effect at that point.
type flattener struct {
	fieldOrder        []fieldOrderEntry
	fieldPlacement    map[*fieldDef]*placement
	providerOrder     []providerOrderEntry
	providerPlacement map[*facetProvider]*placement
	facetDefByID      map[FacetID]*facetDef
	compartmentsSeen  map[*Compartment]bool
}

type fieldOrderEntry struct {
	def *fieldDef
	pl  *placement
}

type providerOrderEntry struct {
	provider *facetProvider
	pl       *placement
}

// placement records where a node currently sits in the flattened order, so
// a later, higher-precedence re-visit of the same node can tombstone the
// earlier slot instead of leaving a duplicate.
type placement struct {
	prec    Precedence
	removed bool
}

func newFlattener() *flattener {
	return &flattener{
		fieldPlacement:    map[*fieldDef]*placement{},
		providerPlacement: map[*facetProvider]*placement{},
		facetDefByID:      map[FacetID]*facetDef{},
		compartmentsSeen:  map[*Compartment]bool{},
	}
}

func (fl *flattener) flatten(e Extension, prec Precedence) error {
	switch e.kind {
	case extSeq:
		for _, c := range e.seq {
			if err := fl.flatten(c, prec); err != nil {
				return err
			}
		}
	case extPrecedence:
		if err := fl.flatten(*e.content, e.prec); err != nil {
			return err
		}
	case extField:
		fl.addField(e.field, prec)
	case extFacetProvider:
		fl.facetDefByID[e.provider.facetID] = facetDefFor(e.provider)
		fl.addProvider(e.provider, prec)
	case extCompartment:
		if fl.compartmentsSeen[e.compartment] {
			return kinderr.New(kinderr.Configuration, "compartment %s registered twice in one configuration", e.compartment.ID())
		}
		fl.compartmentsSeen[e.compartment] = true
		if err := fl.flatten(e.compartment.current, prec); err != nil {
			return err
		}
	}
	return nil
}

// facetDefFor recovers a provider's owning *facetDef. Providers don't hold
// it directly (only its id, so two FacetOf[T] handles for the same facet
// stay interchangeable); the def is threaded in by whichever FacetOf
// built the provider, recorded in a side table populated at definition
// time so the resolver never needs the original typed handle again.
func facetDefFor(p *facetProvider) *facetDef {
	return facetRegistry[p.facetID]
}

var facetRegistry = map[FacetID]*facetDef{}

// orderedFields buckets the traversal-order fieldOrder by precedence and
// concatenates the buckets Highest to Lowest, so an override wrapped in
// Highest/High/Low/Lowest always lands in the right place regardless of
// where it sat in the extension tree. Tombstoned entries are dropped.
func (fl *flattener) orderedFields() []fieldOrderEntry {
	var buckets [precedenceCount][]fieldOrderEntry
	for _, e := range fl.fieldOrder {
		if e.pl.removed {
			continue
		}
		buckets[e.pl.prec] = append(buckets[e.pl.prec], e)
	}
	var out []fieldOrderEntry
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

// orderedProviders does the same bucketing for providerOrder.
func (fl *flattener) orderedProviders() []providerOrderEntry {
	var buckets [precedenceCount][]providerOrderEntry
	for _, e := range fl.providerOrder {
		if e.pl.removed {
			continue
		}
		buckets[e.pl.prec] = append(buckets[e.pl.prec], e)
	}
	var out []providerOrderEntry
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func (fl *flattener) addField(fd *fieldDef, prec Precedence) {
	if p, ok := fl.fieldPlacement[fd]; ok {
		if prec < p.prec {
			p.removed = true
		} else {
			return
		}
	}
	pl := &placement{prec: prec}
	fl.fieldOrder = append(fl.fieldOrder, fieldOrderEntry{def: fd, pl: pl})
	fl.fieldPlacement[fd] = pl
}

func (fl *flattener) addProvider(p *facetProvider, prec Precedence) {
	if pl, ok := fl.providerPlacement[p]; ok {
		if prec < pl.prec {
			pl.removed = true
		} else {
			return
		}
	}
	pl := &placement{prec: prec}
	fl.providerOrder = append(fl.providerOrder, providerOrderEntry{provider: p, pl: pl})
	fl.providerPlacement[p] = pl
}
