package state

import (
	"github.com/google/uuid"

	"github.com/coreseekdev/texere-core/pkg/kinderr"
	"github.com/coreseekdev/texere-core/pkg/selection"
	"github.com/coreseekdev/texere-core/pkg/text"
)

// slotStatus is the bitfield attached to every dynamic slot (field, facet,
// or provider) to track its lazy-resolution state.
type slotStatus uint8

const (
	StatusUnresolved slotStatus = 0
	StatusComputing  slotStatus = 1 << 0
	StatusComputed   slotStatus = 1 << 1
	StatusChanged    slotStatus = 1 << 2
)

// Resolver is passed to a dynamic facet provider's compute function. It
// exposes the state under construction so the provider can read the
// document, selection, or another already-resolved field/facet.
type Resolver struct {
	state *State
}

func (r *Resolver) State() *State                       { return r.state }
func (r *Resolver) Doc() *text.Text                      { return r.state.doc }
func (r *Resolver) Selection() *selection.EditorSelection { return r.state.sel }

// State is an immutable snapshot of the document, selection, and every
// resolved field/facet value. New states are produced only by
// State.Update; each holds a pointer to its predecessor (forming a DAG,
// never the reverse) and the transaction that produced it.
type State struct {
	id          string
	config      *Configuration
	doc         *text.Text
	sel         *selection.EditorSelection
	predecessor *State
	tr          *Transaction // the transaction that produced this state, nil for State.Create's result

	docChanged bool
	selChanged bool

	fieldVal    map[*fieldDef]interface{}
	fieldStatus map[*fieldDef]slotStatus

	facetVal    map[FacetID]interface{}
	facetStatus map[FacetID]slotStatus

	providerVal    map[*facetProvider]interface{}
	providerStatus map[*facetProvider]slotStatus
}

// CreateOptions configures State.Create.
type CreateOptions struct {
	Doc        string
	Selection  *selection.EditorSelection // defaults to a cursor at 0
	Extensions Extension
}

// Create builds the initial state of a document.
func Create(opts CreateOptions) (*State, error) {
	cfg, err := Resolve(opts.Extensions, nil)
	if err != nil {
		return nil, err
	}
	sel := opts.Selection
	if sel == nil {
		sel = selection.Single(0, selection.AssocAfter)
	}
	s := newState(cfg, text.Of(opts.Doc), sel, nil, nil)
	return s, nil
}

func newState(cfg *Configuration, doc *text.Text, sel *selection.EditorSelection, predecessor *State, tr *Transaction) *State {
	return &State{
		id:             uuid.NewString(),
		config:         cfg,
		doc:            doc,
		sel:            sel,
		predecessor:    predecessor,
		tr:             tr,
		fieldVal:       map[*fieldDef]interface{}{},
		fieldStatus:    map[*fieldDef]slotStatus{},
		facetVal:       map[FacetID]interface{}{},
		facetStatus:    map[FacetID]slotStatus{},
		providerVal:    map[*facetProvider]interface{}{},
		providerStatus: map[*facetProvider]slotStatus{},
	}
}

// ID returns this state's opaque identifier, unique to this instance — so
// a JSON snapshot or a sync peer can name exactly which state a change is
// relative to.
func (s *State) ID() string                           { return s.id }
func (s *State) Doc() *text.Text                      { return s.doc }
func (s *State) Selection() *selection.EditorSelection { return s.sel }
func (s *State) Config() *Configuration                { return s.config }

// SliceDoc returns the document text between from and to.
func (s *State) SliceDoc(from, to int) string {
	return s.doc.SliceString(from, to)
}

// fieldValue resolves a field's current value, lazily on first access:
// running create() for the initial state or update() against the
// predecessor's value otherwise.
func (s *State) fieldValue(id FieldID) (interface{}, error) {
	fd := s.config.fieldByID(id)
	if fd == nil {
		return nil, kinderr.New(kinderr.Configuration, "field not present in this configuration")
	}
	v, _, err := s.fieldValueChanged(fd)
	return v, err
}

func (s *State) fieldValueChanged(fd *fieldDef) (interface{}, bool, error) {
	if st := s.fieldStatus[fd]; st&StatusComputed != 0 {
		return s.fieldVal[fd], st&StatusChanged != 0, nil
	} else if st&StatusComputing != 0 {
		return nil, false, kinderrCyclic(fd.id)
	}
	s.fieldStatus[fd] |= StatusComputing

	var val interface{}
	changed := true
	if s.predecessor == nil || s.tr == nil || s.predecessor.config.fieldByID(fd.id) == nil {
		val = fd.create(s)
	} else {
		oldVal, _, err := s.predecessor.fieldValueChanged(fd)
		if err != nil {
			return nil, false, err
		}
		val = fd.update(oldVal, s.tr)
	}

	s.fieldVal[fd] = val
	status := StatusComputed
	if changed {
		status |= StatusChanged
	}
	s.fieldStatus[fd] = status
	return val, changed, nil
}

// facetValue resolves a facet's combined output.
func (s *State) facetValue(id FacetID) (interface{}, error) {
	v, _, err := s.facetValueChanged(id)
	return v, err
}

func (s *State) facetValueChanged(id FacetID) (interface{}, bool, error) {
	if v, ok := s.config.facetStatic[id]; ok {
		return v, false, nil
	}
	plan, ok := s.config.facetPlans[id]
	if !ok {
		// A facet with no provider in this configuration reads as its
		// combine function applied to no values.
		if def := facetRegistry[id]; def != nil {
			return def.combine(nil), false, nil
		}
		return nil, false, kinderr.New(kinderr.Configuration, "facet not present in this configuration")
	}

	if st := s.facetStatus[id]; st&StatusComputed != 0 {
		return s.facetVal[id], st&StatusChanged != 0, nil
	} else if st&StatusComputing != 0 {
		return nil, false, kinderrCyclic(id)
	}
	s.facetStatus[id] |= StatusComputing

	inputs := make([]interface{}, len(plan.inputs))
	anyChanged := false
	for i, in := range plan.inputs {
		if in.static {
			inputs[i] = in.value
			continue
		}
		v, changed, err := s.providerValue(in.provider)
		if err != nil {
			return nil, false, err
		}
		inputs[i] = v
		if changed {
			anyChanged = true
		}
	}

	combined := plan.def.combine(inputs)
	changed := true
	if s.predecessor != nil && !anyChanged {
		if oldCombined, _, err := s.predecessor.facetValueChanged(id); err == nil {
			if plan.def.compare(oldCombined, combined) {
				combined = oldCombined
				changed = false
			}
		}
	}

	s.facetVal[id] = combined
	status := StatusComputed
	if changed {
		status |= StatusChanged
	}
	s.facetStatus[id] = status
	return combined, changed, nil
}

// providerValue resolves one dynamic provider's own output, recomputing
// only when one of its declared Deps (document, selection, or another
// already-resolved field/facet) changed since the predecessor state.
func (s *State) providerValue(p *facetProvider) (interface{}, bool, error) {
	if p.static {
		return p.value, false, nil
	}

	if st := s.providerStatus[p]; st&StatusComputed != 0 {
		return s.providerVal[p], st&StatusChanged != 0, nil
	} else if st&StatusComputing != 0 {
		return nil, false, kinderrCyclic(p.facetID)
	}
	s.providerStatus[p] |= StatusComputing

	needsRecompute := s.predecessor == nil || s.tr == nil
	if !needsRecompute {
		for _, d := range p.deps {
			switch {
			case d.doc:
				if s.docChanged {
					needsRecompute = true
				}
			case d.selection:
				if s.docChanged || s.selChanged {
					needsRecompute = true
				}
			case d.field != nil:
				_, changed, err := s.fieldValueChanged(d.field)
				if err != nil {
					return nil, false, err
				}
				if changed {
					needsRecompute = true
				}
			default: // d.facet set
				_, changed, err := s.facetValueChanged(d.facet)
				if err != nil {
					return nil, false, err
				}
				if changed {
					needsRecompute = true
				}
			}
			if needsRecompute {
				break
			}
		}
	}

	var val interface{}
	changed := needsRecompute
	if !needsRecompute {
		oldVal, _, err := s.predecessor.providerValue(p)
		if err != nil {
			return nil, false, err
		}
		val = oldVal
	} else {
		val = p.compute(&Resolver{state: s})
	}

	s.providerVal[p] = val
	status := StatusComputed
	if changed {
		status |= StatusChanged
	}
	s.providerStatus[p] = status
	return val, changed, nil
}
