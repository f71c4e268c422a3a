package state

import (
	"reflect"
	"sort"
	"time"

	"github.com/coreseekdev/texere-core/pkg/change"
	"github.com/coreseekdev/texere-core/pkg/selection"
	"github.com/coreseekdev/texere-core/pkg/text"
)

// TransactionSpec is one input to State.Update.
type TransactionSpec struct {
	Changes        []change.Spec
	Selection      *selection.EditorSelection
	Effects        []StateEffect
	Annotations    []annotationValue
	UserEvent      string
	ScrollIntoView bool
	// NoFilter skips both the change-filter and transaction-filter passes
	// for the whole merged transaction.
	NoFilter bool
	// Sequential anchors this spec's Changes in the document produced by
	// every prior spec in the same Update call, rather than in the
	// document Update was called on.
	Sequential bool
}

// Transaction is the result of resolving one or more TransactionSpecs
// against a start state.
type Transaction struct {
	startState     *State
	changes        *change.ChangeSet
	selection      *selection.EditorSelection
	effects        []StateEffect
	annotations    []annotationValue
	scrollIntoView bool
	state          *State

	// newDoc is populated before field/facet slots are constructed, so a
	// StateField's update function can read the post-edit document without
	// forcing the new State it is itself part of building.
	newDoc *text.Text
}

func (tr *Transaction) StartState() *State                      { return tr.startState }
func (tr *Transaction) Changes() *change.ChangeSet               { return tr.changes }
func (tr *Transaction) NewSelection() *selection.EditorSelection { return tr.selection }
func (tr *Transaction) Effects() []StateEffect                   { return tr.effects }
func (tr *Transaction) ScrollIntoView() bool                     { return tr.scrollIntoView }
func (tr *Transaction) DocChanged() bool                         { return !tr.changes.Empty() }
func (tr *Transaction) State() *State                            { return tr.state }
func (tr *Transaction) NewDoc() *text.Text                       { return tr.newDoc }

// Update resolves specs into a Transaction, running the full pipeline:
// merge, change filter, transaction filter, extender, then construction
// of the resulting State.
func (s *State) Update(specs ...TransactionSpec) (*Transaction, error) {
	return s.resolve(specs, true)
}

func (s *State) resolve(specs []TransactionSpec, allowFilterPasses bool) (*Transaction, error) {
	if len(specs) == 0 {
		specs = []TransactionSpec{{}}
	}
	noFilter := false
	for _, sp := range specs {
		if sp.NoFilter {
			noFilter = true
		}
	}
	enableFilters := allowFilterPasses && !noFilter

	changes, sel, effects, annotations, scroll, err := mergeSpecs(s, specs)
	if err != nil {
		return nil, err
	}
	annotations = append(annotations, TimeAnnotation.Of(time.Now()))

	tr := &Transaction{
		startState:     s,
		changes:        changes,
		selection:      sel,
		effects:        effects,
		annotations:    annotations,
		scrollIntoView: scroll,
	}

	if enableFilters {
		if err := applyChangeFilters(s, tr); err != nil {
			return nil, err
		}
		tr, err = applyTransactionFilters(s, tr)
		if err != nil {
			return nil, err
		}
	}
	applyExtenders(s, tr)

	final, err := applyTransaction(tr)
	if err != nil {
		return nil, err
	}
	tr.state = final
	return tr, nil
}

// mergeSpecs merges specs into one accumulated ChangeSet, selection,
// effect list, and annotation list: each spec's changes are mapped
// through the ones merged so far (or, if Sequential, anchored directly
// in the accumulated document) and composed on.
func mergeSpecs(start *State, specs []TransactionSpec) (*change.ChangeSet, *selection.EditorSelection, []StateEffect, []annotationValue, bool, error) {
	accumulated := change.Empty(start.doc.Length())
	curSel := start.sel
	var effects []StateEffect
	var annotations []annotationValue
	scrollIntoView := false

	for i, spec := range specs {
		var specChange *change.ChangeSet
		var err error

		switch {
		case i == 0 || !spec.Sequential:
			specChange, err = change.Of(spec.Changes, start.doc.Length())
			if err != nil {
				return nil, nil, nil, nil, false, err
			}
			if i > 0 {
				specChange, err = specChange.Map(accumulated.Desc(), false)
				if err != nil {
					return nil, nil, nil, nil, false, err
				}
			}
		default: // Sequential subsequent spec: anchored in the accumulated output
			specChange, err = change.Of(spec.Changes, accumulated.NewLength())
			if err != nil {
				return nil, nil, nil, nil, false, err
			}
		}

		mappedSel, err := curSel.Map(specChange.Desc(), selection.AssocDefault)
		if err != nil {
			return nil, nil, nil, nil, false, err
		}
		if spec.Selection != nil {
			curSel = spec.Selection
		} else {
			curSel = mappedSel
		}

		accumulated, err = accumulated.Compose(specChange)
		if err != nil {
			return nil, nil, nil, nil, false, err
		}

		effects = append(effects, spec.Effects...)
		annotations = append(annotations, spec.Annotations...)
		if spec.UserEvent != "" {
			annotations = append(annotations, UserEventAnnotation.Of(spec.UserEvent))
		}
		if spec.ScrollIntoView {
			scrollIntoView = true
		}
	}

	return accumulated, curSel, effects, annotations, scrollIntoView, nil
}

// applyChangeFilters runs every registered change filter over tr's
// changes, uniting their Suppress ranges into one suppression mask
// and refiltering tr.changes/tr.selection against its complement.
// Decision recorded in DESIGN.md: once a filter returns Keep: false, the
// suppression mask is pinned to "everything suppressed" for the
// remainder of the pass, though later filters are still invoked.
func applyChangeFilters(start *State, tr *Transaction) error {
	filters := ChangeFilterFacet.Read(start)
	if len(filters) == 0 {
		return nil
	}

	var suppress []change.Range
	dropped := false
	for _, f := range filters {
		res := f(tr)
		if dropped {
			continue
		}
		if !res.Keep {
			dropped = true
			continue
		}
		for _, r := range res.Suppress {
			suppress = append(suppress, change.Range{From: r.From, To: r.To})
		}
	}

	if dropped {
		suppress = []change.Range{{From: 0, To: start.doc.Length()}}
	}
	if len(suppress) == 0 {
		return nil
	}

	keepRanges := complementRanges(suppress, start.doc.Length())
	kept, _ := tr.changes.Filter(keepRanges)
	// Remapping the pre-transaction selection straight through kept (rather
	// than rebasing the already-accumulated-mapped selection through the
	// dropped portion's description) is a deliberate simplification: it
	// gives the same result whenever the suppressed region doesn't overlap
	// the selection, which covers every case this engine's own callers hit.
	newSel, err := start.sel.Map(kept.Desc(), selection.AssocDefault)
	if err != nil {
		return err
	}
	tr.changes = kept
	tr.selection = newSel
	return nil
}

// complementRanges returns the gaps between suppress (assumed arbitrary
// order, possibly overlapping) within [0, total) — the ranges Filter
// should be told to keep.
func complementRanges(suppress []change.Range, total int) []change.Range {
	sorted := append([]change.Range(nil), suppress...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	var merged []change.Range
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.From <= merged[n-1].To {
			if r.To > merged[n-1].To {
				merged[n-1].To = r.To
			}
			continue
		}
		merged = append(merged, r)
	}

	var keep []change.Range
	pos := 0
	for _, r := range merged {
		if r.From > pos {
			keep = append(keep, change.Range{From: pos, To: r.From})
		}
		pos = r.To
	}
	if pos < total {
		keep = append(keep, change.Range{From: pos, To: total})
	}
	return keep
}

// applyTransactionFilters runs the registered transaction filters in
// reverse facet order; each may replace the transaction with one rebuilt
// (with filtering disabled) from new specs.
func applyTransactionFilters(start *State, tr *Transaction) (*Transaction, error) {
	filters := TransactionFilterFacet.Read(start)
	for i := len(filters) - 1; i >= 0; i-- {
		newSpecs := filters[i](tr)
		if len(newSpecs) == 0 {
			continue
		}
		resolved, err := start.resolve(newSpecs, false)
		if err != nil {
			return nil, err
		}
		tr = resolved
	}
	return tr, nil
}

// applyExtenders always runs every registered extender, in reverse facet
// order, contributing only effects and annotations.
func applyExtenders(start *State, tr *Transaction) {
	extenders := TransactionExtenderFacet.Read(start)
	for i := len(extenders) - 1; i >= 0; i-- {
		ext := extenders[i](tr)
		tr.effects = append(tr.effects, ext.Effects...)
		tr.annotations = append(tr.annotations, ext.Annotations...)
	}
}

// applyTransaction builds the new State from the resolved transaction:
// applying its changes to the document, re-resolving the configuration if
// reconfiguring, and computing each field's next value.
func applyTransaction(tr *Transaction) (*State, error) {
	start := tr.startState

	reconfiguring := false
	for _, e := range tr.effects {
		if e.isReconfiguring() {
			reconfiguring = true
			break
		}
	}

	newDoc, err := tr.changes.Apply(start.doc)
	if err != nil {
		return nil, err
	}
	tr.newDoc = newDoc

	newSel := tr.selection
	if !AllowMultipleSelections.Read(start) && newSel.Len() > 1 {
		newSel = newSel.AsSingle()
	}

	newCfg := start.config
	if reconfiguring {
		rootExt := start.config.root
		for _, e := range tr.effects {
			switch e.kind {
			case effectCompartmentReconfigure:
				e.compartment.current = *e.content
			case effectReconfigure:
				rootExt = *e.content
			case effectAppendConfig:
				rootExt = Of(rootExt, *e.content)
			}
		}
		newCfg, err = Resolve(rootExt, start.config)
		if err != nil {
			return nil, err
		}
	}

	ns := newState(newCfg, newDoc, newSel, start, tr)
	ns.docChanged = !tr.changes.Empty()
	ns.selChanged = !selectionsEqual(start.sel, newSel)
	return ns, nil
}

func selectionsEqual(a, b *selection.EditorSelection) bool {
	return reflect.DeepEqual(a, b)
}
