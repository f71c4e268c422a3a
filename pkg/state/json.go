package state

import (
	"encoding/json"

	"github.com/coreseekdev/texere-core/pkg/selection"
)

// jsonEnvelope is the wire shape for a State snapshot, following the
// teacher's request/response envelope style (pkg/transport/handler.go):
// a flat struct with explicit json tags, no nested interface{} payloads
// beyond what the format actually needs.
type jsonEnvelope struct {
	ID        string        `json:"id"`
	Doc       string        `json:"doc"`
	Selection jsonSelection `json:"selection"`
}

type jsonSelection struct {
	Main   int         `json:"main"`
	Ranges []jsonRange `json:"ranges"`
}

type jsonRange struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// ToJSON serialises the document and selection into a wire-transmissible
// snapshot. Configuration (fields, facets, extensions) is not
// serialisable — it is Go closures and functions — and must be supplied
// again by the caller when reconstructing a state with FromJSON.
func (s *State) ToJSON() ([]byte, error) {
	env := jsonEnvelope{ID: s.id, Doc: s.doc.String()}
	for i, r := range s.sel.Ranges() {
		env.Selection.Ranges = append(env.Selection.Ranges, jsonRange{Anchor: r.Anchor(), Head: r.Head()})
		if i == s.sel.MainIndex() {
			env.Selection.Main = i
		}
	}
	return json.Marshal(env)
}

// FromJSON reconstructs a State from data produced by ToJSON, resolving
// extensions fresh (extensions themselves carry no serialisable identity).
func FromJSON(data []byte, extensions Extension) (*State, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	ranges := make([]selection.SelectionRange, 0, len(env.Selection.Ranges))
	for _, r := range env.Selection.Ranges {
		sr, err := selection.Range(r.Anchor, r.Head, -1, -1)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, sr)
	}

	var sel *selection.EditorSelection
	var err error
	if len(ranges) == 0 {
		sel = selection.Single(0, selection.AssocAfter)
	} else {
		sel, err = selection.Create(ranges, env.Selection.Main)
		if err != nil {
			return nil, err
		}
	}

	s, err := Create(CreateOptions{Doc: env.Doc, Selection: sel, Extensions: extensions})
	if err != nil {
		return nil, err
	}
	if env.ID != "" {
		s.id = env.ID // preserve the snapshot's identity across the round trip
	}
	return s, nil
}
