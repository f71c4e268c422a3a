package change

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/coreseekdev/texere-core/pkg/text"
)

// FromDiff builds the ChangeSet that turns oldText into newText, computed
// via a Myers diff (github.com/sergi/go-diff/diffmatchpatch) and coalesced
// into replace segments. Use this to build a ChangeSet directly from two
// document snapshots (e.g. an external edit or a collaborator's
// full-document update) rather than from explicit edit specs.
func FromDiff(oldText, newText string) (*ChangeSet, error) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	docLen := text.Of(oldText).Length()
	var specs []Spec
	pos := 0
	i := 0
	for i < len(diffs) {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += text.Of(d.Text).Length()
			i++
		case diffmatchpatch.DiffDelete:
			delLen := text.Of(d.Text).Length()
			insert := ""
			j := i + 1
			if j < len(diffs) && diffs[j].Type == diffmatchpatch.DiffInsert {
				insert = diffs[j].Text
				j++
			}
			specs = append(specs, Spec{From: pos, To: pos + delLen, Insert: insert})
			pos += delLen
			i = j
		case diffmatchpatch.DiffInsert:
			specs = append(specs, Spec{From: pos, To: pos, Insert: d.Text})
			i++
		}
	}
	return Of(specs, docLen)
}
