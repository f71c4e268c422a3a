// Package selection implements the cursor/range model: SelectionRange
// with packed bidi/association/goal-column flags, and EditorSelection,
// the sorted, normalised, non-overlapping set of ranges a state carries.
// Adapted from the teacher package's Range/Selection
// (github.com/coreseekdev/texere, pkg/rope/selection.go), whose anchor/head
// gap-indexing model carries over unchanged; the packed-flags encoding and
// normalisation-on-create are new here.
package selection

import (
	"sort"

	"github.com/coreseekdev/texere-core/pkg/change"
	"github.com/coreseekdev/texere-core/pkg/kinderr"
)

// Assoc records which side of an edit a cursor sticks to.
type Assoc int8

const (
	AssocDefault Assoc = 0
	AssocAfter   Assoc = 1
	AssocBefore  Assoc = -1
)

const (
	bidiUnset     = 7
	goalUnsetFlag = 0
)

// flags layout: bits0-2 bidiLevel (7=unset), bit3 assoc (0=After,1=Before),
// bit4 inverted, bits5-30 goalColumn+1 (0=unset).
func packFlags(assoc Assoc, inverted bool, bidiLevel int, goalColumn int) uint32 {
	if bidiLevel < 0 || bidiLevel > 6 {
		bidiLevel = bidiUnset
	}
	var f uint32 = uint32(bidiLevel)
	if assoc == AssocBefore {
		f |= 1 << 3
	}
	if inverted {
		f |= 1 << 4
	}
	if goalColumn >= 0 {
		f |= uint32(goalColumn+1) << 5
	}
	return f
}

func (f uint32Flags) bidiLevel() (int, bool) {
	v := int(f & 0x7)
	return v, v != bidiUnset
}

func (f uint32Flags) assoc() Assoc {
	if f&(1<<3) != 0 {
		return AssocBefore
	}
	return AssocAfter
}

func (f uint32Flags) inverted() bool {
	return f&(1<<4) != 0
}

func (f uint32Flags) goalColumn() (int, bool) {
	v := int(f >> 5)
	if v == goalUnsetFlag {
		return 0, false
	}
	return v - 1, true
}

type uint32Flags = uint32

// SelectionRange is a single (anchor, head) cursor or selection, stored as
// (from, to, flags) with from <= to regardless of direction.
type SelectionRange struct {
	from, to int
	flags    uint32
}

// Cursor returns a zero-width range (a caret) at pos with the given
// association, used to decide which side of a later edit the caret sticks
// to.
func Cursor(pos int, assoc Assoc) SelectionRange {
	return SelectionRange{from: pos, to: pos, flags: packFlags(assoc, false, bidiUnset, -1)}
}

// Range returns a selection spanning anchor and head in either direction;
// goalColumn and bidiLevel may be -1 to leave them unset.
func Range(anchor, head, goalColumn, bidiLevel int) (SelectionRange, error) {
	if anchor < 0 || head < 0 {
		return SelectionRange{}, kinderr.New(kinderr.Bounds, "selection position must be >= 0 (anchor=%d, head=%d)", anchor, head)
	}
	inverted := anchor > head
	from, to := anchor, head
	if inverted {
		from, to = head, anchor
	}
	assoc := AssocAfter
	if inverted {
		assoc = AssocBefore
	}
	return SelectionRange{from: from, to: to, flags: packFlags(assoc, inverted, bidiLevel, goalColumn)}, nil
}

func (r SelectionRange) From() int { return r.from }
func (r SelectionRange) To() int   { return r.to }
func (r SelectionRange) Empty() bool { return r.from == r.to }

// Anchor returns the side of the range that doesn't move when extending.
func (r SelectionRange) Anchor() int {
	if uint32Flags(r.flags).inverted() {
		return r.to
	}
	return r.from
}

// Head returns the side of the range that moves when extending.
func (r SelectionRange) Head() int {
	if uint32Flags(r.flags).inverted() {
		return r.from
	}
	return r.to
}

func (r SelectionRange) Assoc() Assoc { return uint32Flags(r.flags).assoc() }

// BidiLevel returns the range's bidi embedding level and whether it is set.
func (r SelectionRange) BidiLevel() (int, bool) { return uint32Flags(r.flags).bidiLevel() }

// GoalColumn returns the range's vertical-motion goal column, if any.
func (r SelectionRange) GoalColumn() (int, bool) { return uint32Flags(r.flags).goalColumn() }

func (r SelectionRange) withBounds(from, to int, inverted bool) SelectionRange {
	f := uint32Flags(r.flags)
	bidi, _ := f.bidiLevel()
	goal, hasGoal := f.goalColumn()
	if !hasGoal {
		goal = -1
	}
	assoc := f.assoc()
	return SelectionRange{from: from, to: to, flags: packFlags(assoc, inverted, bidi, goal)}
}

// Map remaps r through a change: an empty range stays empty (mapped with
// its own association); a non-empty range's from
// associates right and to associates left, so a deletion spanning the
// whole range collapses it to an empty range rather than reordering it.
func (r SelectionRange) Map(desc *change.ChangeDesc, assoc Assoc) SelectionRange {
	if r.Empty() {
		a := r.Assoc()
		if assoc != AssocDefault {
			a = assoc
		}
		pos, ok := desc.MapPos(r.from, int(a), change.Simple)
		if !ok {
			pos = r.from
		}
		return Cursor(pos, a)
	}
	from, ok1 := desc.MapPos(r.from, int(AssocAfter), change.Simple)
	to, ok2 := desc.MapPos(r.to, int(AssocBefore), change.Simple)
	if !ok1 {
		from = r.from
	}
	if !ok2 {
		to = r.to
	}
	if from > to {
		from, to = to, from
	}
	inverted := uint32Flags(r.flags).inverted()
	return r.withBounds(from, to, inverted)
}

// EditorSelection is a non-empty, sorted, normalised set of ranges.
type EditorSelection struct {
	ranges []SelectionRange
	main   int
}

// Create sorts ranges by From, merges overlapping or touching non-empty
// ranges, and tracks which merged range absorbed mainIndex.
func Create(ranges []SelectionRange, mainIndex int) (*EditorSelection, error) {
	if len(ranges) == 0 {
		return nil, kinderr.New(kinderr.SchemaViolation, "a selection needs at least one range")
	}
	if mainIndex < 0 || mainIndex >= len(ranges) {
		mainIndex = 0
	}

	type indexed struct {
		r   SelectionRange
		idx int
	}
	items := make([]indexed, len(ranges))
	for i, r := range ranges {
		items[i] = indexed{r, i}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].r.from < items[j].r.from })

	var merged []SelectionRange
	var owners [][]int
	for _, it := range items {
		r := it.r
		if n := len(merged); n > 0 {
			last := merged[n-1]
			overlap := r.from < last.to
			touch := r.from == last.to && (!r.Empty() || !last.Empty())
			if overlap || touch {
				to := last.to
				if r.to > to {
					to = r.to
				}
				merged[n-1] = last.withBounds(last.from, to, uint32Flags(r.flags).inverted())
				owners[n-1] = append(owners[n-1], it.idx)
				continue
			}
		}
		merged = append(merged, r)
		owners = append(owners, []int{it.idx})
	}

	finalMain := 0
	for i, own := range owners {
		for _, o := range own {
			if o == mainIndex {
				finalMain = i
			}
		}
	}
	return &EditorSelection{ranges: merged, main: finalMain}, nil
}

// Single returns a selection with one cursor at pos.
func Single(pos int, assoc Assoc) *EditorSelection {
	return &EditorSelection{ranges: []SelectionRange{Cursor(pos, assoc)}, main: 0}
}

func (s *EditorSelection) Ranges() []SelectionRange { return s.ranges }
func (s *EditorSelection) Len() int                 { return len(s.ranges) }
func (s *EditorSelection) Main() SelectionRange      { return s.ranges[s.main] }
func (s *EditorSelection) MainIndex() int            { return s.main }

// AsSingle retains only the main range.
func (s *EditorSelection) AsSingle() *EditorSelection {
	return &EditorSelection{ranges: []SelectionRange{s.ranges[s.main]}, main: 0}
}

// Map remaps every range through desc and re-normalises the result.
func (s *EditorSelection) Map(desc *change.ChangeDesc, assoc Assoc) (*EditorSelection, error) {
	mapped := make([]SelectionRange, len(s.ranges))
	for i, r := range s.ranges {
		mapped[i] = r.Map(desc, assoc)
	}
	return Create(mapped, s.main)
}
