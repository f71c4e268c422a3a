package heightmap

import (
	"sort"

	"github.com/coreseekdev/texere-core/pkg/change"
	"github.com/coreseekdev/texere-core/pkg/text"
)

// Range is a half-open [From,To) span of character positions.
type Range struct{ From, To int }

// spanLeaf pairs a surviving leaf with its character span in whichever
// document coordinate space is current at that point of ApplyChanges.
type spanLeaf struct {
	from, to int
	n        node
}

// ApplyChanges rebuilds the height map across an edit: surviving leaves
// are remapped through desc (mirroring pkg/parser's fragment reuse); a
// leaf an edit touches instead contributes its own outward-mapped span
// to the set of ranges that need rebuilding, so no region of the
// document is ever silently dropped. changedRanges carries additional
// host-supplied spans whose decorations changed without a document
// edit. Every range is expanded to enclosing lines
// and processed from the end backwards so earlier offsets stay valid;
// each is rebuilt from decos by a NodeBuilder that walks lines and
// decoration spans. UpdateHeight then recomputes top-down and marks
// every node fresh.
func ApplyChanges(hm *HeightMap, desc *change.ChangeDesc, decos []DecorationSet, newDoc *text.Text, oracle HeightOracle, changedRanges []Range) *HeightMap {
	var kept []spanLeaf
	toRebuild := append([]Range(nil), changedRanges...)

	pos := 0
	for _, lf := range collectLeaves(hm.root) {
		from, to := pos, pos+lf.length()
		pos = to
		newFrom, okF := desc.MapPos(from, -1, change.Simple)
		newTo, okT := desc.MapPos(to, 1, change.Simple)
		// An insertion exactly at a leaf's edge does not touch the leaf but
		// widens its outward-mapped span, so that leaf is rebuilt too.
		if desc.TouchesRange(from, to) || newTo-newFrom != to-from {
			if newTo > newFrom {
				toRebuild = append(toRebuild, Range{From: newFrom, To: newTo})
			}
			continue
		}
		if !okF || !okT || newFrom > newTo {
			continue
		}
		kept = append(kept, spanLeaf{from: newFrom, to: newTo, n: lf})
	}

	expanded := expandToLines(newDoc, toRebuild)

	for i := len(expanded) - 1; i >= 0; i-- {
		r := expanded[i]
		survivors := kept[:0:0]
		for _, sl := range kept {
			if sl.to <= r.From || sl.from >= r.To {
				survivors = append(survivors, sl)
			}
		}
		survivors = append(survivors, spanLeaf{from: r.From, to: r.To, n: buildRange(newDoc, decos, r.From, r.To)})
		kept = survivors
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].from < kept[j].from })
	leaves := make([]node, len(kept))
	for i, sl := range kept {
		leaves[i] = sl.n
	}
	if len(leaves) == 0 {
		leaves = []node{NewGap(newDoc.Length(), maxInt(newDoc.Lines(), 1))}
	}

	out := &HeightMap{root: buildBalancedTree(leaves)}
	out.UpdateHeight(oracle, 0, true, nil)
	return out
}

// expandToLines widens each range to the document lines it touches, then
// merges overlapping results, so a rebuild never splits a line across
// the kept/rebuilt boundary.
func expandToLines(doc *text.Text, ranges []Range) []Range {
	var expanded []Range
	for _, r := range ranges {
		from := clampInt(r.From, 0, doc.Length())
		to := clampInt(r.To, 0, doc.Length())
		fromLine, err1 := doc.LineAt(from)
		toLine, err2 := doc.LineAt(maxInt(to-1, from))
		if err1 != nil || err2 != nil {
			continue
		}
		expanded = append(expanded, Range{From: fromLine.From, To: toLine.To})
	}
	sort.Slice(expanded, func(i, j int) bool { return expanded[i].From < expanded[j].From })

	var merged []Range
	for _, r := range expanded {
		if n := len(merged); n > 0 && r.From <= merged[n-1].To {
			if r.To > merged[n-1].To {
				merged[n-1].To = r.To
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// buildRange is the NodeBuilder that rebuilds one span: it walks
// [from,to) line by line, consulting decos for block/replace/line-level
// spans, and
// accumulates runs of plain lines into a single Gap so unremarkable text
// stays compact.
func buildRange(doc *text.Text, decos []DecorationSet, from, to int) node {
	if from >= to {
		return NewGap(0, 0)
	}

	var parts []node
	plainChars, plainLines := 0, 0
	flushPlain := func() {
		if plainLines > 0 {
			parts = append(parts, NewGap(plainChars, plainLines))
			plainChars, plainLines = 0, 0
		}
	}

	startLine, err := doc.LineAt(from)
	if err != nil {
		return NewGap(to-from, 1)
	}
	endLine, err := doc.LineAt(maxInt(to-1, from))
	if err != nil {
		endLine = startLine
	}

	for lineNo := startLine.Number; lineNo <= endLine.Number; lineNo++ {
		line, lerr := doc.Line(lineNo)
		if lerr != nil {
			continue
		}
		lineFrom, lineTo := maxInt(line.From, from), minInt(line.To, to)
		if lineFrom > lineTo {
			continue
		}

		widgetBreaks := 0
		replaced, replaceHeight := false, 0.0
		for _, sp := range collectSpans(decos, lineFrom, lineTo) {
			switch sp.Kind {
			case DecoLine:
				widgetBreaks += sp.LineBreaks
			case DecoReplace:
				replaced = true
				replaceHeight = sp.Height
			case DecoBlockWidget:
				flushPlain()
				parts = append(parts, NewBlockWidget(sp.Height))
			}
		}

		switch {
		case replaced:
			flushPlain()
			parts = append(parts, NewBlockWidget(replaceHeight))
		case widgetBreaks > 0:
			flushPlain()
			parts = append(parts, NewTextBlock(lineTo-lineFrom, widgetBreaks))
		default:
			plainChars += lineTo - lineFrom
			plainLines++
			if lineNo < endLine.Number {
				plainChars++ // the '\n' separating this line from the next
			}
		}
	}
	flushPlain()

	if len(parts) == 0 {
		return NewGap(to-from, 1)
	}
	return buildBalancedTree(parts)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
