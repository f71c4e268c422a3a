// Command texerestate is a small walkthrough of the core engine: it
// creates a document state, runs a couple of transactions through it,
// keeps a background parse scheduler and a height map in sync with each
// edit, and prints what changed at every step.
package main

import (
	"fmt"
	"log"

	"github.com/coreseekdev/texere-core/pkg/change"
	"github.com/coreseekdev/texere-core/pkg/heightmap"
	"github.com/coreseekdev/texere-core/pkg/parser"
	"github.com/coreseekdev/texere-core/pkg/state"
	"github.com/coreseekdev/texere-core/pkg/text"
)

func main() {
	log.SetFlags(0)

	doc := "func main() {\n\tfmt.Println(\"hello\")\n}\n"
	s, err := state.Create(state.CreateOptions{Doc: doc})
	if err != nil {
		log.Fatalf("create state: %v", err)
	}
	log.Printf("initial doc: %d chars, %d lines", s.Doc().Length(), s.Doc().Lines())

	lp := &lineParser{}
	pc := parser.NewParseContext(lp, docInput(s.Doc()))
	pc.SetFocused(true)

	oracle := fixedLineOracle{height: 16}
	hm := heightmap.NewHeightMap(s.Doc().Length(), s.Doc().Lines(), oracle)
	log.Printf("initial height map: %.0fpx over %d chars", hm.Height(), hm.Length())

	if pc.Work(parser.Slice, s.Doc().Length(), nil) {
		log.Printf("parsed %d lines up front", pc.Tree().(*lineTree).lines)
	}

	edits := []state.TransactionSpec{
		{Changes: []change.Spec{{From: len(doc), To: len(doc), Insert: "\tfmt.Println(\"world\")\n"}}},
		{Changes: []change.Spec{{From: 0, To: 0, Insert: "package main\n\n"}}},
	}

	for i, spec := range edits {
		tr, err := s.Update(spec)
		if err != nil {
			log.Fatalf("update %d: %v", i, err)
		}
		s = tr.State()

		pc.Changes(docInput(s.Doc()), tr.Changes().Desc())
		hm = heightmap.ApplyChanges(hm, tr.Changes().Desc(), nil, s.Doc(), oracle, nil)

		ready := pc.Work(parser.Slice, s.Doc().Length(), nil)
		log.Printf("edit %d: doc now %d chars, %d lines; tree covers %d; height %.0fpx; up to date: %v",
			i, s.Doc().Length(), s.Doc().Lines(), pc.TreeLen(), hm.Height(), ready)
	}

	tree := parser.EnsureSyntaxTree(pc, s.Doc().Length(), parser.Unbounded)
	fmt.Printf("final tree: %d lines across %d chars\n", tree.(*lineTree).lines, tree.Length())

	li := hm.LineAt(s.Doc(), 0, heightmap.ByPos)
	fmt.Printf("first line spans [%d,%d), top %.0fpx\n", li.From, li.To, li.Top)
}

// docInput adapts a text.Text snapshot into parser.Input.
func docInput(doc *text.Text) parser.Input {
	return parser.NewInput(doc.Length(), func(from, to int) string {
		return doc.SliceString(from, to)
	})
}

// fixedLineOracle is the simplest HeightOracle: every line is the same
// height and nothing wraps.
type fixedLineOracle struct{ height float64 }

func (o fixedLineOracle) LineHeight() float64 { return o.height }
func (o fixedLineOracle) LineLength() int     { return 0 }
func (o fixedLineOracle) Wrapping() bool      { return false }

// lineTree is the toy Tree a lineParser produces: just a line count.
type lineTree struct{ lines, length int }

func (t *lineTree) Length() int { return t.length }

// lineParser counts newlines. It stands in for a real incremental
// grammar; it exists to exercise parser.ParseContext without depending
// on any particular language.
type lineParser struct{}

func (lineParser) StartParse(input parser.Input, fragments []parser.TreeFragment, ranges []parser.Range) parser.PartialParse {
	return &linePartial{input: input}
}

// linePartial advances a few characters at a time so a caller with a
// short budget genuinely can't finish in one slice.
type linePartial struct {
	input  parser.Input
	pos    int
	stopAt int
	hasStop bool
	lines  int
}

const lineParseStep = 256

func (p *linePartial) ParsedPos() int { return p.pos }

func (p *linePartial) Advance() (parser.Tree, bool) {
	limit := p.input.Length()
	if p.hasStop && p.stopAt < limit {
		limit = p.stopAt
	}
	end := p.pos + lineParseStep
	if end > limit {
		end = limit
	}
	if end > p.pos {
		chunk := p.input.Read(p.pos, end)
		for _, r := range chunk {
			if r == '\n' {
				p.lines++
			}
		}
		p.pos = end
	}
	if p.pos >= limit {
		return &lineTree{lines: p.lines, length: p.pos}, true
	}
	return nil, false
}

func (p *linePartial) StoppedAt() (int, bool) { return p.stopAt, p.hasStop }

func (p *linePartial) StopAt(pos int) {
	p.stopAt = pos
	p.hasStop = true
}
