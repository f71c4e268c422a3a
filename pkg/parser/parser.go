// Package parser implements a background incremental-parse scheduler: a
// budgeted, single-threaded cooperative work loop that keeps a syntax
// tree aligned with a live document without ever blocking
// the caller. There is no teacher analogue (the teacher repo has no
// pluggable-parser concept); the incremental-reparse-with-reusable-
// fragments shape is grounded on two other_examples files: aretext's
// editor/syntax/parser.go (cached sub-computation reuse across edits,
// reparse triggered by a changed-range) and shinyvision-vimfony's
// internal/php/document.go (an edit-then-reparse contract driven by a
// debounce timer for background analysis, generalised here into the
// idle/chunk-budget timing ParseContext's work loop applies).
package parser

import "github.com/coreseekdev/texere-core/pkg/change"

// Range is a half-open [From,To) span of document positions.
type Range struct {
	From, To int
}

// Tree is the opaque output of a completed parse. The scheduler never
// inspects a tree's contents — only its Length, to know how much of the
// document it covers.
type Tree interface {
	Length() int
}

// Input is what a Parser reads from — a view over the document the
// scheduler is keeping in sync, passed to Parser.StartParse.
type Input interface {
	Length() int
	Chunk(pos int) string
	Read(from, to int) string
	LineChunks() bool
}

// PartialParse is one in-progress parse, advanced one step at a time by
// the scheduler's work loop. Each Advance call is a suspension point —
// the only kind this engine has.
type PartialParse interface {
	ParsedPos() int
	// Advance runs one step of work. It returns (tree, true) once the
	// parse is complete, or (nil, false) to be called again.
	Advance() (Tree, bool)
	// StoppedAt reports the position the parser was told to stop at via
	// StopAt, if any.
	StoppedAt() (int, bool)
	// StopAt bounds the parse to end at pos, used both to cap ahead-of-
	// viewport parsing (MaxParseAhead) and to cancel an overrunning slice.
	StopAt(pos int)
}

// Parser is the pluggable grammar/parser contract a language plugs in.
// These three interfaces (Input, PartialParse, Parser) are external to
// this package's own logic: the scheduler neither defines nor alters
// them beyond naming the contract.
type Parser interface {
	StartParse(input Input, fragments []TreeFragment, ranges []Range) PartialParse
}

// sliceInput adapts a document slice (read via pkg/text-shaped accessors)
// into the Input contract, for callers that don't already have one.
type sliceInput struct {
	length int
	slice  func(from, to int) string
}

// NewInput builds an Input over a document of the given length, reading
// text through slice. It reports LineChunks() == false (chunk boundaries
// are not meaningful here) and Chunk(pos) returns the remainder of the
// document from pos, matching a parser that reads to end-of-chunk.
func NewInput(length int, slice func(from, to int) string) Input {
	return &sliceInput{length: length, slice: slice}
}

func (s *sliceInput) Length() int { return s.length }
func (s *sliceInput) Chunk(pos int) string {
	if pos >= s.length {
		return ""
	}
	return s.slice(pos, s.length)
}
func (s *sliceInput) Read(from, to int) string { return s.slice(from, to) }
func (s *sliceInput) LineChunks() bool         { return false }

// mapRangeOutward maps a viewport-like endpoint through changes with a
// bias away from the edit (grows the range), so the viewport always
// covers at least what it covered before.
func mapRangeOutward(r Range, desc *change.ChangeDesc) Range {
	from, _ := desc.MapPos(r.From, -1, change.Simple)
	to, _ := desc.MapPos(r.To, 1, change.Simple)
	return Range{From: from, To: to}
}

// mapRangeInward maps a skipped-region endpoint through changes with a
// bias toward the edit (shrinks the range); ok is false if the range
// collapsed to empty or inverted and should be dropped.
func mapRangeInward(r Range, desc *change.ChangeDesc) (Range, bool) {
	from, _ := desc.MapPos(r.From, 1, change.Simple)
	to, _ := desc.MapPos(r.To, -1, change.Simple)
	if from >= to {
		return Range{}, false
	}
	return Range{From: from, To: to}, true
}
