package parser

import (
	"math"
	"sync"
	"time"

	"github.com/coreseekdev/texere-core/pkg/change"
)

// Budgeting constants for the cooperative parse scheduler.
const (
	Apply        = 20 * time.Millisecond  // synchronous budget inside state.update
	Slice        = 100 * time.Millisecond // fallback slice when no idle callback is available
	MinSlice     = 25 * time.Millisecond
	MinPause     = 100 * time.Millisecond
	MaxPause     = 500 * time.Millisecond
	ChunkBudget  = 3000 * time.Millisecond // rolling window cap
	ChunkTime    = 30000 * time.Millisecond
	ChangeBonus  = 50 * time.Millisecond // extra budget per change while focused

	MaxParseAhead = 100000 // characters parsed past the viewport
	InitViewport  = 3000   // presumed viewport before the renderer reports one
)

// Unbounded is the "∞" timeout EnsureSyntaxTree/ForceParsing accept: keep
// working, ignoring the rolling chunk budget, until the tree covers the
// requested position or this wall-clock bound elapses.
const Unbounded = time.Duration(math.MaxInt64)

// ParseContext is the scheduler state for one document: the live partial
// parse (if any), reusable fragments, the last completed tree and its
// covered length, the viewport, opportunistically skipped ranges, and a
// wake signal for resuming after an async nested parser becomes ready.
type ParseContext struct {
	mu sync.Mutex

	parser Parser
	input  Input

	partial  PartialParse
	tree     Tree
	treeLen  int
	fragments []TreeFragment

	viewport Range
	skipped  []Range

	focused      bool
	windowStart  time.Time
	windowBudget time.Duration

	sink ExceptionSink
	wake chan struct{}
}

// NewParseContext creates a scheduler for input, with no completed tree
// yet and the viewport defaulted to InitViewport characters.
func NewParseContext(p Parser, input Input) *ParseContext {
	vpTo := InitViewport
	if vpTo > input.Length() {
		vpTo = input.Length()
	}
	return &ParseContext{
		parser:       p,
		input:        input,
		viewport:     Range{From: 0, To: vpTo},
		windowStart:  time.Now(),
		windowBudget: ChunkBudget,
		sink:         DefaultSink,
		wake:         make(chan struct{}, 1),
	}
}

// SetExceptionSink overrides the default (log-to-stderr) exception sink.
func (pc *ParseContext) SetExceptionSink(sink ExceptionSink) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.sink = sink
}

// SetFocused marks whether the editor is focused: the rolling
// chunk-budget window only refreshes while focused, so a background tab
// can't keep grabbing a fresh 3s budget every 30s.
func (pc *ParseContext) SetFocused(focused bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.focused = focused
}

// SetViewport updates the renderer's visible range.
func (pc *ParseContext) SetViewport(from, to int) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.viewport = Range{From: from, To: to}
}

// MarkSkipped records a range a skipping sub-parser reported as
// off-screen, so it can be excised from reusable fragments once the
// viewport reaches it.
func (pc *ParseContext) MarkSkipped(r Range) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.skipped = append(pc.skipped, r)
}

// Tree returns the last completed tree (nil if none yet) and TreeLen the
// document prefix length it covers.
func (pc *ParseContext) Tree() Tree {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.tree
}

func (pc *ParseContext) TreeLen() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.treeLen
}

// AwaitReady registers register as a callback that an async nested parser
// (one waiting on, say, a dynamically loaded grammar) calls with a wake
// function once it becomes ready; calling wake schedules another slice to
// become worthwhile. A plain callback, rather than promise composition,
// keeps this idiomatic for a synchronous Go scheduler.
func (pc *ParseContext) AwaitReady(register func(wake func())) {
	register(pc.signalWake)
}

func (pc *ParseContext) signalWake() {
	select {
	case pc.wake <- struct{}{}:
	default:
	}
}

// WaitForWake blocks until an async nested parser signals readiness or
// timeout elapses, returning whether it was woken.
func (pc *ParseContext) WaitForWake(timeout time.Duration) bool {
	select {
	case <-pc.wake:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Work runs the scheduler's budgeted work loop for up to until, honoring
// the rolling chunk-budget window, and returns whether the tree now
// covers upto. inputPending, if non-nil, is consulted between advance()
// calls and ends the current slice early when it reports true.
func (pc *ParseContext) Work(until time.Duration, upto int, inputPending func() bool) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.work(time.Now().Add(until), upto, inputPending, true)
}

// Changes reacts to a transaction's changes: the live partial parse is
// forced to an intermediate conclusion, fragments and the
// viewport/skipped ranges are remapped through desc, and an
// Apply-budgeted synchronous slice runs so the next repaint usually
// already has a tree up to the viewport.
func (pc *ParseContext) Changes(input Input, desc *change.ChangeDesc) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.takeTree()
	pc.fragments = ApplyChanges(pc.fragments, desc)

	pc.viewport = mapRangeOutward(pc.viewport, desc)
	if pc.viewport.To > input.Length() {
		pc.viewport.To = input.Length()
	}
	if pc.viewport.From > pc.viewport.To {
		pc.viewport.From = pc.viewport.To
	}

	var remapped []Range
	for _, r := range pc.skipped {
		if nr, ok := mapRangeInward(r, desc); ok {
			remapped = append(remapped, nr)
		}
	}
	pc.skipped = remapped

	pc.input = input
	if pc.treeLen > input.Length() {
		pc.treeLen = input.Length() // guarantee: never report past the document end
	}

	now := time.Now()
	if pc.focused {
		if now.Sub(pc.windowStart) >= ChunkTime {
			pc.windowStart = now
			pc.windowBudget = ChunkBudget
		}
		pc.windowBudget += ChangeBonus
	}

	pc.work(now.Add(Apply), pc.viewport.To, nil, true)
}

// work is the shared loop behind Work (chunk-budget throttled) and
// EnsureSyntaxTree/ForceParsing (unthrottled, wall-clock bounded only).
func (pc *ParseContext) work(deadline time.Time, upto int, inputPending func() bool, useChunkBudget bool) bool {
	// Parsing stops at the document end; the result reports whether the
	// position asked for is covered.
	requested := upto
	if upto > pc.input.Length() {
		upto = pc.input.Length()
	}

	for pc.treeLen < upto {
		if useChunkBudget && pc.windowBudget <= 0 {
			break
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		sliceDur := remaining
		if sliceDur > Slice {
			sliceDur = Slice
		}
		if useChunkBudget && pc.windowBudget < sliceDur {
			sliceDur = pc.windowBudget
		}
		if sliceDur <= 0 {
			break
		}

		if pc.partial == nil {
			pc.startParse()
		}

		sliceStart := time.Now()
		for time.Since(sliceStart) < sliceDur {
			if inputPending != nil && inputPending() {
				break
			}
			tree, done, err := pc.advance()
			if err != nil {
				pc.sink(err)
				pc.partial = nil
				break
			}
			if done {
				pc.completeTree(tree)
				break
			}
		}
		if useChunkBudget {
			pc.windowBudget -= time.Since(sliceStart)
		}
		if inputPending != nil && inputPending() {
			break
		}
	}

	return pc.treeLen >= requested
}

// advance runs one PartialParse.Advance step, converting a panic inside
// the plugin into a Parse-kind error instead of propagating it: a parser
// failure is caught and reported, never allowed to corrupt the state.
func (pc *ParseContext) advance() (tree Tree, done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapPanic(r)
		}
	}()
	tree, done = pc.partial.Advance()
	return
}

func (pc *ParseContext) startParse() {
	target := pc.input.Length()
	if pc.viewport.To+MaxParseAhead < target {
		target = pc.viewport.To + MaxParseAhead
	}
	ranges := []Range{{From: 0, To: pc.input.Length()}}
	pc.partial = pc.parser.StartParse(pc.input, pc.fragments, ranges)
	if target < pc.input.Length() {
		pc.partial.StopAt(target)
	}
}

// takeTree forces the live partial parse to a tree covering whatever it
// has parsed so far.
func (pc *ParseContext) takeTree() {
	if pc.partial == nil {
		return
	}
	pc.partial.StopAt(pc.partial.ParsedPos())
	for {
		tree, done, err := pc.advance()
		if err != nil {
			pc.sink(err)
			pc.partial = nil
			return
		}
		if done {
			pc.completeTree(tree)
			return
		}
	}
}

func (pc *ParseContext) completeTree(tree Tree) {
	pc.tree = tree
	pc.treeLen = tree.Length()
	pc.fragments = exciseSkipped([]TreeFragment{NewFragment(tree, 0, tree.Length())}, pc.skipped)
	pc.partial = nil
}
