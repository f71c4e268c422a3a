// Package text implements the document's persistent, line-aware rope.
//
// A Text is an immutable sequence of UTF-16 code units partitioned into
// lines. It never mutates after construction: every edit produces a new
// Text that shares unchanged subtrees with its predecessor, the same
// discipline the rope in the teacher package (github.com/coreseekdev/texere,
// pkg/rope) follows for its binary leaf/internal split — generalised here
// to an n-ary branch (≤32 children) and a leaf of ≤32 stored line
// fragments, cut at about 256 chars on a line boundary.
//
// Addressing is 0-based by absolute UTF-16 code-unit offset and 1-based by
// line number, matching how a browser DOM and most editor protocols count
// positions.
package text

import (
	"strings"

	"github.com/coreseekdev/texere-core/pkg/kinderr"
)

const (
	maxLeafChars    = 512 // nominal leaf size; buildBalanced cuts at targetLeafChars and never splits a line
	maxLeafEntries  = 32  // upper bound on stored line fragments per leaf
	maxBranchArity  = 32  // upper bound on children per branch
	targetLeafChars = 256 // chunk size used when rebuilding a subtree from scratch
)

// node is the persistent tree node interface. Every node knows its own
// length (in UTF-16 code units) and the number of newline characters ('\n')
// it directly contains — never the newlines that happen to sit at a
// boundary between sibling nodes, because no character lives there.
type node interface {
	length() int
	breaks() int // count of '\n' characters inside this node
}

// leaf stores a bounded run of line fragments. Adjacent fragments within
// one leaf are always separated by a real '\n'; the first and last
// fragments may be partial continuations of the previous/next sibling's
// edge fragment — the boundary between two nodes never itself contains a
// character.
type leaf struct {
	frags  []string // at least one entry; entries may be ""
	length int      // cached UTF-16 length including internal separators
}

func newLeaf(frags []string) *leaf {
	l := &leaf{frags: frags}
	n := 0
	for i, f := range frags {
		if i > 0 {
			n++ // internal '\n'
		}
		n += utf16Len(f)
	}
	l.length = n
	return l
}

func (l *leaf) length_() int { return l.length }
func (l *leaf) breaks() int  { return len(l.frags) - 1 }
func (l *leaf) length() int  { return l.length }

// branch holds up to maxBranchArity children. childLen/childBreaks cache
// each child's length/breaks so descent is O(log n) in the number of
// children rather than requiring a recount.
type branch struct {
	children    []node
	childLen    []int
	childBreaks []int
	totalLen    int
	totalBreaks int
}

func newBranch(children []node) *branch {
	b := &branch{
		children:    children,
		childLen:    make([]int, len(children)),
		childBreaks: make([]int, len(children)),
	}
	for i, c := range children {
		l, brk := c.length(), c.breaks()
		b.childLen[i] = l
		b.childBreaks[i] = brk
		b.totalLen += l
		b.totalBreaks += brk
	}
	return b
}

func (b *branch) length() int { return b.totalLen }
func (b *branch) breaks() int { return b.totalBreaks }

// Text is an immutable, line-aware sequence of UTF-16 code units.
type Text struct {
	root  node
	lines int // total line count, always >= 1
}

// Empty is the zero-length, single-line Text.
var Empty = &Text{root: newLeaf([]string{""}), lines: 1}

// Of builds a Text from its raw string content.
func Of(s string) *Text {
	if s == "" {
		return Empty
	}
	return build(strings.Split(s, "\n"))
}

// OfLines builds a Text from a pre-split slice of lines (no separators).
func OfLines(lines []string) *Text {
	if len(lines) == 0 {
		return Empty
	}
	cp := make([]string, len(lines))
	copy(cp, lines)
	return build(cp)
}

func build(lines []string) *Text {
	root := buildBalanced(lines)
	return &Text{root: root, lines: root.breaks() + 1}
}

// buildBalanced bulk-builds a balanced tree over lines, chunking into
// leaves of at most maxLeafEntries fragments, each cut after the line that
// brings it to targetLeafChars chars (a line is never split, so a leaf
// holding a long line exceeds maxLeafChars), and grouping leaves (and,
// recursively, branches) into branches of at most maxBranchArity children.
func buildBalanced(lines []string) node {
	leaves := make([]node, 0, len(lines)/targetLeafChars+1)
	// Every leaf after the first starts with an empty fragment, so the '\n'
	// ending the previous leaf's last line is stored inside this leaf.
	leafOf := func(ls []string) node {
		frags := make([]string, 0, len(ls)+1)
		if len(leaves) > 0 {
			frags = append(frags, "")
		}
		return newLeaf(append(frags, ls...))
	}
	start := 0
	chars := 0
	for i := 0; i < len(lines); i++ {
		chars += utf16Len(lines[i])
		entries := i - start + 1
		if len(leaves) > 0 {
			entries++
		}
		tooBig := chars >= targetLeafChars && i+1 < len(lines)
		tooMany := entries >= maxLeafEntries
		if tooBig || tooMany {
			leaves = append(leaves, leafOf(lines[start:i+1]))
			start = i + 1
			chars = 0
		}
	}
	if start < len(lines) {
		leaves = append(leaves, leafOf(lines[start:]))
	}
	return levelUp(leaves)
}

// levelUp repeatedly groups a slice of nodes into branches of at most
// maxBranchArity children until a single root node remains.
func levelUp(nodes []node) node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	next := make([]node, 0, len(nodes)/maxBranchArity+1)
	for i := 0; i < len(nodes); i += maxBranchArity {
		end := i + maxBranchArity
		if end > len(nodes) {
			end = len(nodes)
		}
		next = append(next, newBranch(append([]node(nil), nodes[i:end]...)))
	}
	return levelUp(next)
}

// Length returns the number of UTF-16 code units in the document.
func (t *Text) Length() int {
	if t == nil {
		return 0
	}
	return t.root.length()
}

// Lines returns the number of lines in the document (always >= 1).
func (t *Text) Lines() int {
	if t == nil {
		return 1
	}
	return t.lines
}

func boundsErr(format string, args ...interface{}) error {
	return kinderr.New(kinderr.Bounds, format, args...)
}

func (t *Text) checkPos(pos int) error {
	if pos < 0 || pos > t.Length() {
		return boundsErr("position %d out of range [0,%d]", pos, t.Length())
	}
	return nil
}

func (t *Text) checkRange(from, to int) error {
	if from > to {
		return boundsErr("inverted range [%d,%d)", from, to)
	}
	if err := t.checkPos(from); err != nil {
		return err
	}
	return t.checkPos(to)
}

// Eq reports whether two Texts have identical content.
func (t *Text) Eq(o *Text) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Length() != o.Length() || t.Lines() != o.Lines() {
		return false
	}
	return t.String() == o.String()
}

// String materialises the full document content.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return t.SliceString(0, t.Length(), "\n")
}
