package parser

import "time"

// EnsureSyntaxTree blocks (bounded by timeout) until pc's tree covers upto,
// ignoring the rolling chunk-budget window — a forced, synchronous version
// of the scheduler for callers that need a tree right now. Pass Unbounded
// for the "∞" case: a document of length L then yields a tree of length L.
func EnsureSyntaxTree(pc *ParseContext, upto int, timeout time.Duration) Tree {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.work(time.Now().Add(timeout), upto, nil, false)
	return pc.tree
}

// SyntaxTreeAvailable reports whether pc already has a tree covering upto
// without doing any work.
func SyntaxTreeAvailable(pc *ParseContext, upto int) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.tree != nil && pc.treeLen >= upto
}

// ForceParsing is EnsureSyntaxTree's boolean-returning sibling: run up to
// timeout of unthrottled work and report whether the tree now reaches
// upto.
func ForceParsing(pc *ParseContext, upto int, timeout time.Duration) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.work(time.Now().Add(timeout), upto, nil, false)
}
