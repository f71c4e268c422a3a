// Package state implements the extension resolver and transaction pipeline:
// Facet/StateField/Compartment declarations, the Configuration resolver
// (flatten + address assignment) and the State/Transaction types built on
// top of pkg/change and pkg/selection. There is no direct teacher analogue
// for a declarative extension system, so the registries follow the
// teacher's own registry idiom (github.com/coreseekdev/texere,
// pkg/session/manager.go: a map keyed by a generated id) without its lock:
// the id counter below is atomic, and facetRegistry (config.go) is a plain
// map that no mutex guards. The JSON envelope follows
// pkg/transport/handler.go.
package state

import "sync/atomic"

// nextID is the process-wide monotonic counter backing Facet and StateField
// identity.
var nextID int64

func allocID() int64 {
	return atomic.AddInt64(&nextID, 1)
}
