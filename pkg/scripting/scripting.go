// Package scripting compiles a small JavaScript snippet into the function
// shapes pkg/state's built-in facets expect (a ChangeFilterFunc or a
// LanguageDataProvider), so a host can register a
// declarative extension without writing Go. Grounded on the teacher's
// goja usage in e2e/transport_test.go (a fresh *goja.Runtime per script,
// values marshalled in with Runtime.Set, functions invoked back out with
// goja.AssertFunction) and on weave/engine/ai.go's never-finished scripting
// hook, which this package actually implements.
package scripting

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/coreseekdev/texere-core/pkg/kinderr"
	"github.com/coreseekdev/texere-core/pkg/state"
)

// Script is a compiled JS snippet, safe for concurrent evaluation: all
// calls share the Script's one *goja.Runtime (goja.Runtime is not safe for
// concurrent use), so a mutex serialises them.
type Script struct {
	source string
	mu     sync.Mutex
	vm     *goja.Runtime
	fn     goja.Callable
}

// Compile parses source as a JS function expression (e.g.
// "function(doc, pos) { return doc.length > pos }") and readies it for
// repeated calls.
func Compile(source string) (*Script, error) {
	vm := goja.New()
	v, err := vm.RunString("(" + source + ")")
	if err != nil {
		return nil, kinderr.New(kinderr.Parse, "compiling script: %v", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, kinderr.New(kinderr.Parse, "script does not evaluate to a function")
	}
	return &Script{source: source, vm: vm, fn: fn}, nil
}

// Call invokes the compiled function with args, converting each to a goja
// value with Runtime.ToValue, and returns its Export()ed result.
func (s *Script) Call(args ...interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = s.vm.ToValue(a)
	}
	res, err := s.fn(goja.Undefined(), vals...)
	if err != nil {
		return nil, kinderr.New(kinderr.Parse, "running script: %v", err)
	}
	return res.Export(), nil
}

// ChangeFilter adapts the script into a state.ChangeFilterFunc. The script
// is called with (docLen, newLen): the start document's length and the
// length after the transaction's changes. It returns a boolean (true keeps
// every change, false drops them all) or an object
// {keep: bool, suppress: [{from,to}, …]}.
func (s *Script) ChangeFilter() state.ChangeFilterFunc {
	return func(tr *state.Transaction) state.ChangeFilterResult {
		docLen := tr.StartState().Doc().Length()
		out, err := s.Call(docLen, tr.Changes().NewLength())
		if err != nil {
			return state.KeepChanges()
		}
		return parseChangeFilterResult(out)
	}
}

func parseChangeFilterResult(out interface{}) state.ChangeFilterResult {
	switch v := out.(type) {
	case bool:
		if v {
			return state.KeepChanges()
		}
		return state.DropChanges()
	case map[string]interface{}:
		keep, _ := v["keep"].(bool)
		if !keep {
			return state.DropChanges()
		}
		raw, _ := v["suppress"].([]interface{})
		ranges := make([]state.Range, 0, len(raw))
		for _, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			from, _ := toInt(m["from"])
			to, _ := toInt(m["to"])
			ranges = append(ranges, state.Range{From: from, To: to})
		}
		return state.SuppressRanges(ranges...)
	default:
		return state.KeepChanges()
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// LanguageDataProvider adapts the script into a state.LanguageDataProvider,
// called as languageData(pos) and expected to return a plain JS object
// (exported as map[string]interface{}, or nil on error or a non-object
// result).
func (s *Script) LanguageDataProvider() state.LanguageDataProvider {
	return func(st *state.State, pos int) map[string]interface{} {
		out, err := s.Call(pos)
		if err != nil {
			return nil
		}
		m, _ := out.(map[string]interface{})
		return m
	}
}

func (s *Script) String() string {
	return fmt.Sprintf("scripting.Script(%.40q)", s.source)
}
