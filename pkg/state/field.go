package state

// FieldID identifies a StateField across configurations.
type FieldID int64

// fieldDef is the untyped core of a StateField.
type fieldDef struct {
	id      FieldID
	create  func(*State) interface{}
	update  func(old interface{}, tr *Transaction) interface{}
	compare func(a, b interface{}) bool
}

// StateFieldOf is a typed handle to a declared field of value type T.
// Fields are per-state storage slots, updated once per transaction by the
// field's own update function.
type StateFieldOf[T any] struct {
	def *fieldDef
}

// DefineField declares a new field. create computes the initial value from
// the state it is first attached to; update computes the next value from
// the previous one and the transaction being applied.
func DefineField[T any](create func(*State) T, update func(old T, tr *Transaction) T) *StateFieldOf[T] {
	def := &fieldDef{
		id: FieldID(allocID()),
		create: func(s *State) interface{} {
			return create(s)
		},
		update: func(old interface{}, tr *Transaction) interface{} {
			return update(old.(T), tr)
		},
		compare: func(a, b interface{}) bool {
			return false // fields have no declared compare: every update counts as a change
		},
	}
	return &StateFieldOf[T]{def: def}
}

// Extension includes this field in a configuration. A field not reachable
// from the extension tree is never instantiated.
func (f *StateFieldOf[T]) Extension() Extension {
	return Extension{kind: extField, field: f.def}
}

// Read returns the field's current value in s.
func (f *StateFieldOf[T]) Read(s *State) T {
	v, err := s.fieldValue(f.def.id)
	if err != nil {
		panic(err)
	}
	return v.(T)
}
