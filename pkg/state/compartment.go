package state

import "github.com/google/uuid"

// Compartment is a named slot in the extension tree whose content can be
// swapped out by a later transaction (via Reconfigure) without disturbing
// the rest of the configuration. Each Compartment carries a uuid for
// log/debug identification, named in error messages like the "registered
// twice" check in config.go — resolution itself tracks compartments by pointer
// identity, as the teacher's session registries track sessions by map key
// (pkg/session/manager.go).
type Compartment struct {
	id      string
	current Extension
}

// NewCompartment declares a compartment initially holding content.
func NewCompartment(content Extension) *Compartment {
	return &Compartment{id: uuid.NewString(), current: content}
}

// ID returns this compartment's opaque identifier, for logging and error
// messages.
func (c *Compartment) ID() string { return c.id }

// Of returns the extension node installing this compartment into a tree.
// The resolver reads the compartment's content live at flatten time (not
// a snapshot taken here), so that a later Reconfigure effect is picked up
// by every tree that references this same Compartment.
func (c *Compartment) Of() Extension {
	return Extension{kind: extCompartment, compartment: c}
}

// Reconfigure returns a StateEffect that, applied in a transaction,
// replaces this compartment's content and triggers a full resolver pass.
func (c *Compartment) Reconfigure(content Extension) StateEffect {
	return StateEffect{kind: effectCompartmentReconfigure, compartment: c, content: &content}
}
