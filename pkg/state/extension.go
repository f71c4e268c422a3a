package state

// extKind discriminates the node shapes an Extension tree can hold:
// arbitrarily nested sequences, precedence wrappers, compartment
// wrappers, field values, and facet providers.
type extKind int

const (
	extSeq extKind = iota
	extPrecedence
	extFacetProvider
	extField
	extCompartment
)

// Extension is one node of the user-supplied configuration tree. It is
// built with Of, Prec/Highest/High/Low/Lowest, FacetOf.Of/Compute,
// StateFieldOf.Extension, and Compartment.Of, then resolved by Resolve
// (config.go) into a Configuration.
type Extension struct {
	kind        extKind
	seq         []Extension
	prec        Precedence
	provider    *facetProvider
	field       *fieldDef
	compartment *Compartment
	content     *Extension
}

// Of flattens a sequence of extensions into one, preserving order. Nested
// sequences are legal and are flattened recursively during resolution.
func Of(exts ...Extension) Extension {
	return Extension{kind: extSeq, seq: exts}
}

// Prec wraps e so every provider and field it contains (that doesn't set
// its own nested precedence) resolves at precedence p.
func Prec(p Precedence, e Extension) Extension {
	return Extension{kind: extPrecedence, prec: p, content: &e}
}

func Highest(e Extension) Extension { return Prec(PrecHighest, e) }
func High(e Extension) Extension    { return Prec(PrecHigh, e) }
func Low(e Extension) Extension     { return Prec(PrecLow, e) }
func Lowest(e Extension) Extension  { return Prec(PrecLowest, e) }
