package heightmap

// DecoKind classifies one decoration span as block/replace/line-level
// decoration information.
type DecoKind int

const (
	// DecoLine attaches extra widget-contributed line breaks to a line
	// without replacing its content.
	DecoLine DecoKind = iota
	// DecoReplace replaces its range with a fixed-height atomic block
	// (a collapsed region or an inline-replacing widget).
	DecoReplace
	// DecoBlockWidget inserts a fixed-height block between lines,
	// contributing no document characters.
	DecoBlockWidget
)

// DecorationSpan is one span a DecorationSet reports over a queried
// range.
type DecorationSpan struct {
	From, To   int
	Kind       DecoKind
	Height     float64 // DecoReplace/DecoBlockWidget: the block's fixed height
	LineBreaks int      // DecoLine: extra widget line breaks on this line
}

// DecorationSet is the generic range-span-iterator contract a NodeBuilder
// can walk to find block/replace/line-level decoration information over
// [from,to).
type DecorationSet interface {
	SpansIn(from, to int) []DecorationSpan
}

func collectSpans(sets []DecorationSet, from, to int) []DecorationSpan {
	var out []DecorationSpan
	for _, s := range sets {
		out = append(out, s.SpansIn(from, to)...)
	}
	return out
}
