package bnode

// Node is one element of a parsed bank: an object record, a nested list or
// sub-record, or a leaf field. Lookups return a nil Node when nothing matches.
type Node interface {
	// Name is the logical field name, or the class name for object records.
	Name() string
	// Type is the field type tag ("sid", "tid", "u32", "f32"...). Empty for
	// non-leaf elements.
	Type() string

	// Find returns the first descendant named name in document order.
	Find(name string) Node
	// Find1 is Find for fields known to appear at most once.
	Find1(name string) Node
	// Finds returns every descendant named name in document order.
	Finds(name string) []Node
	// FindType returns the first descendant whose type tag is typ.
	FindType(typ string) Node

	// Value is the numeric value of a leaf field.
	Value() float64
	// Attr returns a formatted attribute such as "valuefmt", or "".
	Attr(name string) string

	// Root is the bank this node was parsed from.
	Root() Root
}

// Root exposes the bank-level identity of a parsed container.
type Root interface {
	ID() uint32
	Filename() string
	Version() int
	Strings() []string
}

// ID reads n as a 32-bit object id. A nil node reads as 0.
func ID(n Node) uint32 {
	if n == nil {
		return 0
	}
	return uint32(n.Value())
}

// ShortID returns the short id of an object record, read from its sid field.
func ShortID(n Node) (Node, uint32) {
	if n == nil {
		return nil, 0
	}
	nsid := n.FindType("sid")
	return nsid, ID(nsid)
}
