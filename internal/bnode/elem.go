package bnode

// Elem is the in-memory Node implementation used by the bank loader and tests.
// An Elem is immutable once its bank is sealed.
type Elem struct {
	name     string
	typ      string
	value    float64
	attrs    map[string]string
	children []*Elem
	bank     *Bank
}

// NewElem creates a container element such as an object record or sub-record.
func NewElem(name string, children ...*Elem) *Elem {
	return &Elem{name: name, children: children}
}

// NewField creates a leaf field with a numeric value.
func NewField(typ, name string, value float64) *Elem {
	return &Elem{name: name, typ: typ, value: value}
}

// WithAttr sets a formatted attribute and returns e for chaining.
func (e *Elem) WithAttr(key, value string) *Elem {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
	return e
}

// Append adds children in order and returns e for chaining.
func (e *Elem) Append(children ...*Elem) *Elem {
	e.children = append(e.children, children...)
	return e
}

// Children returns the direct children in document order.
func (e *Elem) Children() []*Elem { return e.children }

func (e *Elem) Name() string   { return e.name }
func (e *Elem) Type() string   { return e.typ }
func (e *Elem) Value() float64 { return e.value }

func (e *Elem) Attr(name string) string {
	return e.attrs[name]
}

func (e *Elem) Root() Root {
	if e.bank == nil {
		return nil
	}
	return e.bank
}

func (e *Elem) Find(name string) Node {
	found := e.first(func(c *Elem) bool { return c.name == name })
	if found == nil {
		return nil
	}
	return found
}

func (e *Elem) Find1(name string) Node {
	return e.Find(name)
}

func (e *Elem) FindType(typ string) Node {
	found := e.first(func(c *Elem) bool { return c.typ == typ })
	if found == nil {
		return nil
	}
	return found
}

func (e *Elem) Finds(name string) []Node {
	var out []Node
	e.walk(func(c *Elem) bool {
		if c.name == name {
			out = append(out, c)
		}
		return true
	})
	return out
}

// first does a depth-first, document-order search below e.
func (e *Elem) first(match func(*Elem) bool) *Elem {
	var found *Elem
	e.walk(func(c *Elem) bool {
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits descendants depth-first until visit returns false.
func (e *Elem) walk(visit func(*Elem) bool) bool {
	for _, c := range e.children {
		if !visit(c) {
			return false
		}
		if !c.walk(visit) {
			return false
		}
	}
	return true
}

func (e *Elem) seal(b *Bank) {
	e.bank = b
	for _, c := range e.children {
		c.seal(b)
	}
}
