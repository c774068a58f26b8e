package bnode

import (
	"fmt"
)

// Bank is one loaded container. Its object records are the direct children of
// its HIRC list.
type Bank struct {
	id       uint32
	filename string
	version  int
	strings  []string
	objects  []*Elem
}

// NewBank creates a bank and seals the given object records into it. After
// NewBank returns, the records must not be modified.
func NewBank(id uint32, filename string, version int, strs []string, objects ...*Elem) *Bank {
	b := &Bank{
		id:       id,
		filename: filename,
		version:  version,
		strings:  strs,
		objects:  objects,
	}
	for _, o := range objects {
		o.seal(b)
	}
	return b
}

func (b *Bank) ID() uint32        { return b.id }
func (b *Bank) Filename() string  { return b.filename }
func (b *Bank) Version() int      { return b.version }
func (b *Bank) Strings() []string { return b.strings }

// Objects returns the bank's object records in file order.
func (b *Bank) Objects() []Node {
	out := make([]Node, 0, len(b.objects))
	for _, o := range b.objects {
		out = append(out, o)
	}
	return out
}

// Key identifies an object record globally: the bank it lives in and its
// short id inside that bank.
type Key struct {
	Bank uint32
	ID   uint32
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.Bank, k.ID)
}

// Index maps keys to raw object records across every loaded bank.
type Index struct {
	banks   map[uint32]*Bank
	order   []*Bank
	objects map[Key]Node
}

// NewIndex indexes the given banks. Loading the same bank id twice, or two
// records sharing a short id inside one bank, is an error.
func NewIndex(banks ...*Bank) (*Index, error) {
	idx := &Index{
		banks:   make(map[uint32]*Bank),
		objects: make(map[Key]Node),
	}
	for _, b := range banks {
		if err := idx.Add(b); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add indexes one more bank.
func (idx *Index) Add(b *Bank) error {
	if prev, ok := idx.banks[b.id]; ok {
		return fmt.Errorf("bank id %d loaded twice (%s and %s)", b.id, prev.filename, b.filename)
	}
	keys := make(map[Key]Node, len(b.objects))
	for _, o := range b.objects {
		_, sid := ShortID(o)
		k := Key{Bank: b.id, ID: sid}
		if _, dup := keys[k]; dup {
			return fmt.Errorf("bank %s: duplicate object id %d", b.filename, sid)
		}
		keys[k] = o
	}
	for k, o := range keys {
		idx.objects[k] = o
	}
	idx.banks[b.id] = b
	idx.order = append(idx.order, b)
	return nil
}

// Lookup returns the raw record for k, if any.
func (idx *Index) Lookup(k Key) (Node, bool) {
	n, ok := idx.objects[k]
	return n, ok
}

// Banks returns the indexed banks in load order.
func (idx *Index) Banks() []*Bank {
	return idx.order
}

// ObjectsOf returns every record in load order whose class name is class.
func (idx *Index) ObjectsOf(class string) []Node {
	var out []Node
	for _, b := range idx.order {
		for _, o := range b.objects {
			if o.name == class {
				out = append(out, o)
			}
		}
	}
	return out
}
