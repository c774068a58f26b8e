package script

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
)

// FieldKind tells how a logged field is printed.
type FieldKind int

const (
	// FieldProp is a plain legacy property field.
	FieldProp FieldKind = iota
	// FieldKeyVal is a bundle entry: key and value.
	FieldKeyVal
	// FieldKeyMinMax is a ranged bundle entry: key, min and max.
	FieldKeyMinMax
	// FieldKeyValVol is a state contribution: group, state and the volume it sets.
	FieldKeyValVol
	// FieldRTPC is a parameter curve: id with its min and max output.
	FieldRTPC
)

// Field is one entry of an object's field log.
type Field struct {
	Kind  FieldKind
	Nodes []bnode.Node
	Value float64
	Min   float64
	Max   float64
}

// Fields is the ordered log of raw fields that shaped an object's config.
type Fields struct {
	items []Field
}

func (f *Fields) Prop(n bnode.Node) {
	f.items = append(f.items, Field{Kind: FieldProp, Nodes: []bnode.Node{n}})
}

func (f *Fields) KeyVal(key, val bnode.Node) {
	f.items = append(f.items, Field{Kind: FieldKeyVal, Nodes: []bnode.Node{key, val}})
}

func (f *Fields) KeyMinMax(key, lo, hi bnode.Node) {
	f.items = append(f.items, Field{Kind: FieldKeyMinMax, Nodes: []bnode.Node{key, lo, hi}})
}

func (f *Fields) KeyValVol(group, state bnode.Node, volume float64) {
	f.items = append(f.items, Field{Kind: FieldKeyValVol, Nodes: []bnode.Node{group, state}, Value: volume})
}

func (f *Fields) RTPC(id bnode.Node, lo, hi float64) {
	f.items = append(f.items, Field{Kind: FieldRTPC, Nodes: []bnode.Node{id}, Min: lo, Max: hi})
}

// Items returns the logged fields in order.
func (f *Fields) Items() []Field {
	if f == nil {
		return nil
	}
	return f.items
}

// Len is the number of logged fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.items)
}

func (fd Field) String() string {
	switch fd.Kind {
	case FieldProp:
		return fmt.Sprintf("%s=%s", fd.Nodes[0].Name(), num(fd.Nodes[0].Value()))
	case FieldKeyVal:
		return fmt.Sprintf("%s=%s", label(fd.Nodes[0]), num(fd.Nodes[1].Value()))
	case FieldKeyMinMax:
		return fmt.Sprintf("%s=(%s,%s)", label(fd.Nodes[0]), num(fd.Nodes[1].Value()), num(fd.Nodes[2].Value()))
	case FieldKeyValVol:
		return fmt.Sprintf("state[%d:%d]=%s", bnode.ID(fd.Nodes[0]), bnode.ID(fd.Nodes[1]), num(fd.Value))
	case FieldRTPC:
		return fmt.Sprintf("rtpc[%d]=(%s,%s)", bnode.ID(fd.Nodes[0]), num(fd.Min), num(fd.Max))
	}
	return "?"
}

func label(n bnode.Node) string {
	if v := n.Attr("valuefmt"); v != "" {
		return v
	}
	return n.Name()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
