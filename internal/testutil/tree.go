package testutil

import (
	"fmt"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
)

// PropKey formats a property key the way the bank printer does: "0x00 [Volume]".
func PropKey(id int, name string) string {
	return fmt.Sprintf("0x%02x [%s]", id, name)
}

// Object builds an object record with its sid field first.
func Object(class string, sid uint32, children ...*bnode.Elem) *bnode.Elem {
	return bnode.NewElem(class, bnode.NewField("sid", "ulID", float64(sid))).Append(children...)
}

// Node builds a sub-record.
func Node(name string, children ...*bnode.Elem) *bnode.Elem {
	return bnode.NewElem(name, children...)
}

// Field builds a numeric leaf field.
func Field(typ, name string, value float64) *bnode.Elem {
	return bnode.NewField(typ, name, value)
}

// Ref builds a "tid" field pointing to another object.
func Ref(name string, id uint32) *bnode.Elem {
	return bnode.NewField("tid", name, float64(id))
}

// Prop builds one entry of a property bundle.
func Prop(key string, value float64) *bnode.Elem {
	return bnode.NewElem("AkPropBundle",
		bnode.NewField("u8", "pID", 0).WithAttr("valuefmt", key),
		bnode.NewField("var", "pValue", value),
	)
}

// Props builds the current property bundle.
func Props(entries ...*bnode.Elem) *bnode.Elem {
	return bnode.NewElem("AkPropBundle<AkPropValue,unsigned char>", entries...)
}

// RangedProp builds one entry of the ranged property bundle.
func RangedProp(key string, lo, hi float64) *bnode.Elem {
	return bnode.NewElem("AkPropBundle",
		bnode.NewField("u8", "pID", 0).WithAttr("valuefmt", key),
		bnode.NewField("var", "min", lo),
		bnode.NewField("var", "max", hi),
	)
}

// Ranged builds the ranged property bundle.
func Ranged(entries ...*bnode.Elem) *bnode.Elem {
	return bnode.NewElem("AkPropBundle<RANGED_MODIFIERS<AkPropValue>>", entries...)
}

// InitialParams wraps bundles in the sub-record objects keep them in.
func InitialParams(children ...*bnode.Elem) *bnode.Elem {
	return bnode.NewElem("NodeInitialParams", children...)
}

// ActionValues wraps bundles in the sub-record actions keep them in.
func ActionValues(children ...*bnode.Elem) *bnode.Elem {
	return bnode.NewElem("ActionInitialValues", children...)
}

// Index seals objects into one bank and indexes it.
func Index(bankID uint32, objects ...*bnode.Elem) *bnode.Index {
	idx, err := bnode.NewIndex(bnode.NewBank(bankID, fmt.Sprintf("%d.bnk", bankID), 135, nil, objects...))
	if err != nil {
		panic(err)
	}
	return idx
}
