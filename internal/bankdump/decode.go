package bankdump

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
)

func decodeFile(body *hclsyntax.Body) ([]*bnode.Bank, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	for name, attr := range body.Attributes {
		diags = append(diags, diag(attr.SrcRange, "Unexpected attribute", fmt.Sprintf("Attribute %q is not allowed at the top level.", name)))
	}

	var banks []*bnode.Bank
	for _, block := range body.Blocks {
		if block.Type != "bank" {
			diags = append(diags, diag(block.TypeRange, "Unexpected block", fmt.Sprintf("Only \"bank\" blocks are allowed at the top level, found %q.", block.Type)))
			continue
		}
		b, bankDiags := decodeBank(block)
		diags = append(diags, bankDiags...)
		if b != nil {
			banks = append(banks, b)
		}
	}
	return banks, diags
}

func decodeBank(block *hclsyntax.Block) (*bnode.Bank, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if len(block.Labels) != 1 {
		return nil, hcl.Diagnostics{diag(block.DefRange(), "Invalid bank block", "A bank block needs exactly one label: its filename.")}
	}

	var id uint32
	var version int
	var strs []string
	for name, attr := range block.Body.Attributes {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		var err error
		switch name {
		case "id":
			err = gocty.FromCtyValue(val, &id)
		case "version":
			err = gocty.FromCtyValue(val, &version)
		case "strings":
			var list cty.Value
			if list, err = convert.Convert(val, cty.List(cty.String)); err == nil {
				err = gocty.FromCtyValue(list, &strs)
			}
		default:
			err = errors.New("unknown bank attribute")
		}
		if err != nil {
			diags = append(diags, diag(attr.SrcRange, fmt.Sprintf("Invalid %q attribute", name), err.Error()))
		}
	}
	if _, ok := block.Body.Attributes["id"]; !ok {
		diags = append(diags, diag(block.DefRange(), "Missing bank id", "A bank block needs an \"id\" attribute."))
	}

	var objects []*bnode.Elem
	for _, child := range block.Body.Blocks {
		if child.Type != "object" {
			diags = append(diags, diag(child.TypeRange, "Unexpected block", fmt.Sprintf("Banks hold \"object\" blocks, found %q.", child.Type)))
			continue
		}
		obj, objDiags := decodeElem(child)
		diags = append(diags, objDiags...)
		if obj != nil {
			objects = append(objects, obj)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return bnode.NewBank(id, block.Labels[0], version, strs, objects...), diags
}

// decodeElem decodes an object, node or list block and its children.
func decodeElem(block *hclsyntax.Block) (*bnode.Elem, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if len(block.Labels) != 1 {
		return nil, hcl.Diagnostics{diag(block.DefRange(), "Invalid block", fmt.Sprintf("A %q block needs exactly one label.", block.Type))}
	}
	for name, attr := range block.Body.Attributes {
		diags = append(diags, diag(attr.SrcRange, "Unexpected attribute", fmt.Sprintf("Attribute %q is not allowed in a %q block; use a field block.", name, block.Type)))
	}

	e := bnode.NewElem(block.Labels[0])
	for _, child := range block.Body.Blocks {
		var c *bnode.Elem
		var childDiags hcl.Diagnostics
		switch child.Type {
		case "node", "list":
			c, childDiags = decodeElem(child)
		case "field":
			c, childDiags = decodeField(child)
		default:
			childDiags = hcl.Diagnostics{diag(child.TypeRange, "Unexpected block", fmt.Sprintf("Unknown block type %q.", child.Type))}
		}
		diags = append(diags, childDiags...)
		if c != nil {
			e.Append(c)
		}
	}
	return e, diags
}

// decodeField decodes a leaf field. Numbers and bools become the numeric
// value; a string value is kept as the "value" attribute. Every other
// attribute is a formatted attribute.
func decodeField(block *hclsyntax.Block) (*bnode.Elem, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if len(block.Labels) != 2 {
		return nil, hcl.Diagnostics{diag(block.DefRange(), "Invalid field block", "A field block needs two labels: type and name.")}
	}
	if len(block.Body.Blocks) > 0 {
		diags = append(diags, diag(block.Body.Blocks[0].TypeRange, "Unexpected block", "Field blocks cannot nest blocks."))
	}

	var num float64
	attrs := make(map[string]string)
	for name, attr := range block.Body.Attributes {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() || val.IsNull() {
			continue
		}
		if name == "value" && val.Type() != cty.String {
			v, err := numeric(val)
			if err != nil {
				diags = append(diags, diag(attr.SrcRange, "Invalid field value", err.Error()))
				continue
			}
			num = v
			continue
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil {
			diags = append(diags, diag(attr.SrcRange, fmt.Sprintf("Invalid %q attribute", name), err.Error()))
			continue
		}
		attrs[name] = str.AsString()
	}

	f := bnode.NewField(block.Labels[0], block.Labels[1], num)
	for k, v := range attrs {
		f.WithAttr(k, v)
	}
	return f, diags
}

func numeric(val cty.Value) (float64, error) {
	switch val.Type() {
	case cty.Number:
		var v float64
		err := gocty.FromCtyValue(val, &v)
		return v, err
	case cty.Bool:
		if val.True() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.New("a field value must be a number, a bool or a string")
}
