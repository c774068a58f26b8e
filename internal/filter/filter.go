// Package filter implements the render filter: a policy, loaded from HCL,
// deciding which referenced children are walked into during generation.
// Filtered children are still built; only their rendering is skipped.
package filter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
)

// Policy is a render filter. The zero value and a nil Policy are inactive.
type Policy struct {
	active      bool
	skipClasses map[string]struct{}
	skipIDs     map[uint32]struct{}
	onlyIDs     map[uint32]struct{}
}

type fileRoot struct {
	Filter *filterBlock `hcl:"filter,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type filterBlock struct {
	Active      *bool    `hcl:"active,optional"`
	SkipClasses []string `hcl:"skip_classes,optional"`
	SkipIDs     []uint32 `hcl:"skip_ids,optional"`
	OnlyIDs     []uint32 `hcl:"only_ids,optional"`
}

// New creates an active policy.
func New(skipClasses []string, skipIDs, onlyIDs []uint32) *Policy {
	p := &Policy{
		active:      true,
		skipClasses: make(map[string]struct{}),
		skipIDs:     make(map[uint32]struct{}),
		onlyIDs:     make(map[uint32]struct{}),
	}
	for _, c := range skipClasses {
		p.skipClasses[c] = struct{}{}
	}
	for _, id := range skipIDs {
		p.skipIDs[id] = struct{}{}
	}
	for _, id := range onlyIDs {
		p.onlyIDs[id] = struct{}{}
	}
	return p
}

// Load reads the policy from an HCL file. A file without a filter block
// yields an inactive policy.
func Load(ctx context.Context, path string) (*Policy, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse filter file %s: %w", path, diags)
	}
	p, err := decode(f.Body, path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Filter loaded.", "path", path, "active", p.Active())
	return p, nil
}

// Parse reads the policy from HCL source.
func Parse(src []byte, filename string) (*Policy, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse filter file %s: %w", filename, diags)
	}
	return decode(f.Body, filename)
}

func decode(body hcl.Body, filename string) (*Policy, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode filter file %s: %w", filename, diags)
	}
	if root.Filter == nil {
		return &Policy{}, nil
	}
	fb := root.Filter
	p := New(fb.SkipClasses, fb.SkipIDs, fb.OnlyIDs)
	if fb.Active != nil {
		p.active = *fb.Active
	}
	return p, nil
}

// Active reports whether the policy restricts anything.
func (p *Policy) Active() bool {
	return p != nil && p.active
}

// AllowInner reports whether the child n with short id sid is rendered.
func (p *Policy) AllowInner(n bnode.Node, sid uint32) bool {
	if !p.Active() {
		return true
	}
	if n != nil {
		if _, skip := p.skipClasses[n.Name()]; skip {
			return false
		}
	}
	if _, skip := p.skipIDs[sid]; skip {
		return false
	}
	if len(p.onlyIDs) > 0 {
		_, ok := p.onlyIDs[sid]
		return ok
	}
	return true
}
