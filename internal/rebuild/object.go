package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/fault"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// Object is one rebuilt object record. Concrete kinds embed Base and
// override Build and Render.
type Object interface {
	Core() *Base
	// Build resolves the object's config from its record. It runs at most
	// once, before any Render.
	Build(ctx context.Context) error
	// Render emits the object's playback structure between the Begin and End
	// of its script entry.
	Render(ctx context.Context, e script.Emitter) error
}

// Base holds what every object kind shares: identity, config, field log,
// transitions and stingers.
type Base struct {
	builder *Builder
	node    bnode.Node
	class   string
	nsid    bnode.Node
	sid     uint32
	bank    uint32

	config      NodeConfig
	fields      script.Fields
	stingers    []Stinger
	transitions []bnode.Node
}

func (b *Base) attach(builder *Builder, n bnode.Node) {
	b.builder = builder
	b.node = n
	b.class = n.Name()
	b.nsid, b.sid = bnode.ShortID(n)
	if root := n.Root(); root != nil {
		b.bank = root.ID()
	}
}

func (b *Base) Core() *Base { return b }

// Build fails for kinds that do not know how to build themselves.
func (b *Base) Build(ctx context.Context) error {
	return fault.Schema("build not implemented for %s", b.class)
}

// Render fails for kinds that do not know how to render themselves.
func (b *Base) Render(ctx context.Context, e script.Emitter) error {
	return fault.Schema("render not implemented for %s", b.class)
}

func (b *Base) Node() bnode.Node { return b.node }
func (b *Base) Class() string { return b.class }
func (b *Base) SID() uint32 { return b.sid }
func (b *Base) Key() bnode.Key { return bnode.Key{Bank: b.bank, ID: b.sid} }
func (b *Base) Config() *NodeConfig { return &b.config }
func (b *Base) Fields() *script.Fields { return &b.fields }
func (b *Base) Stingers() []Stinger { return b.stingers }
func (b *Base) Transitions() []bnode.Node { return b.transitions }

// MakeScript writes obj's full entry into e. Failures are reported as a
// generation fault naming obj, with the cause kept in the chain.
func MakeScript(ctx context.Context, obj Object, e script.Emitter) error {
	base := obj.Core()
	e.Begin(base.node, &base.fields, base.nsid)
	err := obj.Render(ctx, e)
	e.End()
	if err != nil {
		return fault.Generation(base.class, base.bank, base.sid, err)
	}
	return nil
}

// processNext renders the object referenced by ntid. A zero id or a missing
// record is skipped silently, as is a child the session filter declines.
// nbankid, when present and nonzero, names the bank holding the target;
// otherwise the target lives in b's own bank.
func (b *Base) processNext(ctx context.Context, e script.Emitter, ntid, nbankid bnode.Node) error {
	tid := bnode.ID(ntid)
	if tid == 0 {
		return nil
	}
	bank := b.bank
	if id := bnode.ID(nbankid); id != 0 {
		bank = id
	}

	key := bnode.Key{Bank: bank, ID: tid}
	obj, found, err := b.builder.GetOrBuild(ctx, key, b.sid)
	if err != nil {
		return b.builder.tolerate(ctx, err, key)
	}
	if !found {
		return nil
	}

	if f := b.builder.filter; f != nil && f.Active() {
		child := obj.Core()
		if !f.AllowInner(child.node, child.sid) {
			ctxlog.FromContext(ctx).Debug("Filtered child skipped.", "class", child.class, "sid", child.sid, "parent", b.sid)
			return nil
		}
	}
	return b.builder.renderChild(ctx, obj, e)
}

// processList calls processNext for each reference in order.
func (b *Base) processList(ctx context.Context, e script.Emitter, ntids []bnode.Node) error {
	for _, ntid := range ntids {
		if err := b.processNext(ctx, e, ntid, nil); err != nil {
			return err
		}
	}
	return nil
}

// registerTransitions adds the pending transition targets that exist to the
// script's transition set. Targets are not built.
func (b *Base) registerTransitions(e script.Emitter) {
	for _, ntid := range b.transitions {
		n, ok := b.builder.Node(bnode.Key{Bank: b.bank, ID: bnode.ID(ntid)})
		if !ok {
			continue
		}
		e.Transitions().Add(n)
	}
}

// group renders body inside a group of the given mode carrying the object's
// config.
func (b *Base) group(mode script.GroupMode, e script.Emitter, body func() error) error {
	e.OpenGroup(mode, b.config.Params())
	err := body()
	e.CloseGroup()
	return err
}
