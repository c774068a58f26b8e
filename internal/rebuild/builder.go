package rebuild

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/fault"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// Lookup finds raw object records. *bnode.Index implements it.
type Lookup interface {
	Lookup(k bnode.Key) (bnode.Node, bool)
}

// Filter decides which referenced children are walked into.
type Filter interface {
	// Active reports whether the filter restricts anything.
	Active() bool
	// AllowInner reports whether the child n (with short id sid) is walked.
	AllowInner(n bnode.Node, sid uint32) bool
}

// AbortMode selects how far a failure propagates during generation.
type AbortMode string

const (
	// AbortRoot fails the whole root on any error below it.
	AbortRoot AbortMode = "root"
	// AbortSubtree drops the failing child and carries on with its siblings.
	// Cycles still abort the root.
	AbortSubtree AbortMode = "subtree"
)

// Options configures a Builder.
type Options struct {
	// Kinds maps class names to object factories. Defaults to DefaultKinds.
	Kinds *Kinds
	// Filter restricts which children are walked. Nil walks everything.
	Filter    Filter
	AbortMode AbortMode
}

// Builder owns the lazily built objects of one generation session.
type Builder struct {
	lookup Lookup
	kinds  *Kinds
	filter Filter
	abort  AbortMode

	objects   map[bnode.Key]Object
	failed    map[bnode.Key]error
	building  map[bnode.Key]struct{}
	rendering map[bnode.Key]struct{}

	unknowns    map[string]struct{}
	transitions int
	dropped     int
}

// New creates a Builder over the records reachable through lookup.
func New(lookup Lookup, opts Options) *Builder {
	if opts.Kinds == nil {
		opts.Kinds = DefaultKinds()
	}
	if opts.AbortMode == "" {
		opts.AbortMode = AbortRoot
	}
	return &Builder{
		lookup:    lookup,
		kinds:     opts.Kinds,
		filter:    opts.Filter,
		abort:     opts.AbortMode,
		objects:   make(map[bnode.Key]Object),
		failed:    make(map[bnode.Key]error),
		building:  make(map[bnode.Key]struct{}),
		rendering: make(map[bnode.Key]struct{}),
		unknowns:  make(map[string]struct{}),
	}
}

// GetOrBuild returns the object at key, building it on first request.
// requester is the short id of the object asking, for logging only.
//
// found is false only when no record exists at key; that is not an error.
// A failed build is remembered and the same error is returned on every later
// request, so Build runs at most once per key. Requesting an object whose
// build is still in progress returns a cycle fault.
func (b *Builder) GetOrBuild(ctx context.Context, key bnode.Key, requester uint32) (Object, bool, error) {
	logger := ctxlog.FromContext(ctx)

	if obj, ok := b.objects[key]; ok {
		return obj, true, nil
	}
	if err, ok := b.failed[key]; ok {
		return nil, true, err
	}

	n, ok := b.lookup.Lookup(key)
	if !ok {
		logger.Debug("GetOrBuild: object not found.", "key", key.String(), "requester", requester)
		return nil, false, nil
	}
	if _, busy := b.building[key]; busy {
		return nil, true, fault.Cycle(n.Name(), key.Bank, key.ID)
	}

	obj := b.kinds.New(n.Name())
	obj.Core().attach(b, n)

	logger.Debug("GetOrBuild: building object.", "class", n.Name(), "key", key.String(), "requester", requester)
	b.building[key] = struct{}{}
	err := obj.Build(ctx)
	delete(b.building, key)

	if err != nil {
		err = fault.Attach(err, n.Name(), key.Bank, key.ID)
		b.failed[key] = err
		return nil, true, err
	}
	b.objects[key] = obj
	return obj, true, nil
}

// Node returns the raw record at key without building it.
func (b *Builder) Node(key bnode.Key) (bnode.Node, bool) {
	return b.lookup.Lookup(key)
}

// Generate builds the object at key and renders its whole script into e.
func (b *Builder) Generate(ctx context.Context, key bnode.Key, e script.Emitter) error {
	obj, found, err := b.GetOrBuild(ctx, key, 0)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("root object %s not found", key)
	}
	return b.render(ctx, obj, e)
}

// render emits obj's entry, refusing to re-enter an object already on the
// render stack.
func (b *Builder) render(ctx context.Context, obj Object, e script.Emitter) error {
	base := obj.Core()
	key := base.Key()
	if _, busy := b.rendering[key]; busy {
		return fault.Cycle(base.class, key.Bank, key.ID)
	}
	b.rendering[key] = struct{}{}
	defer delete(b.rendering, key)
	return MakeScript(ctx, obj, e)
}

// renderChild is render for referenced children, where AbortSubtree may
// swallow the failure.
func (b *Builder) renderChild(ctx context.Context, obj Object, e script.Emitter) error {
	return b.tolerate(ctx, b.render(ctx, obj, e), obj.Core().Key())
}

// tolerate drops err under AbortSubtree, unless it is a cycle.
func (b *Builder) tolerate(ctx context.Context, err error, key bnode.Key) error {
	if err == nil || b.abort != AbortSubtree || fault.IsCycle(err) {
		return err
	}
	b.dropped++
	ctxlog.FromContext(ctx).Error("Dropping failed subtree.", "object", key.String(), "error", err)
	return nil
}

// ReportTransitionObject counts a transition object found outside a switch.
func (b *Builder) ReportTransitionObject() {
	b.transitions++
}

// TransitionObjects is the number of reported transition objects.
func (b *Builder) TransitionObjects() int {
	return b.transitions
}

// Dropped is the number of subtrees skipped under AbortSubtree.
func (b *Builder) Dropped() int {
	return b.dropped
}

// Built is the number of successfully built objects.
func (b *Builder) Built() int {
	return len(b.objects)
}

func (b *Builder) noteUnknowns(keys []string) {
	for _, k := range keys {
		b.unknowns[k] = struct{}{}
	}
}

// UnknownProps returns the sorted property keys seen whose effect is not
// reproduced.
func (b *Builder) UnknownProps() []string {
	out := make([]string, 0, len(b.unknowns))
	for k := range b.unknowns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
