package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// Event is a game-triggered list of actions, all started at once.
type Event struct {
	Base
	actions []bnode.Node
}

func (o *Event) Build(ctx context.Context) error {
	o.actions = o.node.Finds("ulActionID")
	return nil
}

func (o *Event) Render(ctx context.Context, e script.Emitter) error {
	if len(o.actions) <= 1 {
		return o.processList(ctx, e, o.actions)
	}
	return o.group(script.GroupLayer, e, func() error {
		return o.processList(ctx, e, o.actions)
	})
}

// ActionPlay starts another object, possibly in another bank.
type ActionPlay struct {
	Base
	ntid    bnode.Node
	nbankid bnode.Node
}

func (o *ActionPlay) Build(ctx context.Context) error {
	if err := o.buildActionConfig(ctx); err != nil {
		return err
	}
	o.ntid = o.node.Find1("idExt")
	o.nbankid = o.node.Find1("bankID")
	return nil
}

func (o *ActionPlay) Render(ctx context.Context, e script.Emitter) error {
	if o.config.Delay == 0 {
		return o.processNext(ctx, e, o.ntid, o.nbankid)
	}
	return o.group(script.GroupSequence, e, func() error {
		return o.processNext(ctx, e, o.ntid, o.nbankid)
	})
}

// Action is any action that does not start playback (stop, pause, set
// state...). Its config is resolved and logged, nothing is rendered.
type Action struct {
	Base
}

func (o *Action) Build(ctx context.Context) error {
	return o.buildActionConfig(ctx)
}

func (o *Action) Render(ctx context.Context, e script.Emitter) error {
	return nil
}
