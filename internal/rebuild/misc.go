package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/props"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// Bus mixes the voices routed to it. Buses are built when referenced as an
// output bus and never rendered.
type Bus struct {
	Base
}

func (o *Bus) Build(ctx context.Context) error {
	ninit := o.node.Find1("BusInitialParams")
	if ninit == nil {
		ninit = o.node
	}
	s, err := props.New(ninit)
	if err != nil {
		return err
	}
	o.config.apply(s)
	o.builder.noteUnknowns(s.Unknowns)
	o.logBundles(s)
	return s.RequireNoLoop()
}

func (o *Bus) Render(ctx context.Context, e script.Emitter) error {
	return nil
}

// State holds the property changes applied while a state is active.
type State struct {
	Base
}

func (o *State) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	return o.config.RequireNoLoop()
}

func (o *State) Render(ctx context.Context, e script.Emitter) error {
	return nil
}

// FxCustom holds the parameters of a plugin, referenced by sources.
type FxCustom struct {
	Base
	pluginID uint32
}

func (o *FxCustom) Build(ctx context.Context) error {
	o.pluginID = uint32(valueOf(o.node.Find1("fxID")))
	return nil
}

func (o *FxCustom) Render(ctx context.Context, e script.Emitter) error {
	return nil
}

// PluginID is the plugin the parameters belong to.
func (o *FxCustom) PluginID() uint32 { return o.pluginID }
