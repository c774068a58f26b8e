package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/props"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// Sound plays a single source.
type Sound struct {
	Base
	source *Source
}

func (o *Sound) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	nbnksrc := o.node.Find1("AkBankSourceData")
	if nbnksrc == nil {
		return nil
	}
	src, err := o.parseSource(ctx, nbnksrc)
	if err != nil {
		return err
	}
	o.source = src
	return nil
}

func (o *Sound) Render(ctx context.Context, e script.Emitter) error {
	if o.source == nil {
		e.Source(silence(0), o.config.Params())
		return nil
	}
	e.Source(o.source.script(), o.config.Params())
	return nil
}

// Source is the parsed source, nil when the record had none.
func (o *Sound) Source() *Source { return o.source }

// Container modes stored in eMode.
const (
	modeSequence = 0
	modeRandom   = 1
)

// RanSeqCntr plays its playlist in order or at random.
type RanSeqCntr struct {
	Base
	mode  script.GroupMode
	items []bnode.Node
}

func (o *RanSeqCntr) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	o.mode = script.GroupSequence
	if nmode := o.node.Find1("eMode"); nmode != nil && nmode.Value() == modeRandom {
		o.mode = script.GroupRandom
	}

	// a loop count of 1 plays once; 0 is infinite
	if nloop := o.node.Find1("sLoopCount"); nloop != nil {
		count := nloop.Value()
		if count == 1 {
			o.config.DisableLoop()
		} else {
			r := &props.Range{
				Min: valueOf(o.node.Find1("sLoopModMin")),
				Max: valueOf(o.node.Find1("sLoopModMax")),
			}
			o.config.SetLoop(count, r)
		}
	}

	for _, nitem := range o.node.Finds("AkPlaylistItem") {
		o.items = append(o.items, nitem.Find("ulPlayID"))
	}
	return nil
}

func (o *RanSeqCntr) Render(ctx context.Context, e script.Emitter) error {
	return o.group(o.mode, e, func() error {
		return o.processList(ctx, e, o.items)
	})
}

// SwitchCntr plays one of its branches depending on a switch or state. Every
// branch is rendered; empty branches (id 0) are skipped.
type SwitchCntr struct {
	Base
	branches []bnode.Node
}

func (o *SwitchCntr) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	for _, npkg := range o.node.Finds("CAkSwitchPackage") {
		o.branches = append(o.branches, npkg.Finds("NodeID")...)
	}
	return nil
}

func (o *SwitchCntr) Render(ctx context.Context, e script.Emitter) error {
	return o.group(script.GroupSwitch, e, func() error {
		return o.processList(ctx, e, o.branches)
	})
}

// LayerCntr plays all its children at once.
type LayerCntr struct {
	Base
	children []bnode.Node
}

func (o *LayerCntr) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	if nchildren := o.node.Find1("Children"); nchildren != nil {
		o.children = nchildren.Finds("ulChildID")
	}
	return nil
}

func (o *LayerCntr) Render(ctx context.Context, e script.Emitter) error {
	return o.group(script.GroupLayer, e, func() error {
		return o.processList(ctx, e, o.children)
	})
}
