package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// MusicSegment plays its tracks together for the segment's duration.
type MusicSegment struct {
	Base
	duration float64
	tracks   []bnode.Node
}

func (o *MusicSegment) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	o.buildStingers()
	o.duration = valueOf(o.node.Find1("fDuration"))
	if nchildren := o.node.Find1("Children"); nchildren != nil {
		o.tracks = nchildren.Finds("ulChildID")
	}
	return nil
}

func (o *MusicSegment) Render(ctx context.Context, e script.Emitter) error {
	return o.group(script.GroupSegment, e, func() error {
		if len(o.tracks) == 0 {
			e.Source(silence(o.duration), script.Params{})
			return nil
		}
		return o.processList(ctx, e, o.tracks)
	})
}

// MusicTrack plays its clips. A track without sources plays silence.
type MusicTrack struct {
	Base
	sources []*Source
}

func (o *MusicTrack) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	for _, nbnksrc := range o.node.Finds("AkBankSourceData") {
		src, err := o.parseSource(ctx, nbnksrc)
		if err != nil {
			return err
		}
		o.sources = append(o.sources, src)
	}
	return nil
}

func (o *MusicTrack) Render(ctx context.Context, e script.Emitter) error {
	if len(o.sources) == 0 {
		e.Source(silence(0), o.config.Params())
		return nil
	}
	return o.group(script.GroupLayer, e, func() error {
		for _, src := range o.sources {
			e.Source(src.script(), script.Params{})
		}
		return nil
	})
}

// Sources are the parsed clips in record order.
func (o *MusicTrack) Sources() []*Source { return o.sources }

// MusicRanSeqCntr plays a playlist of segments.
type MusicRanSeqCntr struct {
	Base
	items []bnode.Node
}

func (o *MusicRanSeqCntr) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	o.buildStingers()
	o.buildTransitionRules(false)

	nitems := o.node.Finds("AkMusicRanSeqPlaylistItem")
	for _, nitem := range nitems {
		o.items = append(o.items, nitem.Find1("SegmentID"))
	}
	// the root item holds the playlist loop count; 1 plays once
	if len(nitems) > 0 {
		if nloop := nitems[0].Find1("Loop"); nloop != nil {
			if nloop.Value() == 1 {
				o.config.DisableLoop()
			} else {
				o.config.SetLoop(nloop.Value(), nil)
			}
		}
	}
	return nil
}

func (o *MusicRanSeqCntr) Render(ctx context.Context, e script.Emitter) error {
	return o.group(script.GroupPlaylist, e, func() error {
		return o.processList(ctx, e, o.items)
	})
}

// MusicSwitchCntr picks a child through its decision tree. Every leaf is
// rendered and the transition targets are registered with the script.
type MusicSwitchCntr struct {
	Base
	leaves []bnode.Node
}

func (o *MusicSwitchCntr) Build(ctx context.Context) error {
	if err := o.buildAudioConfig(ctx); err != nil {
		return err
	}
	o.buildStingers()
	o.buildTransitionRules(true)

	if ntree := o.node.Find1("AkDecisionTree"); ntree != nil {
		o.leaves = ntree.Finds("audioNodeId")
		return nil
	}
	// older banks list plain switch associations
	for _, nassoc := range o.node.Finds("AkMusicSwitchAssoc") {
		o.leaves = append(o.leaves, nassoc.Find1("nodeID"))
	}
	return nil
}

func (o *MusicSwitchCntr) Render(ctx context.Context, e script.Emitter) error {
	o.registerTransitions(e)
	return o.group(script.GroupSwitch, e, func() error {
		return o.processList(ctx, e, o.leaves)
	})
}
