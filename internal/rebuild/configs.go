package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/props"
)

// Kinds whose state links are inspected for crossfades.
var stateLinked = map[string]bool{
	"CAkMusicTrack":   true,
	"CAkMusicSegment": true,
}

// buildActionConfig resolves an action's initial values. Old banks keep the
// delay in a plain tDelay field, which then sets the delay directly.
func (b *Base) buildActionConfig(ctx context.Context) error {
	ninit := b.node.Find1(props.ActionGroup)
	if ninit == nil {
		return nil
	}
	s, err := props.New(ninit)
	if err != nil {
		return err
	}
	b.config.apply(s)
	b.builder.noteUnknowns(s.Unknowns)

	if s.Encoding != props.EncodingLegacy {
		b.logBundles(s)
		return nil
	}
	b.config.Delay = legacyBase(s, "tDelay")
	b.propLegacy(s)
	return nil
}

// buildAudioConfig resolves the config of sound and music objects: state
// volumes, parameter curves, the output bus and the initial values.
func (b *Base) buildAudioConfig(ctx context.Context) error {
	if stateLinked[b.class] {
		if err := b.buildStates(ctx); err != nil {
			return err
		}
		b.buildRTPCs(ctx)
	}
	if err := b.buildBus(ctx); err != nil {
		return err
	}

	ninit := b.node.Find1(props.AudioGroup)
	if ninit == nil {
		ninit = b.node.Find1(props.StateGroup)
	}
	if ninit == nil {
		return nil
	}
	s, err := props.New(ninit)
	if err != nil {
		return err
	}
	b.config.apply(s)
	b.builder.noteUnknowns(s.Unknowns)

	if s.Encoding != props.EncodingLegacy {
		b.logBundles(s)
		return nil
	}
	b.config.Volume = legacyBase(s, "Volume")
	b.config.Pitch = legacyBase(s, "Pitch")
	b.propLegacy(s)
	return nil
}

// legacyBase is the base field of a legacy property, ignoring its range.
func legacyBase(s *props.Set, name string) float64 {
	for _, nfield := range s.Legacy {
		if nfield.Name() == name {
			return nfield.Value()
		}
	}
	return 0
}

func (b *Base) propLegacy(s *props.Set) {
	for _, nfield := range s.Legacy {
		if nfield.Value() != 0 {
			b.fields.Prop(nfield)
		}
	}
}

func (b *Base) logBundles(s *props.Set) {
	for _, kv := range s.Values {
		b.fields.KeyVal(kv.Key, kv.Value)
	}
	for _, kr := range s.Ranged {
		b.fields.KeyMinMax(kr.Key, kr.Min, kr.Max)
	}
}

// buildStates marks the object crossfaded when any linked state object
// changes the volume.
func (b *Base) buildStates(ctx context.Context) error {
	nchunk := b.node.Find1("StateChunk")
	if nchunk == nil {
		return nil
	}
	for _, ngroup := range nchunk.Finds("AkStateGroupChunk") {
		ngid := ngroup.Find("ulStateGroupID")
		for _, nstate := range ngroup.Finds("AkState") {
			ntid := nstate.Find("ulStateInstanceID")
			tid := bnode.ID(ntid)
			if tid == 0 {
				continue
			}
			obj, found, err := b.builder.GetOrBuild(ctx, bnode.Key{Bank: b.bank, ID: tid}, b.sid)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			cfg := obj.Core().Config()
			if cfg.Volume == 0 {
				continue
			}
			nsid := nstate.Find("ulStateID")
			if ngid == nil || nsid == nil {
				continue
			}
			ctxlog.FromContext(ctx).Debug("State volume found.", "class", b.class, "sid", b.sid, "group", bnode.ID(ngid), "state", bnode.ID(nsid), "volume", cfg.Volume)
			b.config.Crossfaded = true
			b.config.VolumeStates = append(b.config.VolumeStates, VolumeState{
				Group:  ngid,
				State:  nsid,
				Volume: cfg.Volume,
				Config: cfg,
			})
			b.fields.KeyValVol(ngid, nsid, cfg.Volume)
		}
	}
	return nil
}

// buildRTPCs attaches the object's parameter curves when one of them drives
// a volume, and marks the object crossfaded.
func (b *Base) buildRTPCs(ctx context.Context) {
	rtpcs := parseRTPCs(b.node)
	var volume []RTPC
	for _, r := range rtpcs {
		if r.IsVolume() {
			volume = append(volume, r)
		}
	}
	if len(volume) == 0 {
		return
	}
	b.config.RTPCs = rtpcs
	b.config.Crossfaded = true
	for _, r := range volume {
		b.fields.RTPC(r.ID, r.Min, r.Max)
	}
	ctxlog.FromContext(ctx).Debug("Parameter curves attached.", "class", b.class, "sid", b.sid, "count", len(rtpcs))
}

// buildBus links the overriding output bus, when it lives in a loaded bank.
func (b *Base) buildBus(ctx context.Context) error {
	tid := bnode.ID(b.node.Find1("OverrideBusId"))
	if tid == 0 {
		return nil
	}
	obj, found, err := b.builder.GetOrBuild(ctx, bnode.Key{Bank: b.bank, ID: tid}, b.sid)
	if err != nil || !found {
		return err
	}
	b.config.Bus = obj.Core().Config()
	return nil
}

// buildTransitionRules collects transition targets. Only switches keep them;
// elsewhere they are counted as a curiosity.
func (b *Base) buildTransitionRules(isSwitch bool) {
	for _, nrule := range b.node.Finds("AkMusicTransitionRule") {
		for _, nobj := range nrule.Finds("AkMusicTransitionObject") {
			nseg := nobj.Find("segmentID")
			if bnode.ID(nseg) == 0 {
				continue
			}
			if isSwitch {
				b.transitions = append(b.transitions, nseg)
			} else {
				b.builder.ReportTransitionObject()
			}
		}
	}
}

// Stinger is a music cue played over the current segment when its trigger
// fires.
type Stinger struct {
	Node           bnode.Node
	Trigger        bnode.Node
	Segment        bnode.Node
	SyncPlayAt     float64
	DontRepeatTime float64
	LookAhead      float64
}

func (b *Base) buildStingers() {
	for _, nsting := range b.node.Finds("CAkStinger") {
		nseg := nsting.Find("SegmentID")
		if bnode.ID(nseg) == 0 {
			continue
		}
		b.stingers = append(b.stingers, Stinger{
			Node:           nsting,
			Trigger:        nsting.Find("TriggerID"),
			Segment:        nseg,
			SyncPlayAt:     valueOf(nsting.Find("SyncPlayAt")),
			DontRepeatTime: valueOf(nsting.Find("DontRepeatTime")),
			LookAhead:      valueOf(nsting.Find("numSegmentLookAhead")),
		})
	}
}

func valueOf(n bnode.Node) float64 {
	if n == nil {
		return 0
	}
	return n.Value()
}
