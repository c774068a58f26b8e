// Package script defines what the rebuild engine tells a playback-script
// renderer, and ships a plain-text outline renderer.
//
// The engine drives an Emitter depth-first: Begin for each object (with its
// field log), the object's playback structure (groups and sources), then End.
// Transition targets found on the way are collected in the emitter's
// Transitions set.
package script

import (
	"github.com/specialistvlad/bnkrebuild/internal/bnode"
)

// GroupMode is how a group plays its children.
type GroupMode string

const (
	GroupSequence GroupMode = "sequence"
	GroupRandom   GroupMode = "random"
	GroupLayer    GroupMode = "layer"
	GroupSwitch   GroupMode = "switch"
	GroupSegment  GroupMode = "segment"
	GroupPlaylist GroupMode = "playlist"
)

// Params is the playback configuration applied to a group or source.
type Params struct {
	Volume        float64
	MakeUpGain    float64
	Pitch         float64
	PlaybackSpeed float64
	Delay         float64
	Loop          *float64
	Crossfaded    bool
}

// Source is a leaf sound.
type Source struct {
	MediaID  uint32
	PluginID uint32
	Bank     string
	Silent   bool
	// Duration of a silent clip in milliseconds, when known.
	Duration float64
}

// Emitter receives the rebuilt graph. Implementations are used by one
// generation pass at a time.
type Emitter interface {
	// Begin opens the entry of obj. identity is its sid field, if any.
	Begin(obj bnode.Node, fields *Fields, identity bnode.Node)
	// End closes the entry opened by the matching Begin.
	End()

	OpenGroup(mode GroupMode, p Params)
	CloseGroup()
	Source(src Source, p Params)

	// Transitions is the transition collection of the current script.
	Transitions() *Transitions
}

// Transitions collects transition target objects without duplicates.
type Transitions struct {
	nodes []bnode.Node
	seen  map[bnode.Node]struct{}
}

// Add records n once.
func (t *Transitions) Add(n bnode.Node) {
	if n == nil {
		return
	}
	if t.seen == nil {
		t.seen = make(map[bnode.Node]struct{})
	}
	if _, ok := t.seen[n]; ok {
		return
	}
	t.seen[n] = struct{}{}
	t.nodes = append(t.nodes, n)
}

// Nodes returns the collected targets in insertion order.
func (t *Transitions) Nodes() []bnode.Node {
	return t.nodes
}
