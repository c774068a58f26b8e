package rebuild

import (
	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/fault"
	"github.com/specialistvlad/bnkrebuild/internal/props"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// VolumeState is one state that changes an object's volume: the state group
// and state ids and the volume the target state object applies.
type VolumeState struct {
	Group  bnode.Node
	State  bnode.Node
	Volume float64
	Config *NodeConfig
}

// NodeConfig is the resolved playback configuration of one object.
type NodeConfig struct {
	Volume          float64
	BusVolume       float64
	OutputBusVolume float64
	MakeUpGain      float64
	Pitch           float64
	PlaybackSpeed   float64
	// Delay in milliseconds.
	Delay float64
	// Loop is nil when no loop applies; 0 is infinite.
	Loop *float64
	// Crossfaded is set when states change the volume over time.
	Crossfaded bool

	VolumeStates []VolumeState
	RTPCs        []RTPC

	// Bus is the config of the overriding output bus, if any.
	Bus *NodeConfig

	set *props.Set
}

// apply copies the derived values of s.
func (c *NodeConfig) apply(s *props.Set) {
	c.set = s
	c.Volume = s.Volume
	c.BusVolume = s.BusVolume
	c.OutputBusVolume = s.OutputBusVolume
	c.MakeUpGain = s.MakeUpGain
	c.Pitch = s.Pitch
	c.PlaybackSpeed = s.PlaybackSpeed
	c.Delay = s.Delay
	c.Loop = s.Loop
}

// Props is the resolved property set, nil when the object had none.
func (c *NodeConfig) Props() *props.Set {
	return c.set
}

// SetLoop forces the loop value, with an optional randomization range.
func (c *NodeConfig) SetLoop(value float64, r *props.Range) {
	if c.set == nil {
		v := value
		if r != nil && (r.Min != 0 || r.Max != 0) {
			v = (2*value + r.Min + r.Max) / 2
		}
		c.Loop = &v
		return
	}
	c.set.SetLoop(value, r)
	c.Loop = c.set.Loop
}

// DisableLoop clears any loop value.
func (c *NodeConfig) DisableLoop() {
	if c.set != nil {
		c.set.DisableLoop()
	}
	c.Loop = nil
}

// RequireNoLoop fails when a loop value is present.
func (c *NodeConfig) RequireNoLoop() error {
	if c.Loop != nil {
		return fault.Schema("loop flag found")
	}
	return nil
}

// HasVolumes reports whether the config changes the voice volume.
func (c *NodeConfig) HasVolumes() bool {
	return c.Volume != 0 || c.MakeUpGain != 0
}

// Params is the view of the config handed to emitters.
func (c *NodeConfig) Params() script.Params {
	p := script.Params{
		Volume:        c.Volume,
		MakeUpGain:    c.MakeUpGain,
		Pitch:         c.Pitch,
		PlaybackSpeed: c.PlaybackSpeed,
		Delay:         c.Delay,
		Loop:          c.Loop,
		Crossfaded:    c.Crossfaded,
	}
	if c.Bus != nil {
		p.Volume += c.Bus.Volume + c.Bus.BusVolume
	}
	return p
}
