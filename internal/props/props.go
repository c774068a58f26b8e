// Package props resolves the numeric properties of a bank object into a single
// normalized Set, whatever binary encoding the bank used for them.
package props

import (
	"maps"
	"strings"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/fault"
)

// Canonical property keys.
const (
	KeyVolume          = "Volume"
	KeyMakeUpGain      = "MakeUpGain"
	KeyBusVolume       = "BusVolume"
	KeyOutputBusVolume = "OutputBusVolume"
	KeyPitch           = "Pitch"
	KeyPlaybackSpeed   = "PlaybackSpeed"
	KeyLoop            = "Loop"
	KeyDelayTime       = "DelayTime"
	KeyInitialDelay    = "InitialDelay"
	KeyTransitionTime  = "TransitionTime"
)

// Bundle names, newest first. A given bank version only uses one of them.
var valueBundles = []string{
	"AkPropBundle<AkPropValue,unsigned char>",
	"AkPropBundle<float,unsigned short>",
	"AkPropBundle<float>",
}

const rangedBundle = "AkPropBundle<RANGED_MODIFIERS<AkPropValue>>"

// Legacy parameter groups.
const (
	AudioGroup  = "NodeInitialParams"
	StateGroup  = "StateInitialValues"
	ActionGroup = "ActionInitialValues"
)

// watched properties are resolved normally but reported as unknowns, since
// their effect on playback is not reproduced.
var watched = []string{
	"FadeInTime", "FadeOutTime",
	"CrossfadeUpCurve", "CrossfadeDownCurve", "LoopCrossfadeDuration",
	"LoopStart", "LoopEnd",
}

// LegacyProp names the base, min and max fields of one legacy property.
type LegacyProp struct {
	Base, Min, Max string
}

var (
	LegacyAudioProps = []LegacyProp{
		{"Volume", "Volume.min", "Volume.max"},
		{"LFE", "LFE.min", "LFE.max"},
		{"Pitch", "Pitch.min", "Pitch.max"},
		{"LPF", "LPF.min", "LPF.max"},
	}
	LegacyActionProps = []LegacyProp{
		{"tDelay", "tDelayMin", "tDelayMax"},
		{"TTime", "TTimeMin", "TTimeMax"},
	}
	legacyNames = map[string]string{
		"tDelay": KeyDelayTime,
		"TTime":  KeyTransitionTime,
	}
)

// Encoding tells which property source a Set was resolved from.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingBundle
	EncodingLegacy
)

// Range is the randomization window of a property, relative to its base.
type Range struct {
	Min, Max float64
}

// KeyValue is the raw key and value fields of one bundle entry.
type KeyValue struct {
	Key, Value bnode.Node
}

// KeyRange is the raw key, min and max fields of one ranged bundle entry.
type KeyRange struct {
	Key, Min, Max bnode.Node
}

// Set is the resolved property set of one object. Derived fields are computed
// once by New; only SetLoop and DisableLoop change them afterwards.
type Set struct {
	// Valid is true when any property source was found, even an empty one.
	Valid    bool
	Encoding Encoding

	// relative values
	Volume          float64 // voice volume (objects) or volume added to input voices (buses)
	BusVolume       float64
	OutputBusVolume float64
	MakeUpGain      float64
	Pitch           float64 // sound hierarchy
	PlaybackSpeed   float64 // music hierarchy, multiplicative

	// Delay in milliseconds.
	Delay float64
	// Loop is nil when no loop info exists; 0 means infinite.
	Loop *float64

	Unknowns []string
	Legacy   []bnode.Node
	Values   []KeyValue
	Ranged   []KeyRange

	props  map[string]float64
	ranges map[string]Range
}

// New resolves the properties found under n. n may be an object record or one
// of its init-values sub-records.
func New(n bnode.Node) (*Set, error) {
	s := &Set{
		props:  make(map[string]float64),
		ranges: make(map[string]Range),
	}
	if err := s.buildBundles(n); err != nil {
		return nil, err
	}
	if !s.Valid {
		if err := s.buildLegacy(n); err != nil {
			return nil, err
		}
	}
	if err := s.prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) buildBundles(n bnode.Node) error {
	var nvalues bnode.Node
	for _, name := range valueBundles {
		if nvalues = n.Find(name); nvalues != nil {
			break
		}
	}
	if nvalues != nil {
		s.Valid = true
		s.Encoding = EncodingBundle
		for _, nprop := range nvalues.Finds("AkPropBundle") {
			nkey := nprop.Find("pID")
			nval := nprop.Find("pValue")
			if nkey == nil || nval == nil {
				continue
			}
			s.Values = append(s.Values, KeyValue{Key: nkey, Value: nval})
			if err := add(s, s.props, nkey.Attr("valuefmt"), nval.Value()); err != nil {
				return err
			}
		}
	}

	// ranged values: a value is picked at random on each play
	nranges := n.Find(rangedBundle)
	if nranges != nil {
		s.Valid = true
		s.Encoding = EncodingBundle
		for _, nprop := range nranges.Finds("AkPropBundle") {
			nkey := nprop.Find("pID")
			nmin := nprop.Find("min")
			nmax := nprop.Find("max")
			if nkey == nil || nmin == nil || nmax == nil {
				continue
			}
			s.Ranged = append(s.Ranged, KeyRange{Key: nkey, Min: nmin, Max: nmax})
			if err := add(s, s.ranges, nkey.Attr("valuefmt"), Range{nmin.Value(), nmax.Value()}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) buildLegacy(n bnode.Node) error {
	var naudio, naction bnode.Node
	switch n.Name() {
	case AudioGroup, StateGroup:
		naudio = n
	case ActionGroup:
		naction = n
	default:
		if naudio = n.Find1(AudioGroup); naudio == nil {
			naction = n.Find1(ActionGroup)
		}
	}

	if naudio != nil {
		return s.buildLegacyGroup(naudio, LegacyAudioProps)
	}
	if naction != nil {
		return s.buildLegacyGroup(naction, LegacyActionProps)
	}
	return nil
}

func (s *Set) buildLegacyGroup(group bnode.Node, list []LegacyProp) error {
	s.Valid = true
	s.Encoding = EncodingLegacy
	for _, p := range list {
		nprop := group.Find(p.Base)
		if nprop == nil {
			continue
		}
		nmin := group.Find(p.Min)
		nmax := group.Find(p.Max)
		s.Legacy = append(s.Legacy, nprop)
		if nmin != nil {
			s.Legacy = append(s.Legacy, nmin)
		}
		if nmax != nil {
			s.Legacy = append(s.Legacy, nmax)
		}

		key := p.Base
		if name, ok := legacyNames[key]; ok {
			key = name
		}
		if err := add(s, s.props, key, nprop.Value()); err != nil {
			return err
		}
		r := Range{Min: valueOf(nmin), Max: valueOf(nmax)}
		if err := add(s, s.ranges, key, r); err != nil {
			return err
		}
	}
	return nil
}

func valueOf(n bnode.Node) float64 {
	if n == nil {
		return 0
	}
	return n.Value()
}

// Canonical turns a formatted key "0xNN [Name]" into "Name". Unknown keys
// ("[?]") and custom keys are kept verbatim since their text is not unique.
func Canonical(raw string) string {
	if strings.Contains(raw, "?") || strings.Contains(raw, "Custom") {
		return raw
	}
	pos := strings.Index(raw, "[")
	if pos < 0 {
		return raw
	}
	return strings.TrimSuffix(raw[pos+1:], "]")
}

func add[V any](s *Set, items map[string]V, raw string, val V) error {
	key := Canonical(raw)
	for _, w := range watched {
		if strings.Contains(key, w) {
			s.Unknowns = append(s.Unknowns, key)
			break
		}
	}
	if _, ok := items[key]; ok {
		return fault.Schema("repeated prop %s", key)
	}
	items[key] = val
	return nil
}

func (s *Set) prepare() error {
	if v, ok := s.Lookup(KeyLoop); ok {
		s.Loop = &v
	}

	s.Volume = s.Resolve(KeyVolume, 0)
	s.MakeUpGain = s.Resolve(KeyMakeUpGain, 0)
	s.BusVolume = s.Resolve(KeyBusVolume, 0)
	s.OutputBusVolume = s.Resolve(KeyOutputBusVolume, 0)
	s.Pitch = s.Resolve(KeyPitch, 0)
	s.PlaybackSpeed = s.Resolve(KeyPlaybackSpeed, 0)

	// DelayTime is set by actions in ms, InitialDelay by objects in seconds
	if s.Has(KeyDelayTime) && s.Has(KeyInitialDelay) {
		return fault.Schema("2 delays found")
	}
	s.Delay = s.Resolve(KeyDelayTime, 0)
	if s.Has(KeyInitialDelay) {
		s.Delay = s.Resolve(KeyInitialDelay, 0) * 1000.0
	}
	return nil
}

// Has reports whether key has a base value or a range.
func (s *Set) Has(key string) bool {
	_, okv := s.props[key]
	_, okr := s.ranges[key]
	return okv || okr
}

// Lookup resolves key, reporting false when it has neither base nor range.
// A missing base defaults to 0. A range other than (0, 0) averages the
// randomized window: base + (min + max) / 2.
func (s *Set) Lookup(key string) (float64, bool) {
	value, okv := s.props[key]
	r, okr := s.ranges[key]
	if !okv && !okr {
		return 0, false
	}
	if okr && (r.Min != 0 || r.Max != 0) {
		lo := value + r.Min
		hi := value + r.Max
		value = (lo + hi) / 2
	}
	return value, true
}

// Resolve is Lookup returning def for absent keys.
func (s *Set) Resolve(key string, def float64) float64 {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return def
}

// Props returns a copy of the base values by canonical key.
func (s *Set) Props() map[string]float64 { return maps.Clone(s.props) }

// Ranges returns a copy of the ranges by canonical key.
func (s *Set) Ranges() map[string]Range { return maps.Clone(s.ranges) }

// HasVolumes reports whether the set changes the voice volume.
func (s *Set) HasVolumes() bool {
	return s.Volume != 0 || s.MakeUpGain != 0
}

// SetLoop overwrites the loop value for callers that know it from elsewhere,
// optionally with a range, and resolves it again.
func (s *Set) SetLoop(value float64, r *Range) {
	s.props[KeyLoop] = value
	if r != nil {
		s.ranges[KeyLoop] = *r
	}
	v, _ := s.Lookup(KeyLoop)
	s.Loop = &v
}

// DisableLoop clears the loop regardless of what was parsed.
func (s *Set) DisableLoop() {
	s.Loop = nil
}

// RequireNoLoop fails when a loop value is present.
func (s *Set) RequireNoLoop() error {
	if s.Loop != nil {
		return fault.Schema("loop flag found")
	}
	return nil
}
