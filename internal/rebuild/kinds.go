package rebuild

import (
	"strings"
)

// Factory creates an empty object of one kind, ready to be attached.
type Factory func() Object

type prefixKind struct {
	prefix  string
	factory Factory
}

// Kinds maps record class names to object factories. Exact names win over
// prefixes; prefixes are tried in registration order.
type Kinds struct {
	exact    map[string]Factory
	prefixes []prefixKind
}

// NewKinds returns an empty registry.
func NewKinds() *Kinds {
	return &Kinds{exact: make(map[string]Factory)}
}

// Register binds class to f, replacing any previous binding.
func (k *Kinds) Register(class string, f Factory) {
	k.exact[class] = f
}

// RegisterPrefix binds every class starting with prefix that has no exact
// binding.
func (k *Kinds) RegisterPrefix(prefix string, f Factory) {
	k.prefixes = append(k.prefixes, prefixKind{prefix: prefix, factory: f})
}

// Has reports whether class resolves to a registered kind.
func (k *Kinds) Has(class string) bool {
	return k.factory(class) != nil
}

// New creates an object for class. Unregistered classes get an object whose
// Build fails.
func (k *Kinds) New(class string) Object {
	if f := k.factory(class); f != nil {
		return f()
	}
	return &Unsupported{}
}

func (k *Kinds) factory(class string) Factory {
	if f, ok := k.exact[class]; ok {
		return f
	}
	for _, p := range k.prefixes {
		if strings.HasPrefix(class, p.prefix) {
			return p.factory
		}
	}
	return nil
}

// DefaultKinds registers every object kind this package implements.
func DefaultKinds() *Kinds {
	k := NewKinds()
	k.Register("CAkEvent", func() Object { return &Event{} })
	k.Register("CAkActionPlay", func() Object { return &ActionPlay{} })
	k.Register("CAkActionPlayAndContinue", func() Object { return &ActionPlay{} })
	k.RegisterPrefix("CAkAction", func() Object { return &Action{} })

	k.Register("CAkSound", func() Object { return &Sound{} })
	k.Register("CAkRanSeqCntr", func() Object { return &RanSeqCntr{} })
	k.Register("CAkSwitchCntr", func() Object { return &SwitchCntr{} })
	k.Register("CAkLayerCntr", func() Object { return &LayerCntr{} })

	k.Register("CAkMusicSegment", func() Object { return &MusicSegment{} })
	k.Register("CAkMusicTrack", func() Object { return &MusicTrack{} })
	k.Register("CAkMusicRanSeqCntr", func() Object { return &MusicRanSeqCntr{} })
	k.Register("CAkMusicSwitchCntr", func() Object { return &MusicSwitchCntr{} })

	k.Register("CAkBus", func() Object { return &Bus{} })
	k.Register("CAkAuxBus", func() Object { return &Bus{} })
	k.Register("CAkState", func() Object { return &State{} })
	k.Register("CAkFxCustom", func() Object { return &FxCustom{} })
	return k
}

// Unsupported is a record class without an implementation.
type Unsupported struct {
	Base
}
