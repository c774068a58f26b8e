package rebuild

import (
	"context"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// pluginTypeSource is the low nibble of plugin ids that generate audio.
const pluginTypeSource = 0x02

// Source is a parsed bank source: either media inside a bank or a generator
// plugin with its parameters.
type Source struct {
	Node     bnode.Node
	PluginID uint32
	MediaID  uint32
	// Plugin is set for generator plugins, which have no media.
	Plugin bool
	// FX holds the plugin parameters, inline or from the custom effect
	// object. Nil when the effect object is not loaded.
	FX bnode.Node
	// Inline is set when the parameters were stored in the source itself.
	Inline bool
}

// parseSource reads a bank source record. Plugin parameters are inline only
// when an explicit nonzero size is present; otherwise they live in a custom
// effect object with the same id as the source.
func (b *Base) parseSource(ctx context.Context, nbnksrc bnode.Node) (*Source, error) {
	src := &Source{
		Node:     nbnksrc,
		PluginID: bnode.ID(nbnksrc.Find("ulPluginID")),
		MediaID:  bnode.ID(nbnksrc.Find("sourceID")),
	}
	src.Plugin = src.PluginID&0x0F == pluginTypeSource
	if !src.Plugin {
		return src, nil
	}

	if nsize := nbnksrc.Find("uSize"); nsize != nil && nsize.Value() != 0 {
		src.Inline = true
		src.FX = nbnksrc
		return src, nil
	}
	obj, found, err := b.builder.GetOrBuild(ctx, bnode.Key{Bank: b.bank, ID: src.MediaID}, b.sid)
	if err != nil {
		return nil, err
	}
	if found {
		if fx, ok := obj.(*FxCustom); ok {
			src.FX = fx.node
		}
	}
	return src, nil
}

// script converts the parsed source for an emitter.
func (s *Source) script() script.Source {
	out := script.Source{MediaID: s.MediaID}
	if s.Plugin {
		out.PluginID = s.PluginID
	}
	if root := s.Node.Root(); root != nil {
		out.Bank = root.Filename()
	}
	return out
}

// silence is the placeholder emitted for objects without playable sources.
func silence(duration float64) script.Source {
	return script.Source{Silent: true, Duration: duration}
}
