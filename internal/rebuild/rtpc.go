package rebuild

import (
	"strconv"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/props"
)

var volumeParams = map[string]bool{
	props.KeyVolume:          true,
	props.KeyMakeUpGain:      true,
	props.KeyBusVolume:       true,
	props.KeyOutputBusVolume: true,
}

// RTPC is one real-time parameter curve: the game parameter driving it, the
// property it changes and the output range of its graph.
type RTPC struct {
	ID       bnode.Node
	Param    string
	Min, Max float64
	Points   int
}

// IsVolume reports whether the curve drives a volume property.
func (r RTPC) IsVolume() bool {
	return volumeParams[r.Param]
}

func parseRTPCs(n bnode.Node) []RTPC {
	var out []RTPC
	for _, nrtpc := range n.Finds("RTPC") {
		nid := nrtpc.Find("RTPCID")
		nparam := nrtpc.Find("ParamID")
		if nid == nil || nparam == nil {
			continue
		}
		r := RTPC{ID: nid, Param: props.Canonical(nparam.Attr("valuefmt"))}
		if r.Param == "" {
			r.Param = strconv.FormatFloat(nparam.Value(), 'f', -1, 64)
		}
		for i, npoint := range nrtpc.Finds("AkRTPCGraphPoint") {
			to := valueOf(npoint.Find("To"))
			if i == 0 || to < r.Min {
				r.Min = to
			}
			if i == 0 || to > r.Max {
				r.Max = to
			}
			r.Points++
		}
		out = append(out, r)
	}
	return out
}
