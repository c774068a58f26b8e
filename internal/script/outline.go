package script

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
)

// Outline renders the rebuilt graph as an indented text tree. It is the
// reference renderer used by the CLI and by tests.
type Outline struct {
	w           io.Writer
	depth       int
	open        int
	transitions Transitions
	err         error
}

// NewOutline writes to w.
func NewOutline(w io.Writer) *Outline {
	return &Outline{w: w}
}

func (o *Outline) Begin(obj bnode.Node, fields *Fields, identity bnode.Node) {
	var sb strings.Builder
	sb.WriteString(obj.Name())
	if identity != nil {
		fmt.Fprintf(&sb, " %d", bnode.ID(identity))
	}
	for _, f := range fields.Items() {
		sb.WriteString(" ")
		sb.WriteString(f.String())
	}
	o.line(sb.String())
	o.depth++
	o.open++
}

func (o *Outline) End() {
	o.depth--
	o.open--
}

func (o *Outline) OpenGroup(mode GroupMode, p Params) {
	o.line(fmt.Sprintf("group %s%s", mode, params(p)))
	o.depth++
}

func (o *Outline) CloseGroup() {
	o.depth--
}

func (o *Outline) Source(src Source, p Params) {
	switch {
	case src.Silent:
		o.line(fmt.Sprintf("silence %sms%s", num(src.Duration), params(p)))
	case src.PluginID != 0:
		o.line(fmt.Sprintf("plugin 0x%08x%s", src.PluginID, params(p)))
	default:
		o.line(fmt.Sprintf("source %d (%s)%s", src.MediaID, src.Bank, params(p)))
	}
}

func (o *Outline) Transitions() *Transitions {
	return &o.transitions
}

// Close writes the transition footer and reports unbalanced entries or the
// first write error.
func (o *Outline) Close() error {
	for _, n := range o.transitions.Nodes() {
		_, sid := bnode.ShortID(n)
		o.line(fmt.Sprintf("transition %s %d", n.Name(), sid))
	}
	if o.err != nil {
		return o.err
	}
	if o.open != 0 {
		return fmt.Errorf("outline: %d entries left open", o.open)
	}
	return nil
}

func (o *Outline) line(text string) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, "%s%s\n", strings.Repeat("  ", max(o.depth, 0)), text)
}

func params(p Params) string {
	var sb strings.Builder
	if p.Volume != 0 {
		fmt.Fprintf(&sb, " vol=%s", num(p.Volume))
	}
	if p.MakeUpGain != 0 {
		fmt.Fprintf(&sb, " gain=%s", num(p.MakeUpGain))
	}
	if p.Pitch != 0 {
		fmt.Fprintf(&sb, " pitch=%s", num(p.Pitch))
	}
	if p.PlaybackSpeed != 0 {
		fmt.Fprintf(&sb, " speed=%s", num(p.PlaybackSpeed))
	}
	if p.Delay != 0 {
		fmt.Fprintf(&sb, " delay=%s", num(p.Delay))
	}
	if p.Loop != nil {
		fmt.Fprintf(&sb, " loop=%s", num(*p.Loop))
	}
	if p.Crossfaded {
		sb.WriteString(" crossfaded")
	}
	return sb.String()
}
