package rebuild

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/fault"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

var errBoom = errors.New("boom")

// leaf renders the objects listed in its "ref" fields and counts builds.
type leaf struct {
	Base
	counts map[uint32]int
	refs   []bnode.Node
}

func (o *leaf) Build(ctx context.Context) error {
	if o.counts != nil {
		o.counts[o.sid]++
	}
	o.refs = o.node.Finds("ref")
	return nil
}

func (o *leaf) Render(ctx context.Context, e script.Emitter) error {
	return o.processList(ctx, e, o.refs)
}

// broken fails to build, counting attempts.
type broken struct {
	Base
	counts map[uint32]int
}

func (o *broken) Build(ctx context.Context) error {
	o.counts[o.sid]++
	return fault.Schema("broken record")
}

// faulty builds fine and fails to render.
type faulty struct {
	Base
}

func (o *faulty) Build(ctx context.Context) error { return nil }

func (o *faulty) Render(ctx context.Context, e script.Emitter) error { return errBoom }

func testKinds(counts map[uint32]int) *Kinds {
	k := DefaultKinds()
	k.Register("Leaf", func() Object { return &leaf{counts: counts} })
	k.Register("Broken", func() Object { return &broken{counts: counts} })
	k.Register("Faulty", func() Object { return &faulty{} })
	return k
}

type denyFilter map[uint32]bool

func (f denyFilter) Active() bool { return len(f) > 0 }

func (f denyFilter) AllowInner(n bnode.Node, sid uint32) bool { return !f[sid] }

func testCtx() context.Context {
	return ctxlog.Discard(context.Background())
}

// logCtx carries a debug logger writing text records to buf.
func logCtx(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

// generate renders the root at key into an outline.
func generate(t *testing.T, b *Builder, key bnode.Key) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	out := script.NewOutline(buf)
	err := b.Generate(testCtx(), key, out)
	if err == nil {
		require.NoError(t, out.Close())
	}
	return buf.String(), err
}
