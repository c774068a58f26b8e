package filter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/rebuild"
)

var _ rebuild.Filter = (*Policy)(nil)

func TestPolicy_AllowInner(t *testing.T) {
	sound := bnode.NewElem("CAkSound")
	action := bnode.NewElem("CAkActionPlay")

	testCases := []struct {
		name   string
		policy *Policy
		node   bnode.Node
		sid    uint32
		allow  bool
	}{
		{name: "nil policy", policy: nil, node: sound, sid: 1, allow: true},
		{name: "inactive policy", policy: &Policy{}, node: sound, sid: 1, allow: true},
		{name: "skipped class", policy: New([]string{"CAkActionPlay"}, nil, nil), node: action, sid: 1, allow: false},
		{name: "other class", policy: New([]string{"CAkActionPlay"}, nil, nil), node: sound, sid: 1, allow: true},
		{name: "skipped id", policy: New(nil, []uint32{5}, nil), node: sound, sid: 5, allow: false},
		{name: "only ids hit", policy: New(nil, nil, []uint32{5}), node: sound, sid: 5, allow: true},
		{name: "only ids miss", policy: New(nil, nil, []uint32{5}), node: sound, sid: 6, allow: false},
		{name: "skip beats only", policy: New(nil, []uint32{5}, []uint32{5}), node: sound, sid: 5, allow: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allow, tc.policy.AllowInner(tc.node, tc.sid))
		})
	}
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
filter {
  skip_classes = ["CAkActionPlay"]
  skip_ids     = [123]
}
`), "filter.hcl")
	require.NoError(t, err)
	assert.True(t, p.Active())
	assert.False(t, p.AllowInner(bnode.NewElem("CAkSound"), 123))

	p, err = Parse([]byte("filter {\n  active = false\n  skip_ids = [1]\n}\n"), "filter.hcl")
	require.NoError(t, err)
	assert.False(t, p.Active())
	assert.True(t, p.AllowInner(nil, 1))

	p, err = Parse([]byte(""), "empty.hcl")
	require.NoError(t, err)
	assert.False(t, p.Active())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`filter { skip_ids = ["x"] }`), "bad.hcl")
	assert.ErrorContains(t, err, "failed to decode filter file bad.hcl")

	_, err = Parse([]byte(`filter {`), "bad.hcl")
	assert.ErrorContains(t, err, "failed to parse filter file bad.hcl")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.hcl")
	require.NoError(t, os.WriteFile(path, []byte("filter {\n  only_ids = [7]\n}\n"), 0o644))

	p, err := Load(ctxlog.Discard(context.Background()), path)
	require.NoError(t, err)
	assert.True(t, p.AllowInner(nil, 7))
	assert.False(t, p.AllowInner(nil, 8))
}
