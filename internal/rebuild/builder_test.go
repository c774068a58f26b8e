package rebuild

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/fault"
	tu "github.com/specialistvlad/bnkrebuild/internal/testutil"
)

func TestGetOrBuild_SameInstanceBuiltOnce(t *testing.T) {
	counts := map[uint32]int{}
	idx := tu.Index(1, tu.Object("Leaf", 42))
	b := New(idx, Options{Kinds: testKinds(counts)})
	key := bnode.Key{Bank: 1, ID: 42}

	first, found, err := b.GetOrBuild(testCtx(), key, 0)
	require.NoError(t, err)
	require.True(t, found)
	second, found, err := b.GetOrBuild(testCtx(), key, 7)
	require.NoError(t, err)
	require.True(t, found)

	assert.Same(t, first, second)
	assert.Equal(t, 1, counts[42])
	assert.Equal(t, 1, b.Built())
}

func TestGetOrBuild_NotFoundIsNotAnError(t *testing.T) {
	b := New(tu.Index(1), Options{})

	obj, found, err := b.GetOrBuild(testCtx(), bnode.Key{Bank: 1, ID: 99}, 0)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, obj)

	_, found, err = b.GetOrBuild(testCtx(), bnode.Key{Bank: 2, ID: 99}, 0)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestGetOrBuild_FailureIsCached(t *testing.T) {
	counts := map[uint32]int{}
	b := New(tu.Index(1, tu.Object("Broken", 5)), Options{Kinds: testKinds(counts)})
	key := bnode.Key{Bank: 1, ID: 5}

	_, found, err1 := b.GetOrBuild(testCtx(), key, 0)
	require.Error(t, err1)
	assert.True(t, found)
	_, _, err2 := b.GetOrBuild(testCtx(), key, 0)
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, counts[5])

	var f *fault.Error
	require.True(t, errors.As(err1, &f))
	assert.Equal(t, fault.KindSchema, f.Kind)
	assert.Equal(t, "Broken", f.Class)
	assert.Equal(t, uint32(5), f.ObjectID)
}

func TestGetOrBuild_UnsupportedClass(t *testing.T) {
	b := New(tu.Index(1, tu.Object("CAkDialogueEvent", 8)), Options{})

	_, _, err := b.GetOrBuild(testCtx(), bnode.Key{Bank: 1, ID: 8}, 0)
	assert.ErrorIs(t, err, fault.ErrSchema)
	assert.ErrorContains(t, err, "build not implemented for CAkDialogueEvent")
}

func TestGenerate_RenderCycle(t *testing.T) {
	for _, length := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("length %d", length), func(t *testing.T) {
			var objects []*bnode.Elem
			for i := 1; i <= length; i++ {
				next := uint32(i%length + 1)
				objects = append(objects, tu.Object("Leaf", uint32(i), tu.Ref("ref", next)))
			}
			b := New(tu.Index(1, objects...), Options{Kinds: testKinds(nil)})

			_, err := generate(t, b, bnode.Key{Bank: 1, ID: 1})
			require.Error(t, err)
			assert.True(t, fault.IsCycle(err))
			assert.ErrorIs(t, err, fault.ErrGeneration)
		})
	}
}

func TestGetOrBuild_BuildCycle(t *testing.T) {
	track := func(sid, state uint32) *bnode.Elem {
		return tu.Object("CAkMusicTrack", sid, tu.Node("NodeBaseParams", tu.Node("StateChunk",
			tu.Node("AkStateGroupChunk",
				tu.Ref("ulStateGroupID", 7),
				tu.Node("AkState", tu.Ref("ulStateID", 3), tu.Ref("ulStateInstanceID", state)),
			),
		)))
	}
	b := New(tu.Index(1, track(1, 2), track(2, 1)), Options{})

	_, _, err := b.GetOrBuild(testCtx(), bnode.Key{Bank: 1, ID: 1}, 0)
	require.Error(t, err)
	assert.True(t, fault.IsCycle(err))

	_, _, again := b.GetOrBuild(testCtx(), bnode.Key{Bank: 1, ID: 2}, 0)
	assert.True(t, fault.IsCycle(again), "the inner object failed with the same cycle")
}

func TestGenerate_SkipsEmptyBranches(t *testing.T) {
	counts := map[uint32]int{}
	idx := tu.Index(1,
		tu.Object("CAkSwitchCntr", 10, tu.Node("CAkSwitchPackage",
			tu.Ref("NodeID", 0), tu.Ref("NodeID", 42), tu.Ref("NodeID", 0),
		)),
		tu.Object("Leaf", 42),
	)
	b := New(idx, Options{Kinds: testKinds(counts)})

	out, err := generate(t, b, bnode.Key{Bank: 1, ID: 10})
	require.NoError(t, err)
	assert.Equal(t, "CAkSwitchCntr 10\n  group switch\n    Leaf 42\n", out)
	assert.Equal(t, map[uint32]int{42: 1}, counts)
}

func TestGenerate_FilterSkipsRenderNotBuild(t *testing.T) {
	idx := tu.Index(1,
		tu.Object("CAkLayerCntr", 10, tu.Node("Children", tu.Ref("ulChildID", 11), tu.Ref("ulChildID", 12))),
		tu.Object("Leaf", 11),
		tu.Object("Leaf", 12),
	)
	b := New(idx, Options{Kinds: testKinds(nil), Filter: denyFilter{11: true}})

	out, err := generate(t, b, bnode.Key{Bank: 1, ID: 10})
	require.NoError(t, err)
	assert.Equal(t, "CAkLayerCntr 10\n  group layer\n    Leaf 12\n", out)
	assert.Equal(t, 3, b.Built())
}

func TestGenerate_CrossBankAction(t *testing.T) {
	idx, err := bnode.NewIndex(
		bnode.NewBank(1, "1.bnk", 135, nil,
			tu.Object("CAkEvent", 1, tu.Ref("ulActionID", 2)),
			tu.Object("CAkActionPlay", 2, tu.Ref("idExt", 30), tu.Field("u32", "bankID", 2)),
		),
		bnode.NewBank(2, "2.bnk", 135, nil, tu.Object("Leaf", 30)),
	)
	require.NoError(t, err)
	b := New(idx, Options{Kinds: testKinds(nil)})

	out, err := generate(t, b, bnode.Key{Bank: 1, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "CAkEvent 1\n  CAkActionPlay 2\n    Leaf 30\n", out)
}

func TestGenerate_AbortModes(t *testing.T) {
	objects := func() []*bnode.Elem {
		return []*bnode.Elem{
			tu.Object("CAkLayerCntr", 10, tu.Node("Children",
				tu.Ref("ulChildID", 11), tu.Ref("ulChildID", 12), tu.Ref("ulChildID", 13),
			)),
			tu.Object("CAkDialogueEvent", 11),
			tu.Object("Faulty", 12),
			tu.Object("Leaf", 13),
		}
	}

	t.Run("root", func(t *testing.T) {
		b := New(tu.Index(1, objects()...), Options{Kinds: testKinds(nil)})
		_, err := generate(t, b, bnode.Key{Bank: 1, ID: 10})
		require.Error(t, err)
		assert.ErrorIs(t, err, fault.ErrSchema)
		assert.False(t, fault.IsCycle(err))
	})

	t.Run("subtree", func(t *testing.T) {
		b := New(tu.Index(1, objects()...), Options{Kinds: testKinds(nil), AbortMode: AbortSubtree})
		out, err := generate(t, b, bnode.Key{Bank: 1, ID: 10})
		require.NoError(t, err)
		assert.Equal(t, "CAkLayerCntr 10\n  group layer\n    Faulty 12\n    Leaf 13\n", out)
		assert.Equal(t, 2, b.Dropped())
	})

	t.Run("subtree keeps cycles fatal", func(t *testing.T) {
		idx := tu.Index(1, tu.Object("Leaf", 1, tu.Ref("ref", 2)), tu.Object("Leaf", 2, tu.Ref("ref", 1)))
		b := New(idx, Options{Kinds: testKinds(nil), AbortMode: AbortSubtree})
		_, err := generate(t, b, bnode.Key{Bank: 1, ID: 1})
		assert.True(t, fault.IsCycle(err))
	})
}

func TestGenerate_FailureNamesObjectAndKeepsCause(t *testing.T) {
	idx := tu.Index(1,
		tu.Object("CAkLayerCntr", 10, tu.Node("Children", tu.Ref("ulChildID", 12))),
		tu.Object("Faulty", 12),
	)
	b := New(idx, Options{Kinds: testKinds(nil)})

	_, err := generate(t, b, bnode.Key{Bank: 1, ID: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var f *fault.Error
	require.True(t, errors.As(err, &f))
	assert.Equal(t, fault.KindGeneration, f.Kind)
	assert.Equal(t, uint32(10), f.ObjectID)
	assert.Contains(t, err.Error(), "error processing script for node 12")
}

func TestGenerate_MissingRoot(t *testing.T) {
	b := New(tu.Index(1), Options{})
	_, err := generate(t, b, bnode.Key{Bank: 1, ID: 3})
	assert.ErrorContains(t, err, "root object 1/3 not found")
}

func TestKinds_Dispatch(t *testing.T) {
	k := DefaultKinds()
	assert.IsType(t, &ActionPlay{}, k.New("CAkActionPlayAndContinue"))
	assert.IsType(t, &Action{}, k.New("CAkActionSetState"))
	assert.IsType(t, &Bus{}, k.New("CAkAuxBus"))
	assert.IsType(t, &Unsupported{}, k.New("CAkDialogueEvent"))
	assert.True(t, k.Has("CAkActionStop"))
	assert.False(t, k.Has("CAkAttenuation"))
}
