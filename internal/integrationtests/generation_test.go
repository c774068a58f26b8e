package integration_tests

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bnkrebuild/internal/app"
	"github.com/specialistvlad/bnkrebuild/internal/bankdump"
)

const sfxBank = `
bank "sfx.bnk" {
  id = 10

  object "CAkEvent" {
    field "sid" "ulID" { value = 1 }
    node "actions" {
      field "tid" "ulActionID" { value = 2 }
    }
  }

  object "CAkActionPlay" {
    field "sid" "ulID" { value = 2 }
    field "tid" "idExt" { value = 500 }
    field "tid" "bankID" { value = 20 }
  }
}
`

const musicBank = `
bank "music.bnk" {
  id      = 20
  version = 135

  object "CAkMusicSwitchCntr" {
    field "sid" "ulID" { value = 500 }
    node "AkMusicTransitionRule" {
      node "AkMusicTransitionObject" {
        field "tid" "segmentID" { value = 530 }
      }
    }
    node "AkDecisionTree" {
      node "Node" {
        field "tid" "audioNodeId" { value = 510 }
      }
    }
  }

  object "CAkMusicRanSeqCntr" {
    field "sid" "ulID" { value = 510 }
    node "pPlayList" {
      node "AkMusicRanSeqPlaylistItem" {
        field "tid" "SegmentID" { value = 0 }
        field "s16" "Loop" { value = 0 }
        node "AkMusicRanSeqPlaylistItem" {
          field "tid" "SegmentID" { value = 520 }
          field "s16" "Loop" { value = 1 }
        }
      }
    }
  }

  object "CAkMusicSegment" {
    field "sid" "ulID" { value = 520 }
    node "Children" {
      field "tid" "ulChildID" { value = 540 }
    }
    field "f64" "fDuration" { value = 4000 }
  }

  object "CAkMusicSegment" {
    field "sid" "ulID" { value = 530 }
    field "f64" "fDuration" { value = 1000 }
  }

  object "CAkMusicTrack" {
    field "sid" "ulID" { value = 540 }
    node "AkBankSourceData" {
      field "u32" "ulPluginID" { value = 262145 }
      node "AkMediaInformation" {
        field "tid" "sourceID" { value = 9001 }
      }
    }
  }
}
`

const musicScript = "CAkEvent 1\n" +
	"  CAkActionPlay 2\n" +
	"    CAkMusicSwitchCntr 500\n" +
	"      group switch\n" +
	"        CAkMusicRanSeqCntr 510\n" +
	"          group playlist loop=0\n" +
	"            CAkMusicSegment 520\n" +
	"              group segment\n" +
	"                CAkMusicTrack 540\n" +
	"                  group layer\n" +
	"                    source 9001 (music.bnk)\n" +
	"transition CAkMusicSegment 530\n"

// cycleBank has two layer containers that contain each other.
const cycleBank = `
bank "loop.bnk" {
  id = 30

  object "CAkEvent" {
    field "sid" "ulID" { value = 1 }
    node "actions" {
      field "tid" "ulActionID" { value = 2 }
    }
  }

  object "CAkActionPlay" {
    field "sid" "ulID" { value = 2 }
    field "tid" "idExt" { value = 3 }
  }

  object "CAkLayerCntr" {
    field "sid" "ulID" { value = 3 }
    node "Children" {
      field "tid" "ulChildID" { value = 4 }
    }
  }

  object "CAkLayerCntr" {
    field "sid" "ulID" { value = 4 }
    node "Children" {
      field "tid" "ulChildID" { value = 3 }
    }
  }
}
`

func TestGeneration_CrossBankMusic(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"sfx.hcl":         sfxBank,
		"music/music.hcl": musicBank,
	}

	// --- Act ---
	result := RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	if diff := cmp.Diff(musicScript, result.Scripts); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
	require.Contains(t, result.LogOutput, "Generation finished.")
	require.Contains(t, result.LogOutput, "roots=1")
}

func TestGeneration_CompressedDumps(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	sfx, err := bankdump.Compress([]byte(sfxBank))
	require.NoError(t, err)
	music, err := bankdump.Compress([]byte(musicBank))
	require.NoError(t, err)
	files := map[string]string{
		"sfx.hcl.zst":   string(sfx),
		"music.hcl.zst": string(music),
		"notes.txt":     "ignored",
	}

	// --- Act ---
	result := RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, musicScript, result.Scripts)
}

func TestGeneration_MissingBankSkipsChild(t *testing.T) {
	t.Parallel()

	// The music bank is not loaded, so the action's target is silently absent.
	result := RunIntegrationTest(t, map[string]string{"sfx.hcl": sfxBank}, app.Config{})

	require.NoError(t, result.Err)
	require.Equal(t, "CAkEvent 1\n  CAkActionPlay 2\n", result.Scripts)
}

func TestGeneration_CycleAbortsRoot(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"root", "subtree"} {
		t.Run(mode, func(t *testing.T) {
			t.Parallel()

			result := RunIntegrationTest(t, map[string]string{"loop.hcl": cycleBank}, app.Config{AbortMode: mode})

			require.Error(t, result.Err)
			require.Contains(t, result.Err.Error(), "1 of 1 roots failed")
			require.Empty(t, result.Scripts)
			require.Contains(t, result.LogOutput, "reference-cycle")
			require.Contains(t, result.LogOutput, "root=30/1")
		})
	}
}

func TestGeneration_StartupPanic(t *testing.T) {
	t.Parallel()

	result := RunIntegrationTest(t, map[string]string{"bad.hcl": `bank "x.bnk" { version = 1 }`}, app.Config{})

	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "application startup panicked")
	require.Contains(t, result.Err.Error(), "Missing bank id")
}
