// Package bankdump loads parsed SoundBanks from HCL dump files.
//
// A dump holds one or more bank blocks. Object records, sub-records and
// fields are nested blocks, so their document order is kept:
//
//	bank "music.bnk" {
//	  id      = 1001
//	  version = 135
//	  strings = ["music"]
//
//	  object "CAkMusicTrack" {
//	    field "sid" "ulID" { value = 42 }
//	    node "NodeInitialParams" {
//	      field "u8" "pID" {
//	        value    = 0
//	        valuefmt = "0x00 [Volume]"
//	      }
//	    }
//	  }
//	}
//
// Files ending in .zst are zstd-compressed dumps.
package bankdump
