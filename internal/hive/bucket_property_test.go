package hive

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_UnknownIndexNeverPruned validates the conservatism rule:
// a file whose path yields no derivable hash index survives bucket
// pruning for every required bucket value.
func TestProperty_UnknownIndexNeverPruned(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("files without a hash index are always retained", prop.ForAll(
		func(name string, bucket uint64) bool {
			// Strip separators and digits so the path has no derivable index.
			cleaned := strings.Map(func(r rune) rune {
				if r == '_' || r == '/' || (r >= '0' && r <= '9') {
					return -1
				}
				return r
			}, name)

			if _, known := FileHashIndex(cleaned); known {
				return false
			}
			files := []*File{NewFile(cleaned, 1, 0, &Partition{})}
			return len(PruneByBucket(files, bucket)) == 1
		},
		gen.AlphaString(),
		gen.UInt64Range(0, 1<<20),
	))

	properties.Property("pruning only ever removes files with a known mismatching index", prop.ForAll(
		func(indices []uint8, bucket uint64) bool {
			partition := &Partition{}
			files := make([]*File, len(indices))
			for i, idx := range indices {
				files[i] = NewFile(makeBucketPath(uint64(idx)), 1, 0, partition)
			}
			survivors := PruneByBucket(files, bucket)
			for _, f := range survivors {
				index, known := f.HashIndex()
				if known && index != bucket {
					return false
				}
			}
			// Every file with a matching index must survive.
			matching := 0
			for _, idx := range indices {
				if uint64(idx) == bucket {
					matching++
				}
			}
			surviving := 0
			for _, f := range survivors {
				if index, known := f.HashIndex(); known && index == bucket {
					surviving++
				}
			}
			return matching == surviving
		},
		gen.SliceOf(gen.UInt8()),
		gen.UInt64Range(0, 255),
	))

	properties.TestingRun(t)
}

func makeBucketPath(index uint64) string {
	return fmt.Sprintf("/warehouse/events/dt=2024-02-29/part-0-feedface_%05d.parquet", index)
}
