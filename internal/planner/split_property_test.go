package planner

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/hiveconnect/internal/expr"
)

// TestProperty_SplitPreservesConjunction validates that classification
// never invents or loses conjuncts: before prewhere promotion, the
// partition and where sets together are exactly the original
// conjunction.
func TestProperty_SplitPreservesConjunction(t *testing.T) {
	table := testTable(t, nil)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Column pool mixing partition keys and data columns.
	columns := []string{"dt", "region", "user_id", "amount", "note"}

	properties.Property("partition and where sets partition the original conjuncts", prop.ForAll(
		func(picks []int) bool {
			conjuncts := make([]expr.Expression, len(picks))
			for i, pick := range picks {
				conjuncts[i] = expr.Equals(columns[pick], int64(i))
			}
			filter := expr.And(conjuncts...)

			split, err := SplitFilter(table, QueryInfo{Filter: filter}, SplitOptions{PartitionPushdown: true}, nil, nil)
			if err != nil {
				return false
			}
			original := exprStrings(expr.ExtractConjuncts(filter))
			recombined := append(exprStrings(split.PartitionFilter), exprStrings(split.WhereFilter)...)
			sort.Strings(original)
			sort.Strings(recombined)
			if len(original) != len(recombined) {
				return false
			}
			for i := range original {
				if original[i] != recombined[i] {
					return false
				}
			}
			// Every partition-side conjunct references partition columns only.
			for _, c := range split.PartitionFilter {
				for _, col := range expr.ReferencedColumns(c) {
					if !table.IsPartitionColumn(col) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(columns)-1)),
	))

	properties.TestingRun(t)
}
