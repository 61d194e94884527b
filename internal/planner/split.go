// Package planner implements the read-planning pipeline for hive
// external tables: predicate splitting, partition selection and local
// pruning, concurrent file listing, bucket-based file pruning, and
// packaging of the planned file set for distributed execution.
package planner

import (
	"github.com/arkilian/hiveconnect/internal/config"
	"github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/internal/expr"
	"github.com/arkilian/hiveconnect/internal/hive"
)

// QueryInfo carries the query-shaped inputs of one read-planning call.
type QueryInfo struct {
	// Filter is the query's filter predicate, a conjunction of
	// sub-expressions; nil when the query has no filter.
	Filter expr.Expression

	// Final marks FINAL reads, which skip prewhere promotion unless the
	// override is set.
	Final bool

	// HasPrewhere is set when an earlier optimizer pass already assigned
	// a prewhere clause; promotion then leaves the filter alone.
	HasPrewhere bool
}

// FilterSplit is the outcome of predicate classification: three disjoint
// conjunct sets plus the cluster-key conditions used for bucket
// resolution. PartitionFilter and WhereFilter together reconstruct the
// original filter before prewhere promotion subtracts the promoted
// conjuncts from WhereFilter.
type FilterSplit struct {
	PartitionFilter []expr.Expression
	WhereFilter     []expr.Expression
	PrewhereFilter  []expr.Expression

	// ClusterKeyConds are the conjuncts referencing only cluster-by
	// input columns, kept for bucket resolution.
	ClusterKeyConds []expr.Expression
}

// SplitOptions controls classification and promotion.
type SplitOptions struct {
	// PartitionPushdown enables the partition-filter classification pass.
	PartitionPushdown bool

	// SupportsPrewhere is whether the engine variant evaluates prewhere
	// at all.
	SupportsPrewhere bool

	// PromoteIfFinal allows promotion on FINAL reads.
	PromoteIfFinal bool

	// Method is the promotion policy.
	Method config.PrewhereMethod
}

// ColumnSelector is the cost-based collaborator the COLUMN_SIZE policy
// delegates to. It receives the candidate conjuncts and per-column
// compressed sizes and returns the subset to promote.
type ColumnSelector interface {
	SelectPrewhere(conjuncts []expr.Expression, columnSizes map[string]uint64) []expr.Expression
}

// SplitFilter classifies the query filter for a table. columnSizes feeds
// the COLUMN_SIZE policy and may be nil, in which case that policy
// silently promotes nothing. The function is pure: it never mutates the
// input expression tree.
func SplitFilter(table *hive.TableMeta, query QueryInfo, opts SplitOptions, columnSizes map[string]uint64, selector ColumnSelector) (*FilterSplit, error) {
	split := &FilterSplit{}
	conjuncts := expr.ExtractConjuncts(query.Filter)

	// Partition-filter classification: a conjunct moves iff every column
	// it references is a partition column. Runs before prewhere promotion
	// so partition filters are never chosen as prewhere.
	for _, c := range conjuncts {
		if opts.PartitionPushdown && referencesOnly(c, table.IsPartitionColumn) {
			split.PartitionFilter = append(split.PartitionFilter, c)
		} else {
			split.WhereFilter = append(split.WhereFilter, c)
		}
	}

	if table.IsBucketTable() {
		isClusterColumn := func(name string) bool {
			return table.ClusterBy.Columns != nil && containsString(table.ClusterBy.Columns, name)
		}
		for _, c := range split.WhereFilter {
			if referencesOnly(c, isClusterColumn) {
				split.ClusterKeyConds = append(split.ClusterKeyConds, c)
			}
		}
	}

	if err := promotePrewhere(split, query, opts, columnSizes, selector); err != nil {
		return nil, err
	}

	// Conjuncts already promoted must not be evaluated twice.
	split.WhereFilter = expr.Subtract(split.WhereFilter, split.PrewhereFilter)

	return split, nil
}

// promotePrewhere applies the early-filter promotion policy in place.
func promotePrewhere(split *FilterSplit, query QueryInfo, opts SplitOptions, columnSizes map[string]uint64, selector ColumnSelector) error {
	if !opts.SupportsPrewhere || len(split.WhereFilter) == 0 || query.HasPrewhere {
		return nil
	}
	if query.Final && !opts.PromoteIfFinal {
		return nil
	}

	switch opts.Method {
	case config.PrewhereAll:
		split.PrewhereFilter = append(split.PrewhereFilter, split.WhereFilter...)
	case config.PrewhereColumnSize:
		// Missing statistics or no selector: skip promotion silently.
		if len(columnSizes) == 0 || selector == nil {
			return nil
		}
		split.PrewhereFilter = selector.SelectPrewhere(split.WhereFilter, columnSizes)
	case config.PrewhereNever:
		// Nothing to do.
	default:
		return errors.NewPlanningError(errors.CodeNotImplemented,
			"unimplemented move to prewhere method "+string(opts.Method))
	}
	return nil
}

// referencesOnly reports whether the conjunct references at least one
// column and every referenced column satisfies pred.
func referencesOnly(c expr.Expression, pred func(string) bool) bool {
	cols := expr.ReferencedColumns(c)
	if len(cols) == 0 {
		return false
	}
	for _, col := range cols {
		if !pred(col) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CheapestConjunctSelector is the reference ColumnSelector: it promotes
// the single conjunct whose referenced columns have the smallest total
// compressed size. Conjuncts touching a column with no recorded size are
// not eligible.
type CheapestConjunctSelector struct{}

// SelectPrewhere implements ColumnSelector.
func (CheapestConjunctSelector) SelectPrewhere(conjuncts []expr.Expression, columnSizes map[string]uint64) []expr.Expression {
	bestIdx := -1
	var bestSize uint64
	for i, c := range conjuncts {
		var total uint64
		eligible := true
		for _, col := range expr.ReferencedColumns(c) {
			size, ok := columnSizes[col]
			if !ok {
				eligible = false
				break
			}
			total += size
		}
		if !eligible {
			continue
		}
		if bestIdx < 0 || total < bestSize {
			bestIdx, bestSize = i, total
		}
	}
	if bestIdx < 0 {
		return nil
	}
	return []expr.Expression{conjuncts[bestIdx]}
}
