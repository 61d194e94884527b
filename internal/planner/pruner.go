package planner

import (
	"github.com/arkilian/hiveconnect/internal/expr"
	"github.com/arkilian/hiveconnect/internal/hive"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// tri is a three-valued predicate outcome. Unknown means the pruner
// cannot decide from partition values alone and must keep the partition.
type tri int

const (
	triFalse tri = iota
	triTrue
	triUnknown
)

// partitionPruner evaluates the partition-eligible conjuncts of a query
// filter against a partition's key values. It is strictly conservative:
// a partition is pruned only when some conjunct provably evaluates to
// false for every row the partition can contain.
type partitionPruner struct {
	keys      types.TableSchema
	conjuncts []expr.Expression
}

// newPartitionPruner picks out the conjuncts of filter that reference
// only partition-key columns; anything else is outside the pruner's
// reach and ignored. Returns nil when no conjunct is eligible, meaning
// nothing can ever be pruned.
func newPartitionPruner(keys types.TableSchema, filter expr.Expression, isPartitionColumn func(string) bool) *partitionPruner {
	var eligible []expr.Expression
	for _, c := range expr.ExtractConjuncts(filter) {
		if referencesOnly(c, isPartitionColumn) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	return &partitionPruner{keys: keys, conjuncts: eligible}
}

// CanBePruned reports whether the partition provably matches no rows.
func (p *partitionPruner) CanBePruned(partition *hive.Partition) bool {
	row := partition.ValueMap(p.keys)
	for _, c := range p.conjuncts {
		if evalPredicate(c, row) == triFalse {
			return true
		}
	}
	return false
}

// evalPredicate evaluates a boolean expression against a single row of
// partition-key values. Unsupported shapes and null values yield
// triUnknown.
func evalPredicate(e expr.Expression, row map[string]interface{}) tri {
	call, ok := e.(*expr.FunctionCall)
	if !ok {
		return triUnknown
	}
	switch call.Name {
	case expr.FuncAnd:
		result := triTrue
		for _, arg := range call.Args {
			switch evalPredicate(arg, row) {
			case triFalse:
				return triFalse
			case triUnknown:
				result = triUnknown
			}
		}
		return result
	case expr.FuncOr:
		result := triFalse
		for _, arg := range call.Args {
			switch evalPredicate(arg, row) {
			case triTrue:
				return triTrue
			case triUnknown:
				result = triUnknown
			}
		}
		return result
	case expr.FuncNot:
		if len(call.Args) != 1 {
			return triUnknown
		}
		switch evalPredicate(call.Args[0], row) {
		case triTrue:
			return triFalse
		case triFalse:
			return triTrue
		}
		return triUnknown
	case expr.FuncEquals, expr.FuncNotEquals, expr.FuncLess, expr.FuncGreater,
		expr.FuncLessOrEquals, expr.FuncGreaterOrEquals:
		return evalComparison(call, row)
	case expr.FuncIn:
		return evalIn(call, row)
	}
	return triUnknown
}

func evalComparison(call *expr.FunctionCall, row map[string]interface{}) tri {
	if len(call.Args) != 2 {
		return triUnknown
	}
	left, ok := operandValue(call.Args[0], row)
	if !ok {
		return triUnknown
	}
	right, ok := operandValue(call.Args[1], row)
	if !ok {
		return triUnknown
	}
	cmp, ok := compareValues(left, right)
	if !ok {
		return triUnknown
	}
	var match bool
	switch call.Name {
	case expr.FuncEquals:
		match = cmp == 0
	case expr.FuncNotEquals:
		match = cmp != 0
	case expr.FuncLess:
		match = cmp < 0
	case expr.FuncGreater:
		match = cmp > 0
	case expr.FuncLessOrEquals:
		match = cmp <= 0
	case expr.FuncGreaterOrEquals:
		match = cmp >= 0
	}
	if match {
		return triTrue
	}
	return triFalse
}

// evalIn handles in(col, v1, v2, ...): true when some candidate equals
// the column value, false only when every candidate is comparable and
// distinct from it.
func evalIn(call *expr.FunctionCall, row map[string]interface{}) tri {
	if len(call.Args) < 2 {
		return triUnknown
	}
	target, ok := operandValue(call.Args[0], row)
	if !ok {
		return triUnknown
	}
	result := triFalse
	for _, arg := range call.Args[1:] {
		candidate, ok := operandValue(arg, row)
		if !ok {
			result = triUnknown
			continue
		}
		cmp, ok := compareValues(target, candidate)
		if !ok {
			result = triUnknown
			continue
		}
		if cmp == 0 {
			return triTrue
		}
	}
	return result
}

// operandValue resolves a comparison operand to a concrete non-null
// value. Columns absent from the row and null partition values cannot be
// decided.
func operandValue(e expr.Expression, row map[string]interface{}) (interface{}, bool) {
	switch v := e.(type) {
	case *expr.Literal:
		if v.Value == nil {
			return nil, false
		}
		return v.Value, true
	case *expr.ColumnRef:
		val, ok := row[v.Name]
		if !ok || val == nil {
			return nil, false
		}
		return val, true
	}
	return nil, false
}

// compareValues orders two scalar values of compatible types. Integers
// and floats compare numerically with each other; mixed other types are
// incomparable.
func compareValues(a, b interface{}) (int, bool) {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
