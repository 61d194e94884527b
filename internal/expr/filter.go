package expr

import (
	"fmt"
	"strings"
)

// metastoreOperators maps comparison function names to the operator
// tokens the Hive metastore filter grammar understands.
var metastoreOperators = map[string]string{
	FuncEquals:          "=",
	FuncNotEquals:       "<>",
	FuncLess:            "<",
	FuncGreater:         ">",
	FuncLessOrEquals:    "<=",
	FuncGreaterOrEquals: ">=",
}

// MetastoreFilter renders a conjunct list as a Hive metastore partition
// filter string. The filter is advisory: conjuncts that cannot be
// expressed in the metastore grammar are skipped rather than failing,
// since the local pruner re-checks every returned partition anyway.
// Returns "" when nothing could be rendered.
func MetastoreFilter(conjuncts []Expression) string {
	var parts []string
	for _, c := range conjuncts {
		if s, ok := renderMetastoreExpr(c); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " and ")
}

func renderMetastoreExpr(node Expression) (string, bool) {
	call, ok := node.(*FunctionCall)
	if !ok {
		return "", false
	}

	switch call.Name {
	case FuncAnd, FuncOr:
		sep := " and "
		if call.Name == FuncOr {
			sep = " or "
		}
		parts := make([]string, 0, len(call.Args))
		for _, arg := range call.Args {
			s, ok := renderMetastoreExpr(arg)
			if !ok {
				// An OR with an unsupported branch cannot be weakened
				// by dropping the branch; give up on the whole node.
				if call.Name == FuncOr {
					return "", false
				}
				continue
			}
			parts = append(parts, s)
		}
		if len(parts) == 0 {
			return "", false
		}
		if len(parts) == 1 {
			return parts[0], true
		}
		return "(" + strings.Join(parts, sep) + ")", true
	}

	op, ok := metastoreOperators[call.Name]
	if !ok || len(call.Args) != 2 {
		return "", false
	}
	col, ok := call.Args[0].(*ColumnRef)
	if !ok {
		return "", false
	}
	lit, ok := call.Args[1].(*Literal)
	if !ok {
		return "", false
	}
	val, ok := renderMetastoreLiteral(lit)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s %s %s", col.Name, op, val), true
}

// renderMetastoreLiteral renders a literal in metastore filter syntax.
// The grammar only accepts strings (double-quoted) and integers.
func renderMetastoreLiteral(lit *Literal) (string, bool) {
	switch v := lit.Value.(type) {
	case string:
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`, true
	case int64:
		return fmt.Sprintf("%d", v), true
	case int:
		return fmt.Sprintf("%d", v), true
	default:
		return "", false
	}
}
