// Package expr defines the expression tree the read planner operates on.
// Filters arrive as a conjunction of sub-expressions over three node
// kinds: literals, column references and function calls. Comparison and
// boolean operators are ordinary function calls ("equals", "and", ...),
// so classification and binding walks need no dynamic down-casting beyond
// the three variants.
package expr

import (
	"fmt"
	"sort"
	"strings"
)

// Function names used for boolean structure and comparisons.
const (
	FuncAnd             = "and"
	FuncOr              = "or"
	FuncNot             = "not"
	FuncEquals          = "equals"
	FuncNotEquals       = "notEquals"
	FuncLess            = "less"
	FuncGreater         = "greater"
	FuncLessOrEquals    = "lessOrEquals"
	FuncGreaterOrEquals = "greaterOrEquals"
	FuncIn              = "in"
)

// Expression is a node in the filter expression tree. Implementations are
// immutable once constructed.
type Expression interface {
	expressionNode()
	String() string
}

// Literal is a constant value: string, int64, float64, bool or nil.
type Literal struct {
	Value interface{}
}

func (l *Literal) expressionNode() {}

// String returns the SQL representation of the literal.
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		escaped := strings.ReplaceAll(v, "'", "''")
		return fmt.Sprintf("'%s'", escaped)
	case nil:
		return "NULL"
	case int64:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ColumnRef is a reference to a table column by name.
type ColumnRef struct {
	Name string
}

func (c *ColumnRef) expressionNode() {}

// String returns the column name.
func (c *ColumnRef) String() string { return c.Name }

// FunctionCall is a named function applied to argument expressions.
// Boolean connectives and comparisons use the Func* names above;
// cluster-key hashing expressions use hash function names.
type FunctionCall struct {
	Name string
	Args []Expression
}

func (f *FunctionCall) expressionNode() {}

// String returns the call in function-notation form.
func (f *FunctionCall) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

// Convenience constructors.

func Lit(v interface{}) *Literal { return &Literal{Value: v} }

func Col(name string) *ColumnRef { return &ColumnRef{Name: name} }

func Call(name string, args ...Expression) *FunctionCall {
	return &FunctionCall{Name: name, Args: args}
}

// Equals builds equals(column, literal).
func Equals(column string, value interface{}) *FunctionCall {
	return Call(FuncEquals, Col(column), Lit(value))
}

// And combines expressions with the "and" connective. A single argument
// is returned unchanged; no arguments yield nil.
func And(args ...Expression) Expression {
	return CombineConjuncts(args)
}

// Walk calls fn for node and, while fn returns true, recurses into
// function-call arguments in order.
func Walk(node Expression, fn func(Expression) bool) {
	if node == nil || !fn(node) {
		return
	}
	if call, ok := node.(*FunctionCall); ok {
		for _, arg := range call.Args {
			Walk(arg, fn)
		}
	}
}

// ReferencedColumns returns the sorted set of column names referenced
// anywhere under node.
func ReferencedColumns(node Expression) []string {
	set := make(map[string]struct{})
	Walk(node, func(e Expression) bool {
		if col, ok := e.(*ColumnRef); ok {
			set[col.Name] = struct{}{}
		}
		return true
	})
	cols := make([]string, 0, len(set))
	for c := range set {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Equal reports whether two expressions are structurally identical.
// Rendering is deterministic, so string comparison is sufficient.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
