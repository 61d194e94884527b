package hive

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"

	"github.com/spaolacci/murmur3"

	"github.com/arkilian/hiveconnect/internal/expr"
)

// Hash function names usable in cluster-by expressions.
const (
	FuncJavaHash      = "javaHash"
	FuncMurmur3Hash32 = "murmur3Hash32"
	FuncHiveModulo    = "hiveModulo"
)

// ClusterKey describes a bucket table's cluster-by key: a deterministic
// hash of one or more input columns reduced modulo the bucket count. The
// hashing protocol must match the external writer's, so the hash function
// is part of the declaration.
type ClusterKey struct {
	// Expr is the full cluster-by expression,
	// hiveModulo(<hash>(col...), bucketCount).
	Expr expr.Expression

	// Columns are the input columns the expression requires, in
	// declaration order.
	Columns []string

	// BucketCount is the declared number of buckets.
	BucketCount uint64
}

// NewClusterKey builds a cluster-by key over the given columns with the
// named hash function. The supported hash functions are javaHash (Hive's
// own convention) and murmur3Hash32.
func NewClusterKey(columns []string, bucketCount uint64, hashFunc string) (*ClusterKey, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("hive: cluster key requires at least one column")
	}
	if bucketCount == 0 {
		return nil, fmt.Errorf("hive: cluster key requires a non-zero bucket count")
	}
	switch hashFunc {
	case FuncJavaHash, FuncMurmur3Hash32:
	default:
		return nil, fmt.Errorf("hive: unsupported cluster key hash function %q", hashFunc)
	}

	args := make([]expr.Expression, len(columns))
	for i, c := range columns {
		args[i] = expr.Col(c)
	}
	e := expr.Call(FuncHiveModulo, expr.Call(hashFunc, args...), expr.Lit(int64(bucketCount)))

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &ClusterKey{Expr: e, Columns: cols, BucketCount: bucketCount}, nil
}

// ResolveBucket derives the single bucket index a conjunction of
// cluster-key conditions pins the read to. It walks AND nodes only,
// binding each equals(column, literal) leaf whose column is a cluster-by
// input (first binding wins). If any input column remains unbound the
// second return is false: bucket pruning is opportunistic, never an
// error.
func (k *ClusterKey) ResolveBucket(conds expr.Expression) (uint64, bool) {
	if conds == nil {
		return 0, false
	}

	bindings := make(map[string]interface{})
	var bind func(expr.Expression)
	bind = func(node expr.Expression) {
		call, ok := node.(*expr.FunctionCall)
		if !ok {
			return
		}
		switch call.Name {
		case expr.FuncAnd:
			for _, arg := range call.Args {
				bind(arg)
			}
		case expr.FuncEquals:
			if len(call.Args) != 2 {
				return
			}
			col, lit, ok := equalityOperands(call.Args[0], call.Args[1])
			if !ok {
				return
			}
			if !k.requiresColumn(col) {
				return
			}
			if _, bound := bindings[col]; !bound {
				bindings[col] = lit
			}
		}
	}
	bind(conds)

	for _, col := range k.Columns {
		if _, bound := bindings[col]; !bound {
			return 0, false
		}
	}

	v, err := evalClusterExpr(k.Expr, bindings)
	if err != nil {
		return 0, false
	}
	return uint64(v), true
}

func (k *ClusterKey) requiresColumn(name string) bool {
	for _, c := range k.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// equalityOperands extracts the column name and literal value from the
// operands of an equals call, accepting either order.
func equalityOperands(a, b expr.Expression) (string, interface{}, bool) {
	if col, ok := a.(*expr.ColumnRef); ok {
		if lit, ok := b.(*expr.Literal); ok {
			return col.Name, lit.Value, true
		}
	}
	if col, ok := b.(*expr.ColumnRef); ok {
		if lit, ok := a.(*expr.Literal); ok {
			return col.Name, lit.Value, true
		}
	}
	return "", nil, false
}

// evalClusterExpr evaluates a cluster-by expression over a single row of
// bound column values.
func evalClusterExpr(node expr.Expression, row map[string]interface{}) (int64, error) {
	switch e := node.(type) {
	case *expr.Literal:
		switch v := e.Value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		default:
			return 0, fmt.Errorf("hive: non-integer literal %v in cluster key", e.Value)
		}
	case *expr.FunctionCall:
		switch e.Name {
		case FuncJavaHash:
			values, err := argValues(e.Args, row)
			if err != nil {
				return 0, err
			}
			return javaHash(values), nil
		case FuncMurmur3Hash32:
			values, err := argValues(e.Args, row)
			if err != nil {
				return 0, err
			}
			return murmur3Hash32(values), nil
		case FuncHiveModulo:
			if len(e.Args) != 2 {
				return 0, fmt.Errorf("hive: hiveModulo takes 2 arguments")
			}
			x, err := evalClusterExpr(e.Args[0], row)
			if err != nil {
				return 0, err
			}
			n, err := evalClusterExpr(e.Args[1], row)
			if err != nil {
				return 0, err
			}
			if n <= 0 {
				return 0, fmt.Errorf("hive: hiveModulo by %d", n)
			}
			return ((x % n) + n) % n, nil
		default:
			return 0, fmt.Errorf("hive: unknown cluster key function %q", e.Name)
		}
	default:
		return 0, fmt.Errorf("hive: cannot evaluate %T in cluster key", node)
	}
}

func argValues(args []expr.Expression, row map[string]interface{}) ([]interface{}, error) {
	values := make([]interface{}, len(args))
	for i, arg := range args {
		col, ok := arg.(*expr.ColumnRef)
		if !ok {
			return nil, fmt.Errorf("hive: hash argument must be a column reference, got %T", arg)
		}
		v, bound := row[col.Name]
		if !bound {
			return nil, fmt.Errorf("hive: unbound column %s", col.Name)
		}
		values[i] = v
	}
	return values, nil
}

// javaHash reproduces Hive's bucketing hash: per-value Java hashCode
// semantics, multi-column values combined as h = 31*h + hash(v).
func javaHash(values []interface{}) int64 {
	var h int32
	for _, v := range values {
		h = 31*h + javaHashValue(v)
	}
	return int64(h)
}

func javaHashValue(v interface{}) int32 {
	switch x := v.(type) {
	case string:
		var h int32
		for _, u := range utf16.Encode([]rune(x)) {
			h = 31*h + int32(u)
		}
		return h
	case int64:
		return int32(x) ^ int32(uint64(x)>>32)
	case int:
		return javaHashValue(int64(x))
	case bool:
		if x {
			return 1231
		}
		return 1237
	case float64:
		bits := math.Float64bits(x)
		return int32(bits) ^ int32(bits>>32)
	case nil:
		return 0
	default:
		return 0
	}
}

// murmur3Hash32 hashes the bound values with 32-bit murmur3, the
// convention used by Spark-written bucket tables in our deployments.
// Strings hash their raw bytes, integers their little-endian encoding.
func murmur3Hash32(values []interface{}) int64 {
	h := murmur3.New32()
	for _, v := range values {
		switch x := v.(type) {
		case string:
			h.Write([]byte(x))
		case int64:
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(x))
			h.Write(buf[:])
		case int:
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(x)))
			h.Write(buf[:])
		case bool:
			if x {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		case float64:
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			h.Write(buf[:])
		}
	}
	return int64(int32(h.Sum32()))
}

// FileHashIndex extracts a bucket index from a file path. Two naming
// conventions are recognized, tried strictly in order:
//
//  1. The digit run immediately after the last '_' that is followed by a
//     digit, e.g. "part-00000-...-_00003.c000" -> 3.
//  2. The digit run immediately after the last '/' that is followed by a
//     digit, e.g. ".../000003_0" when rule 1 finds nothing.
//
// A path matching neither convention has no derivable index and the
// second return is false.
func FileHashIndex(path string) (uint64, bool) {
	if v, ok := digitRunAfterLast(path, '_'); ok {
		return v, true
	}
	if v, ok := digitRunAfterLast(path, '/'); ok {
		return v, true
	}
	return 0, false
}

// digitRunAfterLast scans backwards for the last occurrence of sep that
// is immediately followed by a decimal digit and parses the maximal digit
// run starting there.
func digitRunAfterLast(s string, sep byte) (uint64, bool) {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] != sep || !isDigit(s[i+1]) {
			continue
		}
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		v, err := strconv.ParseUint(s[i+1:j], 10, 64)
		if err != nil {
			// Overflowing digit run; keep scanning earlier occurrences.
			continue
		}
		return v, true
	}
	return 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// PruneByBucket removes files whose path-derived hash index is known and
// disagrees with the required bucket. Files with no derivable index are
// always retained: pruning must never drop data that might match.
func PruneByBucket(files []*File, requiredBucket uint64) []*File {
	pruned := files[:0]
	for _, f := range files {
		if index, known := f.HashIndex(); known && index != requiredBucket {
			continue
		}
		pruned = append(pruned, f)
	}
	return pruned
}
