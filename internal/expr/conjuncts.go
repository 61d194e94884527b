package expr

// ExtractConjuncts flattens nested "and" calls into a flat conjunct list.
// A nil expression yields nil; any non-"and" node is a single conjunct.
func ExtractConjuncts(node Expression) []Expression {
	if node == nil {
		return nil
	}
	call, ok := node.(*FunctionCall)
	if !ok || call.Name != FuncAnd {
		return []Expression{node}
	}
	var conjuncts []Expression
	for _, arg := range call.Args {
		conjuncts = append(conjuncts, ExtractConjuncts(arg)...)
	}
	return conjuncts
}

// CombineConjuncts rebuilds a conjunction from a conjunct list.
// Empty input yields nil, a single conjunct is returned unchanged.
func CombineConjuncts(conjuncts []Expression) Expression {
	switch len(conjuncts) {
	case 0:
		return nil
	case 1:
		return conjuncts[0]
	default:
		args := make([]Expression, len(conjuncts))
		copy(args, conjuncts)
		return &FunctionCall{Name: FuncAnd, Args: args}
	}
}

// Subtract returns the conjuncts of a that are not structurally present
// in b. Order of the surviving conjuncts is preserved.
func Subtract(a, b []Expression) []Expression {
	if len(b) == 0 {
		return a
	}
	removed := make(map[string]struct{}, len(b))
	for _, e := range b {
		removed[e.String()] = struct{}{}
	}
	var result []Expression
	for _, e := range a {
		if _, ok := removed[e.String()]; !ok {
			result = append(result, e)
		}
	}
	return result
}

// Contains reports whether conjuncts includes an expression structurally
// equal to target.
func Contains(conjuncts []Expression, target Expression) bool {
	for _, e := range conjuncts {
		if Equal(e, target) {
			return true
		}
	}
	return false
}
