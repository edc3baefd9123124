package filter

var defaultCompiler = NewExprCompiler(WithCache(64))

// CompileFilter compiles expression with the shared caching compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Apply returns the items f matches, keeping their order. A nil filter
// returns items unchanged. The first entity the filter cannot be evaluated
// against aborts with its *EvaluationError.
func Apply[T Subject](f CompiledFilter, items []T) ([]T, error) {
	if f == nil {
		return items, nil
	}
	matched := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := f.Match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}
