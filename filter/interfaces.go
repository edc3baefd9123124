package filter

// Subject is a catalog entity that can be matched by a filter
type Subject interface {
	// FilterFields returns the named values an expression can reference
	FilterFields() map[string]any
}

// Filter defines the basic interface for result filters
type Filter interface {
	// Evaluate checks if a subject matches the filter criteria
	Evaluate(subject Subject) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate reporting why evaluation failed
	Match(subject Subject) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
