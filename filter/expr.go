package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, newCompilationError(expression, "empty expression", nil)
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Entity fields are only known at run time
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, "failed to compile expression", err)
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}
	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate reports whether subject matches. Evaluation errors never match.
func (f *exprFilter) Evaluate(subject Subject) bool {
	ok, err := f.Match(subject)
	return err == nil && ok
}

// Match evaluates the filter against subject
func (f *exprFilter) Match(subject Subject) (bool, error) {
	env := createRuntimeEnvironment(f.helpers, subject)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Subject:    subjectName(subject),
			Reason:     "failed to run expression",
			Err:        err,
		}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expression,
			Subject:    subjectName(subject),
			Reason:     fmt.Sprintf("expression returned %T, not bool", result),
		}
	}
	return matched, nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func subjectName(subject Subject) string {
	if s, ok := subject.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// Date helpers
	funcs["daysSince"] = func(t time.Time) int {
		return int(wallNow().Sub(t).Hours() / 24)
	}
	funcs["daysUntil"] = func(t time.Time) int {
		return int(t.Sub(wallNow()).Hours() / 24)
	}
	funcs["daysAgo"] = func(days int) time.Time {
		return wallNow().AddDate(0, 0, -days)
	}
	funcs["daysAhead"] = func(days int) time.Time {
		return wallNow().AddDate(0, 0, days)
	}
	funcs["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}

	// String helpers
	funcs["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper
	funcs["now"] = wallNow
	// Replaced per subject at run time
	funcs["hasCategory"] = func(string) bool { return false }

	return funcs
}

// createRuntimeEnvironment merges the helpers with the subject's fields
func createRuntimeEnvironment(helpers map[string]any, subject Subject) map[string]any {
	fields := subject.FilterFields()

	env := make(map[string]any, len(helpers)+len(fields)+1)
	maps.Copy(env, helpers)
	maps.Copy(env, fields)

	categories, _ := fields["Categories"].([]string)
	env["hasCategory"] = createHasCategoryFunc(categories)

	return env
}

func createHasCategoryFunc(ids []string) func(string) bool {
	return func(id string) bool {
		return slices.Contains(ids, id)
	}
}

// wallNow returns the local wall clock anchored in UTC, the form entity
// timestamps are stored in
func wallNow() time.Time {
	n := time.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), n.Nanosecond(), time.UTC)
}
