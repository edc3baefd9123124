package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"
)

// CompilationError is returned when a --filter expression is rejected
type CompilationError struct {
	Expression string
	Reason     string
	// Column is the 1-based column the parser stopped at, 0 when unknown
	Column int
	Err    error
}

func newCompilationError(expression, reason string, err error) *CompilationError {
	ce := &CompilationError{Expression: expression, Reason: reason, Err: err}
	var fe *file.Error
	if errors.As(err, &fe) {
		ce.Column = fe.Column + 1
	}
	return ce
}

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("filter %q: %s", e.Expression, e.Reason)
	if e.Column > 0 {
		msg += fmt.Sprintf(" near column %d", e.Column)
	}
	return msg
}

func (e *CompilationError) Unwrap() error { return e.Err }

// EvaluationError is returned when a compiled filter fails on one entity
type EvaluationError struct {
	Expression string
	Subject    string
	Reason     string
	Err        error
}

func (e *EvaluationError) Error() string {
	target := "entity"
	if e.Subject != "" {
		target = e.Subject
	}
	if e.Err != nil {
		return fmt.Sprintf("filter %q on %s: %s: %v", e.Expression, target, e.Reason, e.Err)
	}
	return fmt.Sprintf("filter %q on %s: %s", e.Expression, target, e.Reason)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
