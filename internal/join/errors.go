package join

import (
	"errors"
	"fmt"
)

// The three error kinds a JoinStream can surface, per the operator's error
// contract: a Plan error means the join was configured in a way that can
// never execute (missing key column, incompatible types); an Execution
// error is a runtime failure in a collaborator (evaluator, batch source);
// an Internal error is a violated invariant in the operator itself.
var (
	ErrPlan      = errors.New("join: plan error")
	ErrExecution = errors.New("join: execution error")
	ErrInternal  = errors.New("join: internal error")
)

// PlanError wraps ErrPlan with context; errors.Is(err, ErrPlan) holds.
func PlanError(format string, args ...any) error {
	return wrapf(ErrPlan, format, args...)
}

// ExecutionError wraps ErrExecution with context.
func ExecutionError(format string, args ...any) error {
	return wrapf(ErrExecution, format, args...)
}

// InternalError wraps ErrInternal with context.
func InternalError(format string, args ...any) error {
	return wrapf(ErrInternal, format, args...)
}

func wrapf(kind error, format string, args ...any) error {
	return &kindedError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

type kindedError struct {
	kind error
	msg  string
}

func (e *kindedError) Error() string { return e.msg }
func (e *kindedError) Unwrap() error { return e.kind }
