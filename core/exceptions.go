package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The set is closed: every error that reaches the
// HTTP boundary is reported as exactly one of these.
type Kind string

const (
	KindValidation     Kind = "ValidationError"
	KindUpstreamModel  Kind = "UpstreamModelError"
	KindQueryExecution Kind = "QueryExecutionError"
	KindInternal       Kind = "InternalError"
)

// Error carries a Kind plus the operation that failed and optional context
// (for example the SQL that was executed).
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
	Context map[string]any
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// With returns e with key=value added to its context.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Validation builds an error for unusable caller input.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// UpstreamModel wraps a failure talking to the language model.
func UpstreamModel(op string, err error) *Error {
	return &Error{Kind: KindUpstreamModel, Op: op, Message: "language model request failed", Err: err}
}

// QueryExecution wraps a failure running generated SQL.
func QueryExecution(op, sql string, err error) *Error {
	e := &Error{Kind: KindQueryExecution, Op: op, Message: "query execution failed", Err: err}
	if sql != "" {
		e.With("sql", sql)
	}
	return e
}

// Internal wraps anything else.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf reports the Kind of err. Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ContextOf returns the context attached to err, if any.
func ContextOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Context
	}
	return nil
}

// Describe renders err with its operation for server-side logs.
func Describe(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Op != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, e.Error())
	}
	return err.Error()
}
