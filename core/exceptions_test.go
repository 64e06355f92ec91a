package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("no such table: customers")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("analyze", "question must not be empty"), KindValidation},
		{"model", UpstreamModel("generate_sql", base), KindUpstreamModel},
		{"query", QueryExecution("execute", "SELECT 1", base), KindQueryExecution},
		{"internal", Internal("seed", base), KindInternal},
		{"wrapped", fmt.Errorf("handler: %w", QueryExecution("execute", "", base)), KindQueryExecution},
		{"plain", base, KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("%s: KindOf = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestErrorMessageKeepsCause(t *testing.T) {
	err := QueryExecution("execute", "SELECT * FROM customers", errors.New("no such table: customers"))
	if got := err.Error(); got != "query execution failed: no such table: customers" {
		t.Fatalf("unexpected message %q", got)
	}
	if ctx := ContextOf(err); ctx["sql"] != "SELECT * FROM customers" {
		t.Fatalf("expected sql in context, got %v", ctx)
	}
	if !strings.Contains(Describe(err), "execute [QueryExecutionError]") {
		t.Fatalf("unexpected description %q", Describe(err))
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := UpstreamModel("generate_insights", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
}

func TestErrorLogger_RingBuffer(t *testing.T) {
	l := NewErrorLogger(2)
	l.Record("query", Validation("analyze", "first"))
	l.Record("query", UpstreamModel("generate_sql", errors.New("second")))
	l.Record("query", QueryExecution("execute", "SELECT 1", errors.New("third")))
	l.Record("query", nil)

	logs := l.Recent()
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Kind != string(KindQueryExecution) || logs[0].ID != 3 {
		t.Fatalf("expected newest first, got %+v", logs[0])
	}
	if logs[0].Detail != "third" || !strings.Contains(logs[0].Context, "SELECT 1") {
		t.Fatalf("expected detail and context to be captured, got %+v", logs[0])
	}
	if logs[1].Kind != string(KindUpstreamModel) {
		t.Fatalf("expected model error second, got %+v", logs[1])
	}

	l.Clear()
	if len(l.Recent()) != 0 {
		t.Fatalf("expected no logs after Clear")
	}
}

func TestErrorLogger_ValidationIsWarning(t *testing.T) {
	l := NewErrorLogger(0)
	l.Record("query", Validation("analyze", "question must not be empty"))
	if got := l.Recent()[0].Level; got != "WARN" {
		t.Fatalf("expected WARN, got %s", got)
	}
}
