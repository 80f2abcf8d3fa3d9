package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "blog.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "blog.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerLogsMessageFields(t *testing.T) {
	logger := &fieldLogger{}
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithLogger[testMessage](logger),
		WithOperation[testMessage]("test.op"),
		WithMessageFields(func(testMessage) map[string]any { return map[string]any{"dir": "posts"} }),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if logger.fields["command"] != "blog.test.message" || logger.fields["operation"] != "test.op" || logger.fields["dir"] != "posts" {
		t.Fatalf("unexpected fields %v", logger.fields)
	}
	if logger.last != "command.execute.success" {
		t.Fatalf("expected success entry, got %q", logger.last)
	}
}

type fieldLogger struct {
	fields map[string]any
	last   string
}

func (l *fieldLogger) Trace(msg string, _ ...any) { l.last = msg }
func (l *fieldLogger) Debug(msg string, _ ...any) { l.last = msg }
func (l *fieldLogger) Info(msg string, _ ...any)  { l.last = msg }
func (l *fieldLogger) Warn(msg string, _ ...any)  { l.last = msg }
func (l *fieldLogger) Error(msg string, _ ...any) { l.last = msg }
func (l *fieldLogger) Fatal(msg string, _ ...any) { l.last = msg }

func (l *fieldLogger) WithFields(fields map[string]any) interfaces.Logger {
	l.fields = fields
	return l
}

func (l *fieldLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestHandlerCategorisesDomainErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		validation bool
	}{
		{name: "taken slug", err: models.ErrSlugExists, validation: true},
		{name: "wrapped owner error", err: fmt.Errorf("delete: %w", models.ErrUserHasPosts), validation: true},
		{name: "missing record", err: &models.NotFoundError{Resource: "post", Key: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler[testMessage](func(context.Context, testMessage) error { return tc.err })
			err := h.Execute(context.Background(), testMessage{})
			if got := goerrors.IsCategory(err, goerrors.CategoryValidation); got != tc.validation {
				t.Fatalf("validation category = %v, want %v (%v)", got, tc.validation, err)
			}
			if !tc.validation && !goerrors.IsCategory(err, goerrors.CategoryCommand) {
				t.Fatalf("expected command category, got %v", err)
			}
		})
	}
}
