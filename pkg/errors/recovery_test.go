package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "fold 2")
		panic("index out of range")
	}

	err := testFunc()

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "fold 2" {
		t.Errorf("Expected operation 'fold 2', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in fold 2: index out of range" {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "fold 0")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "fold 1")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if !errors.Is(err, originalErr) {
		t.Errorf("original error should stay in the chain: %v", err)
	}
	if !strings.Contains(err.Error(), "panic in fold 1") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	want := fmt.Errorf("fit failed")
	if err := SafeExecute("fit", func() error { return want }); err != want {
		t.Errorf("expected function error to pass through, got %v", err)
	}

	err := SafeExecute("predict", func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
}
