package syncerr

import (
	"errors"
	"testing"
)

func TestRetryable(t *testing.T) {
	retryable := []Kind{Network, Storage, Conflict}
	for _, k := range retryable {
		e := New(k, "boom")
		if !e.Retryable() {
			t.Errorf("expected %s to be retryable", k)
		}
	}

	notRetryable := []Kind{NotFound, InvalidTimestamp, Serialization, Deserialization, InvalidOperation, Protocol}
	for _, k := range notRetryable {
		e := New(k, "boom")
		if e.Retryable() {
			t.Errorf("expected %s to not be retryable", k)
		}
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	e := Wrap(Storage, "write failed", cause)
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to unwrap the cause")
	}
}

func TestIs(t *testing.T) {
	e := New(NotFound, "missing")
	if !Is(e, NotFound) {
		t.Error("expected Is to match the same kind")
	}
	if Is(e, Storage) {
		t.Error("expected Is to reject a different kind")
	}
	if Is(errors.New("plain"), NotFound) {
		t.Error("expected Is to reject a non-syncerr error")
	}
}

func TestErrorMessage(t *testing.T) {
	e := New(InvalidOperation, "mismatched document ids")
	if e.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}
