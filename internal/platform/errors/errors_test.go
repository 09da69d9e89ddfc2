package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeModelCallFailed, "provider unavailable")

	if !errors.Is(err, New(CodeModelCallFailed, "different message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(err, New(CodeModelEmptyCompletion, "provider unavailable")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(CodeModelCallFailed, "chat completion failed", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable through the chain")
	}
}

func TestCodeOf(t *testing.T) {
	direct := New(CodeSessionSequenceConflict, "turn sequence conflict")
	if got := CodeOf(direct); got != CodeSessionSequenceConflict {
		t.Fatalf("expected direct code, got %s", got)
	}

	wrapped := fmt.Errorf("commit turn: %w", direct)
	if got := CodeOf(wrapped); got != CodeSessionSequenceConflict {
		t.Fatalf("expected code through the chain, got %s", got)
	}

	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for uncoded error, got %s", got)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for nil, got %s", got)
	}
}
