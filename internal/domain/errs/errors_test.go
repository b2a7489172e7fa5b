package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsExistingCode(t *testing.T) {
	base := New(CodeNotFound, "project.get", "project not found")
	wrapped := Wrap(CodeInternal, "project.dashboard", base)
	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Fatalf("CodeOf=%q want %q", got, CodeNotFound)
	}
	outer := fmt.Errorf("loading: %w", wrapped)
	if !IsCode(outer, CodeNotFound) {
		t.Fatalf("IsCode through fmt wrap: expected true")
	}
}

func TestWrapNilAndPlain(t *testing.T) {
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
	cause := errors.New("boom")
	err := Wrap(CodeInternal, "op", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if CodeOf(cause) != "" {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDetails(t *testing.T) {
	err := WithDetails(CodePreconditionFailed, "phase.complete", "missing requirements", []string{"challenge"})
	if got := DetailsOf(err); len(got) != 1 || got[0] != "challenge" {
		t.Fatalf("DetailsOf=%v", got)
	}
	if want := "phase.complete: missing requirements (precondition_failed)"; err.Error() != want {
		t.Fatalf("Error()=%q want %q", err.Error(), want)
	}
}
