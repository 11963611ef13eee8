package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew_WithContextPairs(t *testing.T) {
	err := New(CodePoolNotFound,
		WithContext("venue", "minswap"),
		WithContext("status", 502),
	)

	if err.Context["venue"] != "minswap" {
		t.Errorf("Context[venue] = %v, want minswap", err.Context["venue"])
	}
	if err.Context["status"] != 502 {
		t.Errorf("Context[status] = %v, want 502", err.Context["status"])
	}

	// Keys render sorted, so the message is stable across runs
	want := fmt.Sprintf("%s: %s (status=502, venue=minswap)", CodePoolNotFound, messages[CodePoolNotFound])
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNew_NoContext(t *testing.T) {
	err := New(CodeInternalError)

	if len(err.Context) != 0 {
		t.Errorf("Context = %v, want empty", err.Context)
	}
	want := fmt.Sprintf("%s: %s", CodeInternalError, messages[CodeInternalError])
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := New(CodeCircuitOpen, WithContext("breaker", "minswap"))

	if !errors.Is(err, New(CodeCircuitOpen)) {
		t.Error("errors.Is does not match same code")
	}
	if errors.Is(err, New(CodeRateLimitExceeded)) {
		t.Error("errors.Is matches a different code")
	}
	if !IsCode(err, CodeCircuitOpen) {
		t.Error("IsCode = false for own code")
	}
	if GetCode(err) != CodeCircuitOpen {
		t.Errorf("GetCode = %s, want %s", GetCode(err), CodeCircuitOpen)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	err := Wrap(cause, CodeVenueConnectionFailed, "venue", "sundaeswap")
	if err.Code != CodeVenueConnectionFailed {
		t.Errorf("Code = %s, want %s", err.Code, CodeVenueConnectionFailed)
	}
	if err.Context["venue"] != "sundaeswap" {
		t.Errorf("Context[venue] = %v, want sundaeswap", err.Context["venue"])
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	// An existing AppError passes through; the key is not overwritten
	rewrapped := Wrap(err, CodeInternalError, "venue", "other")
	if rewrapped != err {
		t.Error("Wrap did not pass the AppError through")
	}
	if rewrapped.Context["venue"] != "sundaeswap" {
		t.Errorf("Context[venue] = %v, want original value kept", rewrapped.Context["venue"])
	}

	if Wrap(nil, CodeInternalError, "k", "v") != nil {
		t.Error("Wrap(nil) != nil")
	}
}

func TestToLog_IncludesContextAndCause(t *testing.T) {
	err := New(CodePoolNotFound,
		WithContext("pair", "CATSKY-ADA"),
		WithCause(errors.New("404")),
	)

	entry := err.ToLog()
	ctx, ok := entry["context"].(map[string]any)
	if !ok {
		t.Fatalf("context entry = %T, want map", entry["context"])
	}
	if ctx["pair"] != "CATSKY-ADA" {
		t.Errorf("context[pair] = %v, want CATSKY-ADA", ctx["pair"])
	}
	if entry["cause"] != "404" {
		t.Errorf("cause = %v, want 404", entry["cause"])
	}
}
