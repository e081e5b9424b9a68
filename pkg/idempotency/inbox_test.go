package idempotency

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	ts := time.Date(2026, 3, 9, 14, 22, 41, 0, time.UTC)

	a := GenerateKey("PR-FHIR", "0000000001", "req-00112233", ts)
	b := GenerateKey("PR-FHIR", "0000000001", "req-00112233", ts)
	if a != b {
		t.Errorf("same submission produced different keys: %s vs %s", a, b)
	}

	// Seconds within the same minute collapse to one key
	c := GenerateKey("PR-FHIR", "0000000001", "req-00112233", ts.Add(10*time.Second))
	if a != c {
		t.Errorf("clock drift within a minute changed the key: %s vs %s", a, c)
	}

	d := GenerateKey("PR-FHIR", "0000000001", "req-99887766", ts)
	if a == d {
		t.Error("different request numbers produced the same key")
	}
}

func TestIsTerminalError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		terminal bool
	}{
		{"wrapped permanent", Permanent(errors.New("bundle missing MessageHeader")), true},
		{"validation phrase", errors.New("bundle validation failed"), true},
		{"state machine terminal", errors.New("submission already terminal"), true},
		{"transient transport", errors.New("connection refused"), false},
		{"breaker open", errors.New("circuit breaker is open"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTerminalError(tc.err); got != tc.terminal {
				t.Errorf("isTerminalError(%v) = %v, want %v", tc.err, got, tc.terminal)
			}
		})
	}
}

func TestPermanentNilPassthrough(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should stay nil")
	}
	wrapped := Permanent(errors.New("unmapped claim category"))
	if !errors.Is(wrapped, ErrPermanent) {
		t.Error("wrapped error should match ErrPermanent")
	}
}
