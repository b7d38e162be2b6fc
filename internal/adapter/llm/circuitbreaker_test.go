package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/logger"
)

// scriptedClassifier fails until the script runs out, then succeeds.
type scriptedClassifier struct {
	failures int
	calls    int
}

func (c *scriptedClassifier) Classify(context.Context, string, string) (string, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", errors.New("provider down")
	}
	return "ok", nil
}

func (c *scriptedClassifier) Name() string { return "scripted" }

func TestCircuitBreakerPassesThrough(t *testing.T) {
	inner := &scriptedClassifier{}
	cb := NewCircuitBreakerClassifier(inner, logger.Discard())

	reply, err := cb.Classify(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("reply = %q", reply)
	}
	if cb.Name() != "scripted" {
		t.Fatalf("name = %q", cb.Name())
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &scriptedClassifier{failures: 1000}
	cb := NewCircuitBreakerClassifier(inner, logger.Discard())

	for i := 0; i < int(defaultCBMaxFailures); i++ {
		if _, err := cb.Classify(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected provider error")
		}
	}
	callsBeforeOpen := inner.calls

	_, err := cb.Classify(context.Background(), "s", "u")
	if !errors.Is(err, domain.ErrClassifier) {
		t.Fatalf("open-circuit error = %v, want ErrClassifier", err)
	}
	if inner.calls != callsBeforeOpen {
		t.Fatal("open circuit must not reach the provider")
	}
}
