package postgresadapter

import (
	"testing"
	"time"
)

func TestParseEventIDAcceptsDecimalPayload(t *testing.T) {
	id, err := parseEventID(" 42 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("id = %d, want 42", id)
	}
}

func TestParseEventIDRejectsMalformedPayload(t *testing.T) {
	for _, payload := range []string{"", "not-a-number", "12.5", "12abc"} {
		if _, err := parseEventID(payload); err == nil {
			t.Fatalf("payload %q: expected a parse error", payload)
		}
	}
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	listener := &Listener{Channel: "domain_events"}
	for attempt := 1; attempt <= DefaultListenMaxAttempts; attempt++ {
		backoff := listener.backoff(attempt)
		if backoff < listenInitialBackoff {
			t.Fatalf("attempt %d: backoff %s below the initial step", attempt, backoff)
		}
		if backoff > DefaultListenMaxBackoff+listenJitterCap {
			t.Fatalf("attempt %d: backoff %s above cap plus jitter", attempt, backoff)
		}
	}
}

func TestBackoffDoublesUntilCap(t *testing.T) {
	listener := &Listener{Channel: "domain_events", MaxBackoff: 8 * time.Second}
	for attempt, want := range map[int]time.Duration{
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 8 * time.Second,
		5: 8 * time.Second,
	} {
		backoff := listener.backoff(attempt)
		if backoff < want || backoff >= want+listenJitterCap {
			t.Fatalf("attempt %d: backoff %s, want %s plus jitter under %s", attempt, backoff, want, listenJitterCap)
		}
	}
}
