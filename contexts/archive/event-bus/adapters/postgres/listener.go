package postgresadapter

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	application "quorum/contexts/archive/event-bus/application"
	"quorum/contexts/archive/event-bus/ports"
)

const (
	DefaultListenMaxAttempts = 20
	DefaultListenMaxBackoff  = 60 * time.Second

	listenInitialBackoff = time.Second
	listenJitterCap      = time.Second
)

// Listener keeps one dedicated connection on LISTEN. Notifications arrive on
// the session that issued the LISTEN, so the connection is dialed through
// Connect and never shared with the gorm pool. A lost connection is redialed
// with capped exponential backoff; notifications sent while disconnected are
// not replayed here, the next process start's backlog pass recovers them.
type Listener struct {
	Connect     func(ctx context.Context) (*pgx.Conn, error)
	Channel     string
	MaxAttempts int
	MaxBackoff  time.Duration
	Logger      *slog.Logger
}

func (l *Listener) Listen(ctx context.Context, ready func(), notify func(eventID int64)) error {
	logger := application.ResolveLogger(l.Logger)

	var readyOnce sync.Once
	signalReady := func() {
		if ready == nil {
			return
		}
		readyOnce.Do(ready)
	}

	attempts := 0
	for {
		subscribed, err := l.listenOnce(ctx, logger, signalReady, notify)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			attempts = 0
		}
		attempts++
		if attempts >= l.maxAttempts() {
			return fmt.Errorf("listen on channel %s: %d consecutive failures: %w", l.Channel, attempts, err)
		}

		backoff := l.backoff(attempts)
		logger.Warn("listener connection lost, reconnecting",
			"event", "bus_listener_reconnecting",
			"module", "archive/event-bus",
			"layer", "adapter",
			"channel", l.Channel,
			"attempt", attempts,
			"backoff", backoff.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
	}
}

// listenOnce runs a single connection to failure. It reports whether the
// subscription was registered, which resets the consecutive failure count.
func (l *Listener) listenOnce(ctx context.Context, logger *slog.Logger, ready func(), notify func(eventID int64)) (bool, error) {
	conn, err := l.Connect(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.Channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen on channel %s: %w", l.Channel, err)
	}
	ready()
	logger.Info("listener subscribed",
		"event", "bus_listener_subscribed",
		"module", "archive/event-bus",
		"layer", "adapter",
		"channel", l.Channel,
	)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}
		eventID, parseErr := parseEventID(notification.Payload)
		if parseErr != nil {
			logger.Error("notification payload is not an event id",
				"event", "bus_payload_invalid",
				"module", "archive/event-bus",
				"layer", "adapter",
				"channel", l.Channel,
				"payload", notification.Payload,
			)
			continue
		}
		notify(eventID)
	}
}

// parseEventID decodes the pg_notify payload, the decimal id of the new row.
func parseEventID(payload string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
}

func (l *Listener) backoff(attempt int) time.Duration {
	backoff := listenInitialBackoff << (attempt - 1)
	if backoff <= 0 || backoff > l.maxBackoff() {
		backoff = l.maxBackoff()
	}
	return backoff + time.Duration(rand.Int63n(int64(listenJitterCap)))
}

func (l *Listener) maxAttempts() int {
	if l.MaxAttempts > 0 {
		return l.MaxAttempts
	}
	return DefaultListenMaxAttempts
}

func (l *Listener) maxBackoff() time.Duration {
	if l.MaxBackoff > 0 {
		return l.MaxBackoff
	}
	return DefaultListenMaxBackoff
}

var _ ports.Listener = (*Listener)(nil)
