package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout defines how long a session stays usable without activity.
	DefaultTimeout = 5 * time.Minute

	// SessionPrefix is prepended to all session keys in Redis to namespace them
	// and avoid conflicts with other data stored in the same Redis instance.
	SessionPrefix = "leaderboard:"
)

// ErrSessionExpired indicates the session is missing or idle beyond the timeout.
var ErrSessionExpired = errors.New("session expired")

// envelope is the stored form of a session.
type envelope[T any] struct {
	LastActive time.Time `json:"lastActive"`
	Data       T         `json:"data"`
}

// Manager stores sessions of type T in Redis keyed by an ID.
// Keys expire after the idle timeout and every save refreshes the TTL.
type Manager[T any] struct {
	redis   rueidis.Client
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewManager creates a session manager over the given Redis client.
func NewManager[T any](client rueidis.Client, timeout time.Duration, logger *zap.Logger) *Manager[T] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Manager[T]{
		redis:   client,
		timeout: timeout,
		now:     time.Now,
		logger:  logger.Named("session"),
	}
}

// SetClock overrides the time source used for idle checks.
func (m *Manager[T]) SetClock(now func() time.Time) {
	m.now = now
}

// Timeout returns the idle timeout.
func (m *Manager[T]) Timeout() time.Duration {
	return m.timeout
}

// Load returns the session stored under id.
// A missing key or a session idle beyond the timeout yields ErrSessionExpired.
func (m *Manager[T]) Load(ctx context.Context, id uint64) (*T, error) {
	key := sessionKey(id)

	result := m.redis.Do(ctx, m.redis.B().Get().Key(key).Build())
	if err := result.Error(); err != nil {
		if errors.Is(err, rueidis.Nil) {
			return nil, ErrSessionExpired
		}

		return nil, fmt.Errorf("failed to query Redis: %w", err)
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get session data as bytes: %w", err)
	}

	var env envelope[T]
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	if m.now().Sub(env.LastActive) > m.timeout {
		m.logger.Debug("Session idle beyond timeout",
			zap.Uint64("session_id", id),
			zap.Time("last_active", env.LastActive))

		return nil, ErrSessionExpired
	}

	return &env.Data, nil
}

// Save stores the session under id, marking it active now.
func (m *Manager[T]) Save(ctx context.Context, id uint64, data *T) error {
	env := envelope[T]{
		LastActive: m.now().UTC(),
		Data:       *data,
	}

	payload, err := sonic.Marshal(&env)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	cmd := m.redis.B().Set().Key(sessionKey(id)).Value(rueidis.BinaryString(payload)).Ex(m.timeout).Build()
	if err := m.redis.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Close removes a session immediately rather than waiting for expiration.
func (m *Manager[T]) Close(ctx context.Context, id uint64) {
	if err := m.redis.Do(ctx, m.redis.B().Del().Key(sessionKey(id)).Build()).Error(); err != nil {
		m.logger.Error("Failed to delete session", zap.Uint64("session_id", id), zap.Error(err))
	}
}

func sessionKey(id uint64) string {
	return SessionPrefix + strconv.FormatUint(id, 10)
}
