package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/session"
)

const sessionKeyPrefix = "session:"

// SessionRepository stores browser sessions in Redis as JSON documents.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Load retrieves the values of a session.
func (r *SessionRepository) Load(ctx context.Context, id string) (session.Values, error) {
	if r.client == nil {
		return nil, appErrors.ErrSessionMiss
	}

	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionMiss
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var values session.Values
	if err := json.Unmarshal(raw, &values); err != nil {
		r.logger.Warn("discarding unreadable session", zap.String("session_id", id), zap.Error(err))
		return nil, appErrors.ErrSessionMiss
	}
	return values, nil
}

// Save replaces the values of a session and refreshes its TTL.
func (r *SessionRepository) Save(ctx context.Context, id string, values session.Values, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}

	if err := r.client.Set(ctx, sessionKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", id, err)
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *SessionRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection if present.
func (r *SessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
