package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultDedupeTTL bounds how long a consumed event id is remembered.
const DefaultDedupeTTL = 24 * time.Hour

// IdempotencyStore is the storage surface the request idempotency middleware
// relies on. *Client satisfies it.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// IdempotencyManager dedupes event processing per consumer using SETNX.
type IdempotencyManager struct {
	client *Client
	ttl    time.Duration
}

// NewIdempotencyManager wraps the client with a dedupe TTL.
func NewIdempotencyManager(client *Client, ttl time.Duration) *IdempotencyManager {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &IdempotencyManager{client: client, ttl: ttl}
}

// CheckAndMarkProcessed returns true when the event was already handled by
// this consumer. Otherwise it claims the event id and returns false.
func (m *IdempotencyManager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key := m.client.ConsumerKey(consumer, eventID.String())
	claimed, err := m.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete releases a claimed event id so a failed handler can retry it.
func (m *IdempotencyManager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	return m.client.Del(ctx, m.client.ConsumerKey(consumer, eventID.String()))
}
