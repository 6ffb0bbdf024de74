package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-quoteform/pkg/quote"
)

const defaultKeyPrefix = "quoteform:session:"

// RedisStore keeps sessions as JSON strings with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore stores sessions under the quoteform:session: prefix. A zero
// ttl keeps keys until deleted.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: defaultKeyPrefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (quote.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return quote.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return quote.Snapshot{}, fmt.Errorf("session: redis get: %w", err)
	}
	var snap quote.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return quote.Snapshot{}, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, snap quote.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
