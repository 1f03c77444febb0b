package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "graphqa:session:"

// RedisStore keeps session snapshots in Redis as JSON with a sliding TTL.
// Concurrent turns on the same session are last-writer-wins.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	ttl      time.Duration
	newState func() *State
}

// RedisStoreConfig configures a RedisStore.
type RedisStoreConfig struct {
	// Prefix defaults to DefaultKeyPrefix.
	Prefix string

	// TTL expires idle sessions. Zero keeps them forever.
	TTL time.Duration

	// StateOptions are applied to every loaded or created State.
	StateOptions []Option
}

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig) *RedisStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	opts := cfg.StateOptions
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		ttl:      cfg.TTL,
		newState: func() *State { return NewState(opts...) },
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Create writes an empty session.
func (r *RedisStore) Create(ctx context.Context) (string, *State, error) {
	id := uuid.New().String()
	st := r.newState()
	if err := r.Save(ctx, id, st); err != nil {
		return "", nil, err
	}
	return id, st, nil
}

// Get loads and decodes a session, refreshing its TTL.
func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, NewSessionStoreError("failed to load session", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, NewSessionStoreError("failed to decode session", err)
	}

	if r.ttl > 0 {
		if err := r.client.Expire(ctx, r.key(id), r.ttl).Err(); err != nil {
			return nil, NewSessionStoreError("failed to refresh session ttl", err)
		}
	}

	st := r.newState()
	st.Restore(snap)
	return st, nil
}

// Save encodes and writes a session.
func (r *RedisStore) Save(ctx context.Context, id string, state *State) error {
	data, err := json.Marshal(state.Snapshot())
	if err != nil {
		return NewSessionStoreError("failed to encode session", err)
	}
	if err := r.client.Set(ctx, r.key(id), data, r.ttl).Err(); err != nil {
		return NewSessionStoreError("failed to save session", err)
	}
	return nil
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return NewSessionStoreError("failed to delete session", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ Store = (*RedisStore)(nil)
