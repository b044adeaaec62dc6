package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// sessionKeyPrefix namespaces publish sessions in a shared Redis.
	sessionKeyPrefix = "publish:session:"

	// addPiecesRetries bounds optimistic transaction retries when concurrent
	// merges race on the same token.
	addPiecesRetries = 5
)

// RedisStore implements Store on Redis with one JSON document per session.
// Key TTL carries the expiry, so DeleteExpired is a no-op. Merges run inside
// a WATCH transaction to keep read-modify-write atomic per token.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Create inserts a new session.
func (r *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("publish: encode session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.Token), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("publish: store session: %w", err)
	}
	if !ok {
		return ErrTokenTaken
	}
	return nil
}

// Get retrieves a live session.
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("publish: load session: %w", err)
	}
	return decodeSession(data)
}

// Exists reports whether a token is in use.
func (r *RedisStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("publish: check token: %w", err)
	}
	return n > 0, nil
}

// AddPieces merges pieces into the session. The WATCH transaction aborts if
// another writer touches the key between read and write; aborted merges are
// retried a bounded number of times.
func (r *RedisStore) AddPieces(ctx context.Context, token string, pieces map[string][]byte) (*Session, error) {
	key := sessionKey(token)

	var updated *Session
	merge := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("publish: load session: %w", err)
		}

		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		session.Merge(pieces, time.Now(), r.ttl)

		encoded, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("publish: encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for i := 0; i < addPiecesRetries; i++ {
		err := r.client.Watch(ctx, merge, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("publish: merge contention on token %s", token)
}

// Take atomically removes and returns a live session via GETDEL.
func (r *RedisStore) Take(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.GetDel(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("publish: take session: %w", err)
	}
	return decodeSession(data)
}

// Delete removes a session if present.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("publish: delete session: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: key TTL evicts expired sessions.
func (r *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func decodeSession(data []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("publish: decode session: %w", err)
	}
	return &session, nil
}
