package push

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisSubKeyPrefix  = "push:sub:"  // hash per endpoint
	redisUserKeyPrefix = "push:user:" // set of endpoints per user
)

// RedisStore is a Redis-backed SubscriptionStore: one hash per endpoint
// plus a per-user set that indexes ListByUser. Useful for deployments that
// keep ephemeral client state out of the primary database.
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore creates a registry backed by the given Redis client.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Register(ctx context.Context, sub Subscription) error {
	if sub.Endpoint == "" {
		return ErrEmptyEndpoint
	}
	if sub.UserID == "" {
		return ErrEmptyUserID
	}

	subKey := redisSubKeyPrefix + sub.Endpoint
	now := time.Now()

	// An endpoint may change owner on re-registration; drop it from the
	// previous owner's index first so it is never listed twice.
	prevOwner, err := s.rdb.HGet(ctx, subKey, "user_id").Result()
	switch {
	case err == nil && prevOwner != sub.UserID:
		if err := s.rdb.SRem(ctx, redisUserKeyPrefix+prevOwner, sub.Endpoint).Err(); err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
	case err != nil && !errors.Is(err, redis.Nil):
		return errors.Join(ErrStoreUnavailable, err)
	}

	createdAt, err := s.rdb.HGet(ctx, subKey, "created_at").Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return errors.Join(ErrStoreUnavailable, err)
		}
		createdAt = now.Format(time.RFC3339Nano)
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, subKey, map[string]any{
		"endpoint":     sub.Endpoint,
		"user_id":      sub.UserID,
		"auth_key":     sub.AuthKey,
		"cipher_key":   sub.CipherKey,
		"client_info":  sub.ClientInfo,
		"created_at":   createdAt,
		"last_used_at": now.Format(time.RFC3339Nano),
	})
	pipe.SAdd(ctx, redisUserKeyPrefix+sub.UserID, sub.Endpoint)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Unregister(ctx context.Context, userID, endpoint string) error {
	owner, err := s.rdb.HGet(ctx, redisSubKeyPrefix+endpoint, "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	if owner != userID {
		return nil
	}
	return s.delete(ctx, endpoint, owner)
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	endpoints, err := s.rdb.SMembers(ctx, redisUserKeyPrefix+userID).Result()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	subs := make([]Subscription, 0, len(endpoints))
	for _, endpoint := range endpoints {
		fields, err := s.rdb.HGetAll(ctx, redisSubKeyPrefix+endpoint).Result()
		if err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		if len(fields) == 0 {
			// Stale index entry left by a concurrent delete; skip it.
			continue
		}
		subs = append(subs, subscriptionFromHash(fields))
	}
	return subs, nil
}

func (s *RedisStore) Touch(ctx context.Context, endpoint string) error {
	subKey := redisSubKeyPrefix + endpoint
	exists, err := s.rdb.Exists(ctx, subKey).Result()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return nil
	}
	if err := s.rdb.HSet(ctx, subKey, "last_used_at", time.Now().Format(time.RFC3339Nano)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	owner, err := s.rdb.HGet(ctx, redisSubKeyPrefix+endpoint, "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	return s.delete(ctx, endpoint, owner)
}

func (s *RedisStore) delete(ctx context.Context, endpoint, owner string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, redisSubKeyPrefix+endpoint)
	pipe.SRem(ctx, redisUserKeyPrefix+owner, endpoint)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func subscriptionFromHash(fields map[string]string) Subscription {
	sub := Subscription{
		Endpoint:   fields["endpoint"],
		UserID:     fields["user_id"],
		AuthKey:    fields["auth_key"],
		CipherKey:  fields["cipher_key"],
		ClientInfo: fields["client_info"],
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		sub.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["last_used_at"]); err == nil {
		sub.LastUsedAt = t
	}
	return sub
}
