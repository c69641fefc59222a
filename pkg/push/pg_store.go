package push

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the PostgreSQL-backed SubscriptionStore. The endpoint URL is
// the primary key; the upsert in Register and the owner check in Unregister
// are the only serialization the engine needs, so no in-process locking is
// involved.
//
// The schema lives in migrations/ and is applied with pg.Migrate.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a registry backed by the given connection pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Register(ctx context.Context, sub Subscription) error {
	if sub.Endpoint == "" {
		return ErrEmptyEndpoint
	}
	if sub.UserID == "" {
		return ErrEmptyUserID
	}

	// Re-registration takes over owner and keys for the new subscriber and
	// refreshes liveness; a duplicate endpoint never surfaces as an error.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO push_subscriptions (endpoint, user_id, auth_key, cipher_key, client_info, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    auth_key = EXCLUDED.auth_key,
		    cipher_key = EXCLUDED.cipher_key,
		    client_info = EXCLUDED.client_info,
		    last_used_at = now()`,
		sub.Endpoint, sub.UserID, sub.AuthKey, sub.CipherKey, sub.ClientInfo,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PgStore) Unregister(ctx context.Context, userID, endpoint string) error {
	// The owner predicate makes a foreign-owned delete a zero-row no-op.
	_, err := s.pool.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE endpoint = $1 AND user_id = $2`,
		endpoint, userID,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PgStore) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT endpoint, user_id, auth_key, cipher_key, client_info, created_at, last_used_at
		FROM push_subscriptions
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	subs := make([]Subscription, 0)
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.Endpoint, &sub.UserID, &sub.AuthKey, &sub.CipherKey, &sub.ClientInfo, &sub.CreatedAt, &sub.LastUsedAt); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return subs, nil
}

func (s *PgStore) Touch(ctx context.Context, endpoint string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE push_subscriptions SET last_used_at = now() WHERE endpoint = $1`,
		endpoint,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PgStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE endpoint = $1`,
		endpoint,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
