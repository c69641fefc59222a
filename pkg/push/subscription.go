package push

import (
	"context"
	"time"
)

// Subscription is one registered browser/device push endpoint. A user owns
// any number of subscriptions; an endpoint URL belongs to exactly one user
// at a time.
type Subscription struct {
	Endpoint   string    `json:"endpoint"`
	UserID     string    `json:"user_id"`
	AuthKey    string    `json:"auth_key"`    // transport auth secret
	CipherKey  string    `json:"cipher_key"`  // P-256 public key for payload encryption
	ClientInfo string    `json:"client_info"` // originating client, informational only
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// SubscriptionStore persists the endpoint registry.
//
// The endpoint URL is the unique key. Register is an upsert: re-registering
// a known endpoint refreshes LastUsedAt and takes over owner and keys
// instead of surfacing a duplicate-key error. Unregister is owner-scoped
// and silently ignores absent or foreign-owned rows, so clients may call it
// redundantly.
type SubscriptionStore interface {
	Register(ctx context.Context, sub Subscription) error

	Unregister(ctx context.Context, userID, endpoint string) error

	// ListByUser returns every subscription owned by the user. An empty
	// slice means the user has no push-capable clients, not an error.
	ListByUser(ctx context.Context, userID string) ([]Subscription, error)

	// Touch bumps LastUsedAt for liveness tracking. Called after every
	// delivery attempt, success or failure.
	Touch(ctx context.Context, endpoint string) error

	// DeleteByEndpoint removes a subscription regardless of owner. Used by
	// the delivery engine when the transport reports the endpoint gone: a
	// dead endpoint must never be retried by any future notification,
	// whichever user triggered the current one.
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}
