package push

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/deskmate/pushkit/pkg/async"
	"github.com/deskmate/pushkit/pkg/logger"
)

// DispatchResult is the aggregate reported back to the caller: how many of
// the recipient's endpoints ended in Delivered versus any failed terminal
// state.
type DispatchResult struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Dispatcher fans a single notification out to every endpoint its
// recipient owns. It performs no retries and no failure classification
// itself; both belong to the Sender.
type Dispatcher struct {
	store  SubscriptionStore
	sender *Sender
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDispatcher creates a fan-out dispatcher over the given registry and
// delivery engine.
func NewDispatcher(store SubscriptionStore, sender *Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		sender: sender,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// pushPayload is the JSON document handed to the transport for encryption.
type pushPayload struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Category      string   `json:"category"`
	Priority      Priority `json:"priority"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

// Dispatch delivers the notification to every endpoint registered for its
// recipient and returns the aggregate outcome.
//
// A recipient with no subscriptions yields {0, 0} immediately; that user
// simply never opened the app on a push-capable client. Otherwise each
// endpoint gets its own concurrent delivery task, and Dispatch waits for
// all of them to reach a terminal state. One endpoint's failure, retry
// stall, or panic never short-circuits the others.
//
// The only error Dispatch ever returns is a registry read failure.
// Delivery-path failures of any kind surface solely through the Failed
// count; a missed best-effort notification must never fail the business
// action that produced it.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (DispatchResult, error) {
	if env.ID == "" {
		env.ID = uuid.New().String()
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now()
	}

	var hints TransportHints
	env.Priority, hints = Classify(env.Priority)

	subs, err := d.store.ListByUser(ctx, env.RecipientID)
	if err != nil {
		return DispatchResult{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(subs) == 0 {
		return DispatchResult{}, nil
	}

	payload, err := json.Marshal(pushPayload{
		Title:         env.Title,
		Body:          env.Body,
		Category:      env.Category,
		Priority:      env.Priority,
		CorrelationID: env.CorrelationID,
	})
	if err != nil {
		return DispatchResult{}, err
	}

	futures := make([]*async.Future[Outcome], len(subs))
	for i, sub := range subs {
		futures[i] = async.Async(ctx, sub, func(ctx context.Context, sub Subscription) (Outcome, error) {
			return d.sender.Deliver(ctx, env, sub, payload, hints), nil
		})
	}

	var result DispatchResult
	for _, f := range futures {
		outcome, err := f.Await()
		if err != nil || outcome != OutcomeDelivered {
			result.Failed++
			continue
		}
		result.Delivered++
	}

	d.logger.LogAttrs(ctx, slog.LevelDebug, "push dispatch complete",
		logger.NotificationID(env.ID),
		logger.UserID(env.RecipientID),
		logger.Priority(string(env.Priority)),
		slog.Int("delivered", result.Delivered),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}
