package push

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskmate/pushkit/pkg/logger"
)

// Outcome is the terminal state of one (notification, endpoint) delivery.
// Outcomes are ephemeral; only the dispatcher's aggregate counts leave the
// engine.
type Outcome int

const (
	// OutcomeDelivered means the push service accepted the payload.
	OutcomeDelivered Outcome = iota
	// OutcomePermanentlyFailed means the endpoint is dead and has been
	// removed from the registry.
	OutcomePermanentlyFailed
	// OutcomeExhaustedRetries means every attempt failed transiently. The
	// subscription stays registered; the next notification will try again.
	OutcomeExhaustedRetries
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomePermanentlyFailed:
		return "permanently_failed"
	case OutcomeExhaustedRetries:
		return "exhausted_retries"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Sender drives one payload to one endpoint through a bounded retry loop.
type Sender struct {
	transport   Transport
	store       SubscriptionStore
	maxAttempts int
	backoff     BackoffStrategy
	logger      *slog.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithMaxAttempts sets the total number of send attempts per endpoint,
// including the first one. Values below 1 are ignored.
func WithMaxAttempts(n int) SenderOption {
	return func(s *Sender) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay strategy between retries.
func WithBackoff(strategy BackoffStrategy) SenderOption {
	return func(s *Sender) {
		if strategy != nil {
			s.backoff = strategy
		}
	}
}

// WithSenderLogger sets the logger for the Sender.
func WithSenderLogger(log *slog.Logger) SenderOption {
	return func(s *Sender) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewSender creates a delivery engine over the given transport and
// registry. Defaults: 3 attempts, exponential backoff.
func NewSender(transport Transport, store SubscriptionStore, opts ...SenderOption) *Sender {
	s := &Sender{
		transport:   transport,
		store:       store,
		maxAttempts: 3,
		backoff:     DefaultBackoffStrategy(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver runs the per-endpoint state machine to a terminal outcome.
//
// A permanent failure deregisters the endpoint immediately, whoever
// triggered the notification: a dead endpoint must never be retried by any
// future dispatch. Transient failures are retried up to the attempt cap
// with backoff; the sleep blocks only this delivery task. Exhausting the
// cap leaves the subscription registered, because a transient failure says
// nothing about whether the endpoint is alive.
func (s *Sender) Deliver(ctx context.Context, env Envelope, sub Subscription, payload []byte, hints TransportHints) Outcome {
	var lastReason error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.backoff.NextInterval(attempt - 1)
			select {
			case <-ctx.Done():
				s.logExhausted(ctx, env, sub, attempt-1, ctx.Err())
				return OutcomeExhaustedRetries
			case <-time.After(delay):
			}
		}

		res := s.attempt(ctx, sub, payload, hints)

		switch res.Status {
		case StatusDelivered:
			s.touch(ctx, sub.Endpoint)
			return OutcomeDelivered

		case StatusPermanentFailure:
			// Expected end-of-life signal for a browser endpoint, not an
			// operational error.
			if err := s.store.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to remove dead push endpoint",
					logger.Endpoint(sub.Endpoint),
					logger.Error(err),
				)
			}
			s.logger.LogAttrs(ctx, slog.LevelInfo, "push endpoint gone, deregistered",
				logger.NotificationID(env.ID),
				logger.UserID(sub.UserID),
				logger.Endpoint(sub.Endpoint),
				logger.StatusCode(res.StatusCode),
			)
			return OutcomePermanentlyFailed

		default:
			s.touch(ctx, sub.Endpoint)
			lastReason = res.Reason
		}
	}

	s.logExhausted(ctx, env, sub, s.maxAttempts, lastReason)
	return OutcomeExhaustedRetries
}

// attempt performs a single send, converting a panicking transport into a
// transient failure so one misbehaving implementation cannot take down the
// dispatch or poison the endpoint's registration.
func (s *Sender) attempt(ctx context.Context, sub Subscription, payload []byte, hints TransportHints) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Status: StatusTransientFailure,
				Reason: fmt.Errorf("%w: transport panic: %v", ErrSendFailed, r),
			}
		}
	}()
	return s.transport.Send(ctx, sub, payload, hints)
}

func (s *Sender) touch(ctx context.Context, endpoint string) {
	if err := s.store.Touch(ctx, endpoint); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "failed to touch push endpoint",
			logger.Endpoint(endpoint),
			logger.Error(err),
		)
	}
}

func (s *Sender) logExhausted(ctx context.Context, env Envelope, sub Subscription, attempts int, reason error) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "push delivery exhausted retries",
		logger.NotificationID(env.ID),
		logger.UserID(sub.UserID),
		logger.Endpoint(sub.Endpoint),
		logger.Attempts(attempts),
		logger.Error(reason),
	)
}
