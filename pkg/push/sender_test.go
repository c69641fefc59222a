package push_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmate/pushkit/pkg/push"
)

func newTestSender(transport push.Transport, store push.SubscriptionStore, opts ...push.SenderOption) *push.Sender {
	base := []push.SenderOption{push.WithBackoff(push.FixedBackoff{Interval: time.Millisecond})}
	return push.NewSender(transport, store, append(base, opts...)...)
}

func testEnvelope(recipient string) push.Envelope {
	return push.Envelope{
		ID:          "n-1",
		RecipientID: recipient,
		Title:       "Ticket assigned",
		Body:        "Ticket #42 was assigned to you",
		Category:    "ticket.assigned",
		Priority:    push.PriorityMedium,
	}
}

func TestSender_Delivered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(ctx, sub))

	transport := newFakeTransport(alwaysDelivered)
	sender := newTestSender(transport, store)

	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})
	assert.Equal(t, push.OutcomeDelivered, outcome)
	assert.Equal(t, 1, transport.callCount(sub.Endpoint))
}

func TestSender_BoundedRetry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(ctx, sub))

	transport := newFakeTransport(alwaysTransient)
	sender := newTestSender(transport, store)

	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})

	// Exactly the configured cap, then give up.
	assert.Equal(t, push.OutcomeExhaustedRetries, outcome)
	assert.Equal(t, 3, transport.callCount(sub.Endpoint))

	// A transient exhaustion does not mean the endpoint is dead.
	subs, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSender_MaxAttemptsOption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(ctx, sub))

	transport := newFakeTransport(alwaysTransient)
	sender := newTestSender(transport, store, push.WithMaxAttempts(5))

	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})
	assert.Equal(t, push.OutcomeExhaustedRetries, outcome)
	assert.Equal(t, 5, transport.callCount(sub.Endpoint))
}

func TestSender_PermanentFailureDeregisters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(ctx, sub))

	transport := newFakeTransport(alwaysPermanent)
	sender := newTestSender(transport, store)

	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})

	// No retries after a permanent failure; the endpoint is gone for good.
	assert.Equal(t, push.OutcomePermanentlyFailed, outcome)
	assert.Equal(t, 1, transport.callCount(sub.Endpoint))

	subs, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSender_TransientThenSuccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(ctx, sub))

	transport := newFakeTransport(func(_ string, attempt int) push.Result {
		if attempt < 3 {
			return push.Result{Status: push.StatusTransientFailure, StatusCode: 429}
		}
		return push.Result{Status: push.StatusDelivered, StatusCode: 201}
	})
	sender := newTestSender(transport, store)

	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})
	assert.Equal(t, push.OutcomeDelivered, outcome)
	assert.Equal(t, 3, transport.callCount(sub.Endpoint))
}

func TestSender_PanickingTransportIsTransient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(ctx, sub))

	calls := 0
	transport := newFakeTransport(func(string, int) push.Result {
		calls++
		if calls == 1 {
			panic("corrupted response")
		}
		return push.Result{Status: push.StatusDelivered, StatusCode: 201}
	})
	sender := newTestSender(transport, store)

	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})
	assert.Equal(t, push.OutcomeDelivered, outcome)
	assert.Equal(t, 2, calls)
}

func TestSender_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	store := push.NewMemoryStore()
	sub := newSub("user-a", "https://push.example.com/ep-1")
	require.NoError(t, store.Register(context.Background(), sub))

	transport := newFakeTransport(alwaysTransient)
	sender := push.NewSender(transport, store, push.WithBackoff(push.FixedBackoff{Interval: time.Minute}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome := sender.Deliver(ctx, testEnvelope("user-a"), sub, []byte(`{}`), push.TransportHints{})
	assert.Equal(t, push.OutcomeExhaustedRetries, outcome)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, 1, transport.callCount(sub.Endpoint))
}
