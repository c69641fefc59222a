package push_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmate/pushkit/pkg/push"
)

// listFailingStore simulates a registry whose read path is down.
type listFailingStore struct {
	push.SubscriptionStore
	err error
}

func (s *listFailingStore) ListByUser(context.Context, string) ([]push.Subscription, error) {
	return nil, s.err
}

func TestDispatcher_NoSubscriptions(t *testing.T) {
	t.Parallel()

	store := push.NewMemoryStore()
	transport := newFakeTransport(alwaysDelivered)
	dispatcher := push.NewDispatcher(store, newTestSender(transport, store))

	result, err := dispatcher.Dispatch(context.Background(), testEnvelope("user-without-devices"))
	require.NoError(t, err)
	assert.Equal(t, push.DispatchResult{Delivered: 0, Failed: 0}, result)
	assert.Zero(t, transport.totalCalls())
}

func TestDispatcher_FanOutIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	for _, ep := range []string{"ep-1", "ep-2", "ep-3"} {
		require.NoError(t, store.Register(ctx, newSub("user-a", "https://push.example.com/"+ep)))
	}

	// Endpoint 2 is dead; 1 and 3 are healthy.
	transport := newFakeTransport(func(endpoint string, _ int) push.Result {
		if strings.HasSuffix(endpoint, "ep-2") {
			return push.Result{Status: push.StatusPermanentFailure, StatusCode: 410}
		}
		return push.Result{Status: push.StatusDelivered, StatusCode: 201}
	})
	dispatcher := push.NewDispatcher(store, newTestSender(transport, store))

	result, err := dispatcher.Dispatch(ctx, testEnvelope("user-a"))
	require.NoError(t, err)
	assert.Equal(t, push.DispatchResult{Delivered: 2, Failed: 1}, result)

	// Only the dead endpoint was removed.
	subs, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, sub := range subs {
		assert.NotEqual(t, "https://push.example.com/ep-2", sub.Endpoint)
	}
}

func TestDispatcher_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	require.NoError(t, store.Register(ctx, newSub("user-u", "https://push.example.com/a")))
	require.NoError(t, store.Register(ctx, newSub("user-u", "https://push.example.com/b")))
	require.NoError(t, store.Register(ctx, newSub("user-u", "https://push.example.com/c")))

	// A always succeeds, B is permanently gone, C fails twice then succeeds.
	transport := newFakeTransport(func(endpoint string, attempt int) push.Result {
		switch {
		case strings.HasSuffix(endpoint, "/b"):
			return push.Result{Status: push.StatusPermanentFailure, StatusCode: 410}
		case strings.HasSuffix(endpoint, "/c") && attempt <= 2:
			return push.Result{Status: push.StatusTransientFailure, StatusCode: 503}
		default:
			return push.Result{Status: push.StatusDelivered, StatusCode: 201}
		}
	})
	dispatcher := push.NewDispatcher(store, newTestSender(transport, store))

	env := testEnvelope("user-u")
	env.Priority = push.PriorityCritical

	result, err := dispatcher.Dispatch(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, push.DispatchResult{Delivered: 2, Failed: 1}, result)

	assert.Equal(t, 1, transport.callCount("https://push.example.com/a"))
	assert.Equal(t, 1, transport.callCount("https://push.example.com/b"))
	assert.Equal(t, 3, transport.callCount("https://push.example.com/c"))

	subs, err := store.ListByUser(ctx, "user-u")
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// Critical priority reached the transport as a high-urgency hint.
	hints := transport.hints()
	assert.Equal(t, push.UrgencyHigh, hints.Urgency)
	assert.Equal(t, 24*time.Hour, hints.TTL)
}

func TestDispatcher_NormalizesPriority(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	require.NoError(t, store.Register(ctx, newSub("user-a", "https://push.example.com/ep-1")))

	transport := newFakeTransport(alwaysDelivered)
	dispatcher := push.NewDispatcher(store, newTestSender(transport, store))

	env := testEnvelope("user-a")
	env.Priority = "SEV-1"

	result, err := dispatcher.Dispatch(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, push.UrgencyNormal, transport.hints().Urgency)
}

func TestDispatcher_StoreReadFailure(t *testing.T) {
	t.Parallel()

	store := &listFailingStore{err: push.ErrStoreUnavailable}
	transport := newFakeTransport(alwaysDelivered)
	dispatcher := push.NewDispatcher(store, push.NewSender(transport, push.NewMemoryStore()))

	_, err := dispatcher.Dispatch(context.Background(), testEnvelope("user-a"))
	assert.ErrorIs(t, err, push.ErrStoreUnavailable)
	assert.Zero(t, transport.totalCalls())
}

func TestDispatcher_ConcurrentDeliveries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	const endpoints = 20
	for i := range endpoints {
		require.NoError(t, store.Register(ctx, newSub("user-a", "https://push.example.com/ep-"+string(rune('a'+i)))))
	}

	// Every endpoint blocks until all of them have started, proving the
	// deliveries run concurrently rather than one after another.
	started := make(chan struct{}, endpoints)
	release := make(chan struct{})
	transport := newFakeTransport(func(string, int) push.Result {
		started <- struct{}{}
		<-release
		return push.Result{Status: push.StatusDelivered, StatusCode: 201}
	})
	dispatcher := push.NewDispatcher(store, newTestSender(transport, store))

	done := make(chan push.DispatchResult, 1)
	go func() {
		result, _ := dispatcher.Dispatch(ctx, testEnvelope("user-a"))
		done <- result
	}()

	for range endpoints {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("deliveries did not start concurrently")
		}
	}
	close(release)

	result := <-done
	assert.Equal(t, endpoints, result.Delivered)
}
