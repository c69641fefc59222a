package push_test

import (
	"context"
	"sync"

	"github.com/deskmate/pushkit/pkg/push"
)

// fakeTransport scripts per-endpoint outcomes and records calls. The script
// receives the 1-based attempt number for the endpoint.
type fakeTransport struct {
	mu        sync.Mutex
	calls     map[string]int
	lastHints push.TransportHints
	script    func(endpoint string, attempt int) push.Result
}

func newFakeTransport(script func(endpoint string, attempt int) push.Result) *fakeTransport {
	return &fakeTransport{
		calls:  make(map[string]int),
		script: script,
	}
}

func (t *fakeTransport) Send(_ context.Context, sub push.Subscription, _ []byte, hints push.TransportHints) push.Result {
	t.mu.Lock()
	t.calls[sub.Endpoint]++
	attempt := t.calls[sub.Endpoint]
	t.lastHints = hints
	t.mu.Unlock()

	return t.script(sub.Endpoint, attempt)
}

func (t *fakeTransport) callCount(endpoint string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[endpoint]
}

func (t *fakeTransport) totalCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, n := range t.calls {
		total += n
	}
	return total
}

func (t *fakeTransport) hints() push.TransportHints {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastHints
}

func alwaysDelivered(string, int) push.Result {
	return push.Result{Status: push.StatusDelivered, StatusCode: 201}
}

func alwaysPermanent(string, int) push.Result {
	return push.Result{Status: push.StatusPermanentFailure, StatusCode: 410, Reason: push.ErrEndpointGone}
}

func alwaysTransient(string, int) push.Result {
	return push.Result{Status: push.StatusTransientFailure, StatusCode: 503, Reason: push.ErrSendFailed}
}
