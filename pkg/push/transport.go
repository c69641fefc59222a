package push

import (
	"context"
	"fmt"
)

// Status is the classified outcome of a single transport send. It is a
// closed set: everything downstream of the transport switches over these
// three cases and never inspects raw protocol status codes.
type Status int

const (
	// StatusDelivered means the push service accepted the payload.
	StatusDelivered Status = iota
	// StatusPermanentFailure means the endpoint no longer exists or is no
	// longer authorized. It will never succeed again and must be dropped
	// from the registry.
	StatusPermanentFailure
	// StatusTransientFailure covers every other failure: network errors,
	// rate limiting, temporary server errors. Assumed recoverable on retry.
	StatusTransientFailure
)

func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusPermanentFailure:
		return "permanent_failure"
	case StatusTransientFailure:
		return "transient_failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the resolved outcome of one send attempt. Reason and StatusCode
// are informational, kept for logging only.
type Result struct {
	Status     Status
	StatusCode int
	Reason     error
}

// Transport delivers one payload to one endpoint. Implementations resolve
// the raw protocol response into a Result exactly once, at the call site;
// misclassification toward permanent is the dangerous direction (it cuts a
// user off irreversibly), so anything ambiguous must be reported transient.
type Transport interface {
	Send(ctx context.Context, sub Subscription, payload []byte, hints TransportHints) Result
}
