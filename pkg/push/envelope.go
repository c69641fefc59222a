package push

import (
	"time"
)

// Priority is the business priority a notification is raised with.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Urgency is the delivery hint passed to the push transport. It influences
// whether the destination device is woken immediately for the payload.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// TransportHints carries the transport-level delivery parameters derived
// from a notification's priority.
type TransportHints struct {
	Urgency Urgency
	TTL     time.Duration
}

// defaultTTL applies to every priority tier. Browser push services hold an
// undelivered payload at most this long before discarding it.
const defaultTTL = 24 * time.Hour

// Classify validates a raw priority value and derives the transport hints
// for it. It is a total function: any value outside the four known
// priorities, including the empty string, normalizes to PriorityMedium.
// Matching is exact and case-sensitive.
//
// Only high and critical notifications request high urgency; waking a
// sleeping device has a battery cost only high-severity events justify.
func Classify(raw Priority) (Priority, TransportHints) {
	switch raw {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
	default:
		raw = PriorityMedium
	}

	hints := TransportHints{Urgency: UrgencyNormal, TTL: defaultTTL}
	if raw == PriorityHigh || raw == PriorityCritical {
		hints.Urgency = UrgencyHigh
	}

	return raw, hints
}

// Envelope is the notification handed to the dispatcher by the business
// layer. Validation of the business fields happens upstream; the engine
// only normalizes Priority.
type Envelope struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"recipient_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Category      string    `json:"category"`
	Priority      Priority  `json:"priority"`
	CorrelationID string    `json:"correlation_id,omitempty"` // e.g. related ticket reference
	CreatedAt     time.Time `json:"created_at"`
}
