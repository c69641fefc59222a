// Package push implements the browser push-notification delivery engine for
// the helpdesk platform.
//
// The engine maps a many-to-many relationship between users and browser
// endpoints: a user may have registered any number of devices, and a single
// notification fans out independently to each of them. Delivery is best
// effort and fire-and-forget; failures never propagate to the business
// action that raised the notification.
//
// # Components
//
//   - SubscriptionStore is the endpoint registry: upsert on register,
//     owner-scoped unregister, liveness touch. Memory, PostgreSQL and Redis
//     implementations are provided.
//   - Classify normalizes a notification's priority and derives the
//     transport hints (urgency and time-to-live) embedded in every send.
//   - Sender drives one payload to one endpoint: on success it touches the
//     registry row, on a permanent failure it deregisters the endpoint, and
//     transient failures are retried with exponential backoff up to a fixed
//     attempt cap.
//   - Dispatcher loads all of a recipient's endpoints and runs one Sender
//     task per endpoint concurrently, aggregating how many ended delivered
//     versus failed.
//
// # Usage
//
//	var vapid push.VAPIDConfig
//	// populate from the environment, e.g. with caarlos0/env
//
//	store := push.NewPgStore(pool)
//	transport := push.NewWebPushTransport(vapid, nil)
//	sender := push.NewSender(transport, store)
//	dispatcher := push.NewDispatcher(store, sender)
//
//	result, err := dispatcher.Dispatch(ctx, push.Envelope{
//	    RecipientID:   assigneeID,
//	    Title:         "Ticket escalated",
//	    Body:          "SLA breach in 15 minutes",
//	    Category:      "ticket.escalated",
//	    Priority:      push.PriorityCritical,
//	    CorrelationID: ticketID,
//	})
//
// The HTTP boundary for subscription management lives in Router; mount it
// under the platform router and serve the VAPID public key to the service
// worker from there.
//
// # Failure model
//
// The transport resolves every send into a closed three-case Result:
// delivered, permanent failure, or transient failure. Only the protocol's
// "endpoint gone" responses count as permanent, because misclassifying a
// recoverable error as permanent would silently cut off a user's
// notifications. A permanent failure deletes the subscription immediately;
// exhausted retries leave it in place for the next notification to try.
package push
