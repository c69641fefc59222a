// Package logger provides a context-aware wrapper around log/slog: a single
// factory (New) configured with functional options, typed attribute
// constructors for consistent key naming across the delivery engine, and
// transparent injection of context values into every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("pushkit"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "push endpoint gone, deregistered",
//	    logger.UserID(userID),
//	    logger.Endpoint(endpointURL),
//	)
//
// Attribute helpers in attr.go cover the engine's log vocabulary: user,
// endpoint, notification, ticket, priority, attempts, status code. They
// return empty attrs for nil values, which slog silently drops.
package logger
