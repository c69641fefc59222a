package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Endpoint records a push endpoint URL under the key "endpoint".
func Endpoint(url string) slog.Attr {
	return slog.String("endpoint", url)
}

// NotificationID records the notification identifier under the key
// "notification_id". If id is nil, it returns an empty Attr.
func NotificationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("notification_id", id)
}

// TicketID records the related ticket reference under the key "ticket_id".
// If id is nil, it returns an empty Attr.
func TicketID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("ticket_id", id)
}

// Priority records a notification priority under the key "priority".
func Priority(p string) slog.Attr {
	return slog.String("priority", p)
}

// Attempts records how many delivery attempts were made under the key
// "attempts".
func Attempts(n int) slog.Attr {
	return slog.Int("attempts", n)
}

// StatusCode records a transport status code under the key "status_code".
// A zero code (no response received) yields an empty Attr.
func StatusCode(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status_code", code)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}
