package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// VAPIDConfig holds the Web Push signing credentials and send parameters.
// It is constructed once at process start and passed into the transport;
// the engine never reads credentials from ambient globals, so tests can
// inject throwaway keys.
type VAPIDConfig struct {
	PublicKey   string        `env:"WEBPUSH_VAPID_PUBLIC_KEY,required"`  // PublicKey is the base64 URL-encoded VAPID public key, also served to clients for subscribing.
	PrivateKey  string        `env:"WEBPUSH_VAPID_PRIVATE_KEY,required"` // PrivateKey is the base64 URL-encoded VAPID private key.
	Subscriber  string        `env:"WEBPUSH_SUBSCRIBER,required"`        // Subscriber is the contact address sent to push services, e.g. ops@example.com.
	SendTimeout time.Duration `env:"WEBPUSH_SEND_TIMEOUT" envDefault:"5s"` // SendTimeout bounds a single send so a hung connection cannot stall a delivery task.
}

// WebPushTransport delivers payloads over the Web Push protocol (RFC 8030)
// with VAPID authorization.
type WebPushTransport struct {
	cfg    VAPIDConfig
	client *http.Client
}

// NewWebPushTransport creates a transport using the given credentials.
// A nil client falls back to a default with connection pooling suited for
// many small requests against a handful of push-service hosts.
func NewWebPushTransport(cfg VAPIDConfig, client *http.Client) *WebPushTransport {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &WebPushTransport{cfg: cfg, client: client}
}

// Send encrypts and posts the payload to the subscription's endpoint and
// resolves the response into the closed three-case Result.
//
// Classification is deliberately conservative: only the protocol's
// "endpoint gone" responses (404, 410) are permanent. Everything else,
// including malformed responses and local errors, is transient, because a
// recoverable error misread as permanent would silently cut off a user's
// notifications for good.
func (t *WebPushTransport) Send(ctx context.Context, sub Subscription, payload []byte, hints TransportHints) Result {
	if t.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.SendTimeout)
		defer cancel()
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.AuthKey,
			P256dh: sub.CipherKey,
		},
	}, &webpush.Options{
		HTTPClient:      t.client,
		Subscriber:      t.cfg.Subscriber,
		VAPIDPublicKey:  t.cfg.PublicKey,
		VAPIDPrivateKey: t.cfg.PrivateKey,
		TTL:             int(hints.TTL / time.Second),
		Urgency:         toWebPushUrgency(hints.Urgency),
	})
	if err != nil {
		return Result{Status: StatusTransientFailure, Reason: fmt.Errorf("%w: %w", ErrSendFailed, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Status: StatusDelivered, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return Result{Status: StatusPermanentFailure, StatusCode: resp.StatusCode, Reason: ErrEndpointGone}
	default:
		return Result{Status: StatusTransientFailure, StatusCode: resp.StatusCode, Reason: responseError(resp)}
	}
}

func toWebPushUrgency(u Urgency) webpush.Urgency {
	if u == UrgencyHigh {
		return webpush.UrgencyHigh
	}
	return webpush.UrgencyNormal
}

// responseError captures a short, single-line slice of the response body
// for log context. 64KB read cap and 200-char truncation keep a hostile
// push service from blowing up memory or log lines.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	msg := strings.ReplaceAll(string(body), "\n", " ")
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		return fmt.Errorf("%w: push service returned status %d", ErrSendFailed, resp.StatusCode)
	}
	return fmt.Errorf("%w: push service returned status %d: %s", ErrSendFailed, resp.StatusCode, msg)
}
