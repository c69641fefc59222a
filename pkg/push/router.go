package push

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// subscribeRequest is the wire shape produced by the service worker
// registration script; keys mirrors the PushSubscription.toJSON() layout.
type subscribeRequest struct {
	UserID     string `json:"user_id"`
	Endpoint   string `json:"endpoint"`
	ClientInfo string `json:"client_info"`
	Keys       struct {
		Auth   string `json:"auth"`
		P256dh string `json:"p256dh"`
	} `json:"keys"`
}

type unsubscribeRequest struct {
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
}

// Router mounts the thin HTTP boundary in front of the engine. All input
// validation happens here; the registry and dispatcher assume
// already-validated arguments.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/push", push.Router(store, dispatcher, cfg.PublicKey))
func Router(store SubscriptionStore, dispatcher *Dispatcher, vapidPublicKey string) chi.Router {
	r := chi.NewRouter()

	r.Post("/subscriptions", handleSubscribe(store))
	r.Delete("/subscriptions", handleUnsubscribe(store))
	r.Post("/dispatch", handleDispatch(dispatcher))
	r.Get("/vapid-public-key", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"public_key": vapidPublicKey})
	})

	return r
}

func handleSubscribe(store SubscriptionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, ErrEmptyUserID.Error())
			return
		}
		if req.Endpoint == "" {
			writeError(w, http.StatusBadRequest, ErrEmptyEndpoint.Error())
			return
		}
		if req.Keys.Auth == "" || req.Keys.P256dh == "" {
			writeError(w, http.StatusBadRequest, ErrEmptyKeys.Error())
			return
		}

		err := store.Register(r.Context(), Subscription{
			Endpoint:   req.Endpoint,
			UserID:     req.UserID,
			AuthKey:    req.Keys.Auth,
			CipherKey:  req.Keys.P256dh,
			ClientInfo: req.ClientInfo,
		})
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "subscription store unavailable")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUnsubscribe(store SubscriptionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req unsubscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.UserID == "" || req.Endpoint == "" {
			writeError(w, http.StatusBadRequest, "user_id and endpoint are required")
			return
		}

		// Unsubscribe is idempotent; a repeated or foreign-owned delete
		// still answers 204.
		if err := store.Unregister(r.Context(), req.UserID, req.Endpoint); err != nil {
			writeError(w, http.StatusServiceUnavailable, "subscription store unavailable")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDispatch(dispatcher *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if env.RecipientID == "" {
			writeError(w, http.StatusBadRequest, "recipient_id is required")
			return
		}

		result, err := dispatcher.Dispatch(r.Context(), env)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "subscription store unavailable")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
