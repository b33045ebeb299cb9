package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// ClientCookieName identifies a browser across requests so its notices,
	// menus and cached lists stay separate from other browsers.
	ClientCookieName = "busdesk_client"
	// OwnerCookieName remembers the last owner selected with ?owner=.
	OwnerCookieName = "busdesk_owner"
	// ClientCookieDuration is how long a browser keeps its identity.
	ClientCookieDuration = 30 * 24 * time.Hour
)

type contextKey string

const clientContextKey contextKey = "client"

// ClientFromContext returns the client id set by ClientMiddleware.
func ClientFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientContextKey).(string)
	return id
}

// ClientMiddleware assigns each browser a random client id cookie and adds
// it to the request context.
func (ui *UI) ClientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(ClientCookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   ui.secure,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(ClientCookieDuration),
			})
		}
		ctx := context.WithValue(r.Context(), clientContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerID resolves the owner scope: the owner query parameter, then the
// remembered cookie, then the configured default.
func (ui *UI) ownerID(w http.ResponseWriter, r *http.Request) string {
	if o := r.URL.Query().Get("owner"); o != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     OwnerCookieName,
			Value:    o,
			Path:     "/",
			HttpOnly: true,
			Secure:   ui.secure,
			SameSite: http.SameSiteLaxMode,
		})
		return o
	}
	if c, err := r.Cookie(OwnerCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ui.defaultOwner
}
