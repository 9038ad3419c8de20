package middleware

import (
	"context"
	"net/http"
	"unicode"

	"github.com/mcoot/tarot-go2/internal/api/apierr"
	"github.com/mcoot/tarot-go2/internal/model"
)

// PlayerIDHeader carries the caller's opaque player identity
const PlayerIDHeader = "X-Player-ID"

// PlayerIDQuery is accepted in place of the header for EventSource and WebSocket clients,
// which cannot set headers
const PlayerIDQuery = "player"

// MaxPlayerIDLength bounds player identities
const MaxPlayerIDLength = 64

type contextKey string

const playerContextKey contextKey = "player"

// Identity reads the caller's player ID. Requests without one are observers.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(PlayerIDHeader)
			if id == "" {
				id = r.URL.Query().Get(PlayerIDQuery)
			}
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !validPlayerID(id) {
				apierr.WriteError(w, apierr.NewInvalidRequestError("invalid player ID"))
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, model.PlayerID(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validPlayerID(id string) bool {
	if len(id) > MaxPlayerIDLength {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// GetPlayerID returns the caller's player ID, or "" for observers
func GetPlayerID(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerContextKey).(model.PlayerID)
	return id
}

// RequirePlayerID returns the caller's player ID or an error for observers
func RequirePlayerID(ctx context.Context) (model.PlayerID, error) {
	id := GetPlayerID(ctx)
	if id == "" {
		return "", apierr.NewPlayerRequiredError()
	}
	return id, nil
}
