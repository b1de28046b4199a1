package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/therapease/therapease-backend/internal/models"
	"github.com/therapease/therapease-backend/internal/services"
)

type contextKey string

const callerKey contextKey = "caller"

// RequireAuth resolves the caller identity from the Authorization header once
// per request and stores it in the request context. Handlers read it back
// with CallerFrom.
func RequireAuth(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := tokens.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				status := http.StatusUnauthorized
				switch {
				case errors.Is(err, services.ErrMissingToken),
					errors.Is(err, services.ErrInvalidToken),
					errors.Is(err, services.ErrUnknownUser),
					errors.Is(err, services.ErrRevokedToken),
					errors.Is(err, services.ErrInactiveSession):
					// auth taxonomy: all map to 401
				default:
					status = http.StatusInternalServerError
					err = errors.New("authentication failed")
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				fmt.Fprintf(w, `{"success":false,"msg":%q}`, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFrom returns the authenticated user stored by RequireAuth.
func CallerFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(callerKey).(*models.User)
	return user, ok
}
