package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rjosephs/daybook-backend/internal/apperr"
	"github.com/rjosephs/daybook-backend/internal/models"
	"github.com/rjosephs/daybook-backend/internal/services"
)

// UserFinder resolves an authenticated user id to its account record.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type contextKey string

const userContextKey contextKey = "auth_user"

// Auth verifies the Authorization bearer token, resolves the subject to a
// user (password hash projected out), and attaches it to the request context.
// An unknown subject is rejected rather than passed through.
func Auth(tokens *services.TokenIssuer, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, "authorization token required")
				return
			}

			tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			sub, err := tokens.Verify(tokenStr)
			if err != nil {
				log.Printf("auth: token rejected: %v", err)
				writeAuthError(w, "not authorized")
				return
			}

			userID, err := primitive.ObjectIDFromHex(sub)
			if err != nil {
				log.Printf("auth: malformed subject in token: %v", err)
				writeAuthError(w, "not authorized")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				var notFound *apperr.NotFoundError
				if errors.As(err, &notFound) {
					writeAuthError(w, "user not found")
					return
				}
				log.Printf("auth: user lookup failed: %v", err)
				writeAuthError(w, "not authorized")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user attached by Auth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// WithUser attaches a user to the context. Exported for handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
