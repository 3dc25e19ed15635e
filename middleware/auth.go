package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"taskdeck/models"
)

// UserFinder resolves a token subject to a live user record.
type UserFinder interface {
	ByUsername(ctx context.Context, username string) (models.User, error)
}

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type contextKey string

const userKey contextKey = "currentUser"

// CurrentUser returns the user bound to the request context by RequireUser.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// WithUser binds a resolved user to the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// RequireUser rejects requests without a valid bearer token. A verified
// token whose subject no longer exists in the store is rejected too, so
// tokens for deleted accounts stop working. On success the resolved user is
// bound to the request context.
func RequireUser(tokens TokenVerifier, users UserFinder, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			subject, err := tokens.Verify(tokenString)
			if err != nil {
				log.WithField("request_id", GetRequestID(r.Context())).
					Warn("token verification failed")
				unauthorized(w)
				return
			}

			user, err := users.ByUsername(r.Context(), subject)
			if err != nil {
				log.WithFields(logrus.Fields{
					"request_id": GetRequestID(r.Context()),
					"subject":    subject,
				}).Warn("token subject not found")
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"detail":"Could not validate credentials"}`))
}
