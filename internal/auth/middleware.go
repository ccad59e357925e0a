package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/notedhq/noted/internal/db"
	apperrors "github.com/notedhq/noted/internal/errors"
)

type contextKey string

const UserContextKey contextKey = "user"

// Middleware guards a handler behind bearer-token authentication. Refusals
// are written through the auth error constructors, which render the guard
// envelope (status, message, isValid:false). On success the wrapped handler
// sees the full user record (hashed password included) in the request
// context and is responsible for redacting it.
func Middleware(authService *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())
			token := bearerToken(r)

			claims, err := authService.Validate(token)
			if err != nil {
				switch {
				case errors.Is(err, ErrTokenExpired):
					apperrors.WriteError(w, requestID, apperrors.TokenExpired())
				case errors.Is(err, ErrInvalidToken):
					apperrors.WriteError(w, requestID, apperrors.InvalidToken())
				default:
					apperrors.WriteError(w, requestID, apperrors.GuardFailure(err))
				}
				return
			}

			user, err := authService.GetUserByUsername(r.Context(), claims.Username)
			if err != nil {
				if errors.Is(err, db.ErrUserNotFound) {
					apperrors.WriteError(w, requestID, apperrors.UserNotFound())
					return
				}
				apperrors.WriteError(w, requestID, apperrors.GuardFailure(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. A header
// without the Bearer prefix is used verbatim; an absent header yields the
// empty string, which fails validation downstream.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GetUserFromContext returns the authenticated user stored by Middleware.
func GetUserFromContext(ctx context.Context) *db.User {
	user, ok := ctx.Value(UserContextKey).(*db.User)
	if !ok {
		return nil
	}
	return user
}
