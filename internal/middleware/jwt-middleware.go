package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/utils"
)

type claimsKey string

const UserClaimsKey claimsKey = "userClaims"

// JWTAuth verifies the bearer token and stores the caller's user id in the
// request context under UserClaimsKey.
func JWTAuth(publicKey *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAppError(w, app_error.Unauthenticated("Missing Authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeAppError(w, app_error.Unauthenticated("Invalid Authorization header format"))
				return
			}

			claims, err := utils.ParseAndVerifySign(strings.TrimSpace(parts[1]), publicKey)
			if err != nil {
				log.Debug().Err(err).Msg("jwt verify failed")
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAppError(w, app_error.Unauthenticated("Token expired"))
					return
				}
				writeAppError(w, app_error.Unauthenticated("Invalid token"))
				return
			}

			userID := claims.Identity()
			if userID == "" {
				writeAppError(w, app_error.Unauthenticated("Token has no subject"))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the id stored by JWTAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserClaimsKey).(string)
	return userID, ok && userID != ""
}

func writeAppError(w http.ResponseWriter, appErr *app_error.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_ = appErr.JSON(w)
}
