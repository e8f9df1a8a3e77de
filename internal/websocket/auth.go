package websocket

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/entity"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/utils"
)

// UserLookup loads a user's public profile.
type UserLookup interface {
	FindProfileByID(ctx context.Context, userID string) (*entity.UserProfile, *app_error.AppError)
}

// Authenticator turns a handshake request into an identity.
type Authenticator interface {
	Resolve(r *http.Request) (Identity, *app_error.AppError)
}

type IdentityResolver struct {
	PublicKey *rsa.PublicKey
	Users     UserLookup
}

func NewIdentityResolver(publicKey *rsa.PublicKey, users UserLookup) *IdentityResolver {
	return &IdentityResolver{
		PublicKey: publicKey,
		Users:     users,
	}
}

// Resolve verifies the bearer token of r and loads its user. The returned
// identity is a snapshot; it is not re-checked while the connection lives.
func (a *IdentityResolver) Resolve(r *http.Request) (Identity, *app_error.AppError) {
	token := getTokenFromRequest(r)
	if token == "" {
		return Identity{}, app_error.Unauthenticated("missing access token")
	}

	claims, err := utils.ParseAndVerifySign(token, a.PublicKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			// the handshake cannot set cookies, so refresh happens over HTTP
			return Identity{}, app_error.Unauthenticated("token expired, please refresh and reconnect")
		}
		return Identity{}, app_error.Unauthenticated("invalid token")
	}

	userID := claims.Identity()
	profile, appErr := a.Users.FindProfileByID(r.Context(), userID)
	if appErr != nil {
		if appErr.Code == http.StatusNotFound {
			return Identity{}, app_error.Unauthenticated("user not found")
		}
		log.Error().Str("userID", userID).Str("reason", appErr.Message).Msg("ws: identity lookup failed")
		return Identity{}, appErr
	}

	name := profile.Name
	if name == "" {
		name = claims.Name
	}
	return Identity{UserID: profile.ID, Name: name}, nil
}

func getTokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	cookie, err := r.Cookie("access_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
