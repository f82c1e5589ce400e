package middleware

import (
	"context"
	"net/http"

	"github.com/tair/freshsave/pkg/auth"
	"github.com/tair/freshsave/pkg/logger"
	"github.com/tair/freshsave/pkg/response"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFromContext returns the authenticated identity, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// WithClaims stores claims in the context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Authenticator guards handlers with the shared token manager.
type Authenticator struct {
	tokens *auth.TokenManager
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			logger.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Missing or malformed authorization header")
			response.Error(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := a.tokens.ValidateToken(token)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid token")
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// StoreAdmin requires a store administrator token.
func (a *Authenticator) StoreAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Required(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if !claims.IsStoreAdmin() {
			logger.Logger.Warn().
				Str("user_id", claims.UserID).
				Str("role", claims.Role).
				Msg("Store admin access denied")
			response.Error(w, http.StatusForbidden, "Store admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Optional attaches claims when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token, err := auth.ParseBearer(r.Header.Get("Authorization")); err == nil {
			if claims, err := a.tokens.ValidateToken(token); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	}
}
