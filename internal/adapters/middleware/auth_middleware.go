package middleware

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

const denylistPrefix = "token_blacklist:"

// TokenDenylist is the part of a Redis client used to check revoked tokens.
type TokenDenylist interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	denylist  TokenDenylist
	logger    *slog.Logger
}

// NewAuthMiddleware verifies RS256 tokens against publicKey. A nil denylist
// disables revocation checks.
func NewAuthMiddleware(publicKey *rsa.PublicKey, denylist TokenDenylist, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		publicKey: publicKey,
		denylist:  denylist,
		logger:    logger,
	}
}

type contextKey string

const authKey contextKey = "auth"

// AuthFromContext returns the caller identity stored by RequireRole.
func AuthFromContext(ctx context.Context) (domain.AuthContext, bool) {
	auth, ok := ctx.Value(authKey).(domain.AuthContext)
	return auth, ok
}

// WithAuth stores auth on ctx.
func WithAuth(ctx context.Context, auth domain.AuthContext) context.Context {
	return context.WithValue(ctx, authKey, auth)
}

// DenylistKey is the Redis key under which a revoked token is stored.
func DenylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistPrefix + hex.EncodeToString(sum[:])
}

// RequireRole authenticates the bearer token and admits callers holding one
// of roles. No roles admits any authenticated caller.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return m.publicKey, nil
			})
			if err != nil || !token.Valid {
				m.logger.InfoContext(ctx, "token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			userID, ok := parseSubject(claims["sub"])
			if !ok {
				m.logger.InfoContext(ctx, "invalid sub claim", "sub", claims["sub"])
				writeError(w, http.StatusUnauthorized, "invalid token: missing user ID")
				return
			}

			role, _ := claims["role"].(string)
			if !domain.Role(role).Valid() {
				m.logger.InfoContext(ctx, "invalid role claim", "role", claims["role"])
				writeError(w, http.StatusUnauthorized, "invalid token: missing role")
				return
			}

			if m.denylist != nil {
				n, err := m.denylist.Exists(ctx, DenylistKey(tokenString)).Result()
				if err != nil {
					m.logger.ErrorContext(ctx, "token denylist lookup failed", "error", err)
					writeError(w, http.StatusServiceUnavailable, "authentication temporarily unavailable")
					return
				}
				if n > 0 {
					writeError(w, http.StatusUnauthorized, "token has been revoked")
					return
				}
			}

			auth := domain.AuthContext{UserID: userID, Role: domain.Role(role)}
			if len(roles) > 0 {
				if err := auth.Require(roles...); err != nil {
					m.logger.InfoContext(ctx, "role mismatch", "required", roles, "role", role)
					writeError(w, http.StatusForbidden, "forbidden")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(ctx, auth)))
		})
	}
}

// parseSubject accepts the user id as a JSON number or a decimal string.
func parseSubject(v any) (int64, bool) {
	switch sub := v.(type) {
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		return id, err == nil && id > 0
	case float64:
		id := int64(sub)
		return id, float64(id) == sub && id > 0
	}
	return 0, false
}
