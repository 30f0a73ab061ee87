package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userIDKey contextKey = "userID"

var errAuthNotConfigured = errors.New("no jwt secret configured and unsigned tokens are disabled")

// AuthConfig holds the JWT settings shared by token issuing and validation.
type AuthConfig struct {
	// Secret is the HS256 signing key. When empty, only unsigned tokens
	// (alg=none) are accepted, and only if AllowUnsignedTokens is true.
	Secret              string
	AllowUnsignedTokens bool
	// TokenTTL is the lifetime of issued tokens (default 24h).
	TokenTTL time.Duration
}

// JWTMiddleware returns HTTP middleware that validates a JWT from the
// Authorization header and places the "sub" claim (the user's email) into
// the request context.
func JWTMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				writeAuthError(w, "missing or malformed Authorization header")
				return
			}

			claims, err := parseToken(tokenString, cfg)
			if err != nil {
				writeAuthError(w, err.Error())
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				writeAuthError(w, "token missing sub claim")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the user ID stored by JWTMiddleware.
// Returns an empty string if no user ID is present.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// ContextWithUserID attaches a user ID the same way JWTMiddleware does.
// Useful for tests and for handlers invoked outside the middleware chain.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func writeAuthError(w http.ResponseWriter, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write(body)
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// parseToken validates the JWT string. With a secret HS256 is required;
// without one, alg=none is accepted only when explicitly allowed.
func parseToken(tokenString string, cfg AuthConfig) (jwt.MapClaims, error) {
	if cfg.Secret == "" {
		if !cfg.AllowUnsignedTokens {
			return nil, errAuthNotConfigured
		}

		// Development mode: accept unsigned tokens only.
		token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			return nil, fmt.Errorf("invalid token: %w", err)
		}
		if token.Method.Alg() != jwt.SigningMethodNone.Alg() {
			return nil, fmt.Errorf("no jwt secret configured; only unsigned tokens (alg=none) are accepted")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, fmt.Errorf("invalid token claims")
		}
		// ParseUnverified skips claim validation, so exp/nbf are checked here.
		if err := jwt.NewValidator().Validate(claims); err != nil {
			return nil, fmt.Errorf("invalid token: %w", err)
		}
		return claims, nil
	}

	// Production mode: require HS256.
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
