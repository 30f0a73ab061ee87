package auth

import (
	"fmt"
	"time"

	"github.com/giannis84/character-favourites/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 24 * time.Hour

// IssueToken creates a token for user that JWTMiddleware configured with the
// same cfg will accept. It returns the token and its expiry.
func IssueToken(cfg AuthConfig, user *models.User, now time.Time) (string, time.Time, error) {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  user.Email,
		"name": user.Name,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"jti":  uuid.NewString(),
	}

	if cfg.Secret == "" {
		if !cfg.AllowUnsignedTokens {
			return "", time.Time{}, errAuthNotConfigured
		}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("creating unsigned token: %w", err)
		}
		return signed, expiresAt, nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}
