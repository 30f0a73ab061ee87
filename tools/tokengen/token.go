package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/giannis84/character-favourites/internal/auth"
	"github.com/giannis84/character-favourites/internal/models"
)

func main() {
	email := flag.String("email", "", "user email to embed as the token subject (required)")
	name := flag.String("name", "", "display name claim")
	role := flag.String("role", "user", "role claim")
	secret := flag.String("secret", "", "HMAC signing secret (or set JWT_SECRET env var)")
	expiry := flag.Duration("exp", 24*time.Hour, "token expiry duration (e.g. 1h, 72h)")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: -email flag is required")
		flag.Usage()
		os.Exit(1)
	}

	signingSecret := *secret
	if signingSecret == "" {
		signingSecret = os.Getenv("JWT_SECRET")
	}

	cfg := auth.AuthConfig{
		Secret:              signingSecret,
		AllowUnsignedTokens: signingSecret == "",
		TokenTTL:            *expiry,
	}
	user := &models.User{Email: auth.NormalizeEmail(*email), Name: *name, Role: *role}

	signed, expiresAt, err := auth.IssueToken(cfg, user, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating token: %v\n", err)
		os.Exit(1)
	}
	if signingSecret == "" {
		fmt.Fprintln(os.Stderr, "Warning: token is unsigned (alg=none); do not use in production")
	}

	fmt.Fprintf(os.Stderr, "Token for %s (expires %s):\n", user.Email, expiresAt.Format(time.RFC3339))
	fmt.Println(signed)
}
