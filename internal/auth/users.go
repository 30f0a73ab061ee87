package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/giannis84/character-favourites/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("incorrect email or password")

// userRecord is the on-disk shape of a users.json entry.
type userRecord struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Avatar       string `json:"avatar"`
	PasswordHash string `json:"password_hash"`
}

// Directory is the static local user list logins are checked against.
type Directory struct {
	byEmail   map[string]*models.User
	dummyHash []byte
}

// NormalizeEmail is the canonical form used as the favourites user key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns a bcrypt hash suitable for users.json.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// LoadDirectory reads a JSON array of user records from path.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading users file %s: %w", path, err)
	}

	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing users file %s: %w", path, err)
	}

	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		users = append(users, models.User{
			ID:           rec.ID,
			Email:        rec.Email,
			Name:         rec.Name,
			Role:         rec.Role,
			Avatar:       rec.Avatar,
			PasswordHash: rec.PasswordHash,
		})
	}
	return NewDirectory(users)
}

// NewDirectory indexes users by normalised email. Every user needs an email
// and a password hash, and emails must be unique.
func NewDirectory(users []models.User) (*Directory, error) {
	d := &Directory{byEmail: make(map[string]*models.User, len(users))}

	for i := range users {
		u := users[i]
		email := NormalizeEmail(u.Email)
		if email == "" {
			return nil, fmt.Errorf("user %d has no email", u.ID)
		}
		if u.PasswordHash == "" {
			return nil, fmt.Errorf("user %s has no password hash", email)
		}
		if _, dup := d.byEmail[email]; dup {
			return nil, fmt.Errorf("duplicate user email %s", email)
		}
		u.Email = email
		d.byEmail[email] = &u
	}

	// Compared against for unknown emails so both failure paths cost one bcrypt check.
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("preparing directory: %w", err)
	}
	d.dummyHash = dummy
	return d, nil
}

// Authenticate returns the user matching email and password, or
// ErrInvalidCredentials.
func (d *Directory) Authenticate(email, password string) (*models.User, error) {
	u, ok := d.byEmail[NormalizeEmail(email)]
	if !ok {
		bcrypt.CompareHashAndPassword(d.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	out := *u
	return &out, nil
}

// Lookup returns the user registered under email.
func (d *Directory) Lookup(email string) (*models.User, bool) {
	u, ok := d.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, false
	}
	out := *u
	return &out, true
}

// Len returns the number of users in the directory.
func (d *Directory) Len() int {
	return len(d.byEmail)
}
