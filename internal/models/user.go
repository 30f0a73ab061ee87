package models

// User is a record of the local user directory. PasswordHash is never
// serialised back to clients.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Avatar       string `json:"avatar"`
	PasswordHash string `json:"-"`
}
