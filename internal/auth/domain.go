package auth

import "time"

// User represents a registered account.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
	Instagram    string
	X            string
	Facebook     string
	GitHub       string
	IsActive     bool
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// NewUser carries the fields persisted at registration.
type NewUser struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
}
