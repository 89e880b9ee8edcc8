package models

import "time"

// User is a registered account. PasswordHash is opaque and must never be
// logged or serialized into responses.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
