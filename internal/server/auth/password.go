package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the original deployment (12 rounds).
const bcryptCost = 12

// HashPassword returns a salted one-way hash of the password. The result is
// opaque to callers and must never be logged or returned to clients.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
// Comparison is constant-time.
func CheckPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
