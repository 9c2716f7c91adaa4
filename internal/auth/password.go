package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// HashPassword derives a salted bcrypt verifier from a plaintext password.
// The salt is randomized per call, so the same plaintext produces a
// different verifier every time.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored verifier.
// A malformed verifier counts as a mismatch, never an error.
func CheckPassword(plain, verifier string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(plain)) == nil
}
