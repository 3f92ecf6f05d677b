package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash from the plaintext password.
// The salt is embedded in the hash; no separate storage is needed.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored bcrypt hash.
// bcrypt's comparison is constant-time over the derived key.
func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
