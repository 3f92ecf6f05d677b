package models

// User is an identity record. PasswordHash holds a bcrypt hash and must never
// appear in API payloads or log output.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}
