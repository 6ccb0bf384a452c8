package ports

import "time"

type AuthClaims struct {
	UserID     string
	Email      string
	Role       string
	Department string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

type TokenSigner interface {
	Sign(claims AuthClaims) (string, error)
	Parse(raw string) (AuthClaims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
