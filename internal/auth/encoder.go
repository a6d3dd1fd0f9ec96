// Package auth provides the one-way credential transform used before
// persisting customer passwords.
package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	defaultIterations = 10_000
	keyLength         = 32
)

// Encoder derives a deterministic PBKDF2-SHA256 hash. The salt is a static
// deployment secret so equal inputs always encode to equal outputs, which the
// credential comparison at the boundary relies on.
type Encoder struct {
	salt       []byte
	iterations int
}

func NewEncoder(salt string) *Encoder {
	return &Encoder{salt: []byte(salt), iterations: defaultIterations}
}

// Encode hashes the plaintext. The result is base64 without padding.
func (e *Encoder) Encode(plaintext string) string {
	key := pbkdf2.Key([]byte(plaintext), e.salt, e.iterations, keyLength, sha256.New)
	return base64.RawStdEncoding.EncodeToString(key)
}
