package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// New returns prefix followed by n random bytes in unpadded base64url.
// The encoded part is always (4*n+2)/3 characters long.
func New(prefix string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token: invalid length %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// EncodedLen is the length of the random part New produces for n bytes.
func EncodedLen(n int) int {
	return base64.RawURLEncoding.EncodedLen(n)
}

// Hash returns the hex SHA-256 digest of s. It is the form in which
// tokens are kept server-side.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether plaintext hashes to digest, in constant time.
func Matches(plaintext, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(plaintext)), []byte(digest)) == 1
}
