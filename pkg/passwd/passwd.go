// Package passwd hashes and verifies document passwords with bcrypt.
package passwd

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = bcrypt.DefaultCost

// ErrTooLong is returned for passwords bcrypt would silently truncate.
var ErrTooLong = errors.New("passwd: password exceeds 72 bytes")

// Hash returns the bcrypt hash of password at cost. A cost outside
// bcrypt's range falls back to DefaultCost.
func Hash(password string, cost int) ([]byte, error) {
	if len(password) > 72 {
		return nil, ErrTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

// Verify reports whether password matches hash. An empty password or
// hash never matches.
func Verify(hash []byte, password string) bool {
	if len(hash) == 0 || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// Cost returns the cost a hash was generated with, or 0 if hash is invalid.
func Cost(hash []byte) int {
	c, err := bcrypt.Cost(hash)
	if err != nil {
		return 0
	}
	return c
}
