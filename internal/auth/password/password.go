// Package password hashes and verifies login secrets with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = bcrypt.DefaultCost

var ErrEmpty = errors.New("password: value is empty")

// Hash returns the bcrypt hash of plain using cost. Costs outside the range
// bcrypt accepts fall back to DefaultCost.
func Hash(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored hash.
func Compare(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
