package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for new hashes.
const DefaultCost = 10

// Hash derives a salted bcrypt hash from the plaintext.
// The plaintext is never logged and never stored.
func Hash(plain string) (string, error) {
	return HashWithCost(plain, DefaultCost)
}

func HashWithCost(plain string, cost int) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches the stored hash. A malformed hash
// and a mismatching password both return false; callers cannot tell the
// two apart, which keeps the login error shape constant.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
