package roster

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a staff password for storage. Login compares
// against this hash, so provisioning and bootstrap both go through here.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
