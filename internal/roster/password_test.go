package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordVerifiesAtLogin(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	// the exact comparison Login performs
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	// an unset hash column must never verify against any input
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(""), []byte("")))
}
