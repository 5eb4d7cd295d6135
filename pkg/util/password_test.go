package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("autos2024")
	require.NoError(t, err)

	assert.NotEqual(t, "autos2024", hash)
	assert.True(t, VerifyPassword(hash, "autos2024"))
	assert.False(t, VerifyPassword(hash, "autos2025"))
	assert.False(t, VerifyPassword("not-a-hash", "autos2024"))

	again, err := HashPassword("autos2024")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "bcrypt salts every hash")
}

func TestCheckPasswordLength(t *testing.T) {
	assert.Error(t, CheckPasswordLength(""))
	assert.Error(t, CheckPasswordLength("12345"))
	assert.NoError(t, CheckPasswordLength("123456"))
	assert.NoError(t, CheckPasswordLength("contraseña-larga"))
}
