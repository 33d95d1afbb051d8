package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "pw", hash)

	assert.True(t, CheckPassword("pw", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	h1, err := HashPassword("pw")
	require.NoError(t, err)
	h2, err := HashPassword("pw")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("pw", h1))
	assert.True(t, CheckPassword("pw", h2))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("pw", ""))
	assert.False(t, CheckPassword("pw", "not-a-bcrypt-hash"))
}
