package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "corporeal beholder"
	hashed := HashPassword(password)

	t.Run("round trip through string form", func(t *testing.T) {
		parsed, err := ParsePasswordString(hashed.String())
		require.NoError(t, err)
		assert.Equal(t, hashed, parsed)
	})

	t.Run("correct password", func(t *testing.T) {
		ok, err := CheckPassword(password, hashed)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		ok, err := CheckPassword("ethereal beholder", hashed)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unique salts", func(t *testing.T) {
		again := HashPassword(password)
		assert.NotEqual(t, hashed.Salt, again.Salt)
		assert.NotEqual(t, hashed.Hash, again.Hash)
	})
}

func TestParsePasswordString(t *testing.T) {
	_, err := ParsePasswordString("not a password string")
	assert.Error(t, err)

	parsed, err := ParsePasswordString("argon2id$t=1,m=40960,p=1,l=64$c2FsdA$aGFzaA")
	require.NoError(t, err)
	assert.Equal(t, Argon2id, parsed.Algorithm)
	assert.Equal(t, "t=1,m=40960,p=1,l=64", parsed.AlgoConfig)

	cfg, err := ParseArgon2idConfig(parsed.AlgoConfig)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cfg.Time)
	assert.EqualValues(t, 40960, cfg.Memory)
	assert.EqualValues(t, 1, cfg.Threads)
	assert.EqualValues(t, 64, cfg.KeyLength)
}
