package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("Password123!")
	require.NoError(t, err)
	require.NotEqual(t, "Password123!", hash)

	ok, err := h.Check(hash, "Password123!")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Check(hash, "password123!")
	require.NoError(t, err)
	require.False(t, ok)

	again, err := h.Hash("Password123!")
	require.NoError(t, err)
	require.NotEqual(t, hash, again, "hashes are salted")
}

func TestCheckMalformedHash(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Check("not-a-bcrypt-hash", "Password123!")
	require.Error(t, err)
}

func TestNewHasherCost(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)

	h, err := NewHasher(0)
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, h.cost)
}
