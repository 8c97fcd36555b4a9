package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		require.Regexp(t, hexRe, salt)
		require.False(t, seen[salt], "salts must not repeat")
		seen[salt] = true
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
	}{
		{"typical password", "my-secret-password"},
		{"empty password", ""},
		// The SHA256 pre-hash keeps bcrypt's input fixed-size, so passwords
		// past bcrypt's own 72-byte limit still round-trip.
		{"very long password", strings.Repeat("correct horse battery staple ", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(salt, tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			require.NotContains(t, hash, tt.password)

			require.NoError(t, h.Compare(hash, salt, tt.password))
		})
	}
}

func TestBcryptHasher_CompareMismatches(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	otherSalt, err := h.GenerateSalt()
	require.NoError(t, err)

	hash, err := h.Hash(salt, "correct")
	require.NoError(t, err)

	require.Error(t, h.Compare(hash, salt, "wrong"))
	require.Error(t, h.Compare(hash, otherSalt, "correct"))
	require.Error(t, h.Compare("not-a-bcrypt-hash", salt, "correct"))
}
