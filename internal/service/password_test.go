package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := &PasswordHasher{Iterations: 1000, SaltLength: 8}

	encoded, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "pbkdf2:sha256:1000$"))

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 64)

	assert.True(t, h.Verify(encoded, "correct horse battery"))
	assert.False(t, h.Verify(encoded, "correct horse batterY"))
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	h := &PasswordHasher{Iterations: 1000}
	a, err := h.Hash("same password here")
	require.NoError(t, err)
	b, err := h.Hash("same password here")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_VerifiesWerkzeugFormat(t *testing.T) {
	h := NewPasswordHasher()
	legacy := "pbkdf2:sha256:260000$Xy7pQ2rs$4fd7ad9c2e329869f4ceac3d848c8fdfbd4cf2a3139116820578598ee4591363"

	assert.True(t, h.Verify(legacy, "correct horse battery"))
	assert.False(t, h.Verify(legacy, "wrong horse battery"))
}

func TestPasswordHasher_RejectsMalformed(t *testing.T) {
	h := NewPasswordHasher()
	for _, encoded := range []string{
		"",
		"plaintext",
		"scrypt:32768:8:1$salt$abcd",
		"pbkdf2:sha256:zero$salt$abcd",
		"pbkdf2:sha256:1000$salt$not-hex",
	} {
		assert.False(t, h.Verify(encoded, "anything"), encoded)
	}
}
