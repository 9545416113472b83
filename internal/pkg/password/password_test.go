package password_test

import (
	"testing"

	"nalanda-lms/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("correct horse battery staple")

	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, password.Verify("correct horse battery staple", hash))
	assert.False(t, password.Verify("wrong password", hash))
}

func TestVerifyGarbageHash(t *testing.T) {
	assert.False(t, password.Verify("anything", "not-a-bcrypt-hash"))
}

func TestHashToken(t *testing.T) {
	first := password.HashToken("refresh-token-value")
	second := password.HashToken("refresh-token-value")

	// deterministic, so the stored hash can be matched on lookup
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, password.HashToken("other-token"))
}
