package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHash_SaltedOutputDiffers(t *testing.T) {
	h1, err := Hash("same input")
	require.NoError(t, err)
	h2, err := Hash("same input")
	require.NoError(t, err)

	// Same plaintext, different salt, different hash; both still verify.
	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify("same input", h1))
	assert.True(t, Verify("same input", h2))
}

func TestVerify_MalformedHashIsFalse(t *testing.T) {
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, Verify("anything", ""))
}
