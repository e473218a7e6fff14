package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_Format(t *testing.T) {
	encoded, err := HashSecret("correct horse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=3,p=4$"))
	assert.True(t, VerifySecret(encoded, "correct horse"))
	assert.False(t, VerifySecret(encoded, "battery staple"))
}

func TestHashSecret_UniqueSalt(t *testing.T) {
	a, err := HashSecret("same")
	require.NoError(t, err)
	b, err := HashSecret("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashSecret_RejectsBadInput(t *testing.T) {
	_, err := HashSecret("")
	assert.Error(t, err)

	_, err = HashSecret(strings.Repeat("x", maxSecretLength+1))
	assert.Error(t, err)
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	assert.False(t, VerifySecret("not-a-hash", "anything"))
	assert.False(t, VerifySecret("$argon2i$v=19$m=1,t=1,p=1$AAAA$AAAA", "anything"))
}

func TestAdminGuard_FromToken(t *testing.T) {
	g, err := NewAdminGuard("s3cret", "")
	require.NoError(t, err)

	assert.True(t, g.Verify("s3cret"))
	assert.False(t, g.Verify("S3CRET"))
	assert.False(t, g.Verify(""))
}

func TestAdminGuard_FromHash(t *testing.T) {
	encoded, err := HashSecret("from-hash")
	require.NoError(t, err)

	g, err := NewAdminGuard("ignored", encoded)
	require.NoError(t, err)

	assert.True(t, g.Verify("from-hash"))
	assert.False(t, g.Verify("ignored"))
}

func TestAdminGuard_Errors(t *testing.T) {
	_, err := NewAdminGuard("", "")
	assert.ErrorIs(t, err, ErrNoAdminToken)

	_, err = NewAdminGuard("", "$argon2id$garbage")
	assert.Error(t, err)
}
