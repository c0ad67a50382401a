package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/crypt"
)

func TestRoundTrip(t *testing.T) {
	enc, err := crypt.Encrypt("hello sofreh")
	require.NoError(t, err)
	assert.NotContains(t, enc, "hello")

	plain, err := crypt.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "hello sofreh", plain)
}

func TestNonceMakesOutputUnique(t *testing.T) {
	a, err := crypt.Encrypt("same input")
	require.NoError(t, err)
	b, err := crypt.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTamperedCiphertextFailsAuthentication(t *testing.T) {
	enc, err := crypt.Encrypt("payload")
	require.NoError(t, err)

	tampered := []byte(enc)
	tampered[len(tampered)-5] ^= 'x'
	_, err = crypt.Decrypt(string(tampered))
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestGarbageInputFails(t *testing.T) {
	_, err := crypt.Decrypt("not base64url!!")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestJSONHelpers(t *testing.T) {
	in := models.TokenPair{Access: "acc", Refresh: "ref"}
	enc, err := crypt.EncryptJSON(in)
	require.NoError(t, err)

	var out models.TokenPair
	require.NoError(t, crypt.DecryptJSON(enc, &out))
	assert.Equal(t, in, out)
}
