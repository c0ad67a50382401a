package credentials_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
	"github.com/shashiranjanraj/sofreh/pkg/testkit"
)

func TestSetThenRead(t *testing.T) {
	testkit.TempDataDir(t)

	require.NoError(t, credentials.Set("acc-1", "ref-1"))

	assert.Equal(t, "acc-1", credentials.Access())
	assert.Equal(t, "ref-1", credentials.Refresh())
	assert.False(t, credentials.Pair().Empty())
}

func TestPersistsAcrossCacheDrop(t *testing.T) {
	testkit.TempDataDir(t)
	require.NoError(t, credentials.Set("acc-1", "ref-1"))

	// Simulate a new process: drop the cache and read the document again.
	credentials.Forget()
	assert.Equal(t, "acc-1", credentials.Access())
	assert.Equal(t, "ref-1", credentials.Refresh())
}

func TestDocumentIsNotPlaintext(t *testing.T) {
	testkit.TempDataDir(t)
	require.NoError(t, credentials.Set("super-secret-access", "super-secret-refresh"))

	raw, err := storage.Get(credentials.Document)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-access")
}

func TestClearMakesSessionAnonymous(t *testing.T) {
	testkit.TempDataDir(t)
	require.NoError(t, credentials.Set("acc-1", "ref-1"))

	require.NoError(t, credentials.Clear())

	assert.True(t, credentials.Pair().Empty())
	assert.False(t, storage.Exists(credentials.Document))

	// Clearing an already-clear session is fine.
	require.NoError(t, credentials.Clear())
}

func TestMissingDocumentIsAnonymous(t *testing.T) {
	testkit.TempDataDir(t)
	assert.True(t, credentials.Pair().Empty())
}

func TestCorruptDocumentIsAnonymous(t *testing.T) {
	testkit.TempDataDir(t)
	require.NoError(t, storage.Put(credentials.Document, []byte("garbage")))
	credentials.Forget()

	assert.True(t, credentials.Pair().Empty())
}

func TestAccessExpiresAt(t *testing.T) {
	testkit.TempDataDir(t)

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	require.NoError(t, credentials.Set(unsignedJWT(t, exp), "ref-1"))

	got, ok := credentials.AccessExpiresAt()
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())
	assert.False(t, credentials.AccessLooksExpired())
}

func TestAccessExpiresAt_OpaqueToken(t *testing.T) {
	testkit.TempDataDir(t)
	require.NoError(t, credentials.Set("not-a-jwt", "ref-1"))

	_, ok := credentials.AccessExpiresAt()
	assert.False(t, ok)
	assert.False(t, credentials.AccessLooksExpired())
}

func TestAccessLooksExpired(t *testing.T) {
	testkit.TempDataDir(t)

	exp := time.Now().Add(-time.Hour)
	require.NoError(t, credentials.Set(unsignedJWT(t, exp), "ref-1"))

	assert.True(t, credentials.AccessLooksExpired())
}

// unsignedJWT builds a structurally valid token with only an exp claim.
// AccessExpiresAt never verifies signatures, so "sig" is fine.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]int64{"exp": exp.Unix()})
	return header + "." + claims + "." + base64.RawURLEncoding.EncodeToString([]byte("sig"))
}
