package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestFileStore_SaveTokenClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth_token")
	store := NewFileStore(path)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no token")

	require.NoError(t, store.Save("opaque-token"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = store.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
	assert.True(t, IsAuthenticated(store))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
	assert.False(t, IsAuthenticated(store))
}

func TestFileStore_SaveEmptyToken(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "auth_token"))
	err := store.Save("   ")
	assert.Error(t, err)
}

func TestFileStore_ExpiredJWTIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_token")
	store := NewFileStore(path)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(signedToken(t, now.Add(-time.Minute))))

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expired token file should be removed")
}

func TestFileStore_ValidJWTIsReturned(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "auth_token"))
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	jwtToken := signedToken(t, now.Add(time.Hour))
	require.NoError(t, store.Save(jwtToken))

	token, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, jwtToken, token)
}

func TestInspect(t *testing.T) {
	exp := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	info := Inspect(signedToken(t, exp))
	assert.True(t, info.JWT)
	assert.Equal(t, "user-123", info.Subject)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(exp.Add(-time.Second)))
	assert.True(t, info.Expired(exp))

	opaque := Inspect("not-a-jwt")
	assert.False(t, opaque.JWT)
	assert.False(t, opaque.Expired(time.Now()))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("abc")
	assert.True(t, IsAuthenticated(store))

	require.NoError(t, store.Clear())
	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.False(t, IsAuthenticated(nil))
}
