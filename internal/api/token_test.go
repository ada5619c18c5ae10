package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plural-chat/internal/storage"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	})

	creds := newMemCredentials()
	creds.Put(storage.KeyToken, []byte(raw))
	client := NewClient("http://localhost", creds)

	info, err := client.InspectToken()
	require.NoError(t, err)
	assert.Equal(t, 7, info.UserID)
	assert.WithinDuration(t, exp, info.ExpiresAt, time.Second)
	assert.False(t, info.Expired())
}

func TestInspectTokenNumericSubject(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": float64(12)})

	creds := newMemCredentials()
	creds.Put(storage.KeyToken, []byte(raw))
	client := NewClient("http://localhost", creds)

	info, err := client.InspectToken()
	require.NoError(t, err)
	assert.Equal(t, 12, info.UserID)
	// No exp claim means the client cannot call it expired.
	assert.False(t, info.Expired())
}

func TestInspectTokenExpired(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	creds := newMemCredentials()
	creds.Put(storage.KeyToken, []byte(raw))
	client := NewClient("http://localhost", creds)

	info, err := client.InspectToken()
	require.NoError(t, err)
	assert.True(t, info.Expired())
}

func TestInspectTokenMissingOrGarbage(t *testing.T) {
	client := NewClient("http://localhost", newMemCredentials())
	_, err := client.InspectToken()
	assert.Error(t, err)

	creds := newMemCredentials()
	creds.Put(storage.KeyToken, []byte("not-a-jwt"))
	client = NewClient("http://localhost", creds)
	_, err = client.InspectToken()
	assert.Error(t, err)
}
