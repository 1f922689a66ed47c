package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-admin/internal/schemas"
)

func newTestJWTManager(t *testing.T) JWTMgr {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return NewJWTManager(privateKey, publicKey)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	identity := &schemas.SessionIdentity{
		UserID:    7,
		Name:      "Ada",
		UserType:  schemas.MemberTypeFaculty,
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}

	token, err := jwtMgr.GenerateJWT(jwtMgr.GenerateClaims(identity))
	require.NoError(t, err)

	validated, err := jwtMgr.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, validated.UserID)
	assert.Equal(t, identity.Name, validated.Name)
	assert.Equal(t, identity.UserType, validated.UserType)
	assert.True(t, identity.ExpiresAt.Equal(validated.ExpiresAt))
}

func TestExpiredSessionIsRejected(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	identity := &schemas.SessionIdentity{UserID: 7, Name: "Ada", ExpiresAt: time.Now().Add(-time.Minute)}

	token, err := jwtMgr.GenerateJWT(jwtMgr.GenerateClaims(identity))
	require.NoError(t, err)

	_, err = jwtMgr.ValidateJWT(token)
	assert.Error(t, err)
}

func TestTokenOfOtherKeyIsRejected(t *testing.T) {
	identity := &schemas.SessionIdentity{UserID: 7, Name: "Ada", ExpiresAt: time.Now().Add(time.Hour)}
	otherMgr := newTestJWTManager(t)
	token, err := otherMgr.GenerateJWT(otherMgr.GenerateClaims(identity))
	require.NoError(t, err)

	_, err = newTestJWTManager(t).ValidateJWT(token)
	assert.Error(t, err)
}

func TestKeyPairIsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")

	first, err := NewJWTManagerFromFile(path)
	require.NoError(t, err)
	second, err := NewJWTManagerFromFile(path)
	require.NoError(t, err)

	identity := &schemas.SessionIdentity{UserID: 1, Name: "Ada", ExpiresAt: time.Now().Add(time.Hour)}
	token, err := first.GenerateJWT(first.GenerateClaims(identity))
	require.NoError(t, err)

	_, err = second.ValidateJWT(token)
	assert.NoError(t, err)
}
