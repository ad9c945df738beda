package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewTokenService(key)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.SignJWT("a@b.com", "42", TokenTypeL2, 2*time.Hour)
	require.NoError(t, err)

	claims := svc.VerifyJWT(token)
	require.NotNil(t, claims)
	assert.Equal(t, "a@b.com", claims.Username)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, TokenTypeL2, claims.Type)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.InDelta(t, (2 * time.Hour).Seconds(), ttl.Seconds(), 1.0)
}

func TestVerifyReturnsNilOnGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	for _, tok := range []string{
		"",
		"not.a.jwt",
		"eyJhbGciOiJub25lIn0.eyJ1c2VybmFtZSI6ImEifQ.",
	} {
		assert.Nil(t, svc.VerifyJWT(tok), "token %q should not verify", tok)
	}
}

func TestVerifyReturnsNilOnExpired(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.SignJWT("a@b.com", "", TokenTypeL1, -time.Minute)
	require.NoError(t, err)
	assert.Nil(t, svc.VerifyJWT(token))
}

func TestVerifyReturnsNilOnWrongKey(t *testing.T) {
	issuer := newTestTokenService(t)
	verifier := newTestTokenService(t)

	token, err := issuer.SignJWT("a@b.com", "1", TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, verifier.VerifyJWT(token))
}

func TestTokensForSameClaimsAreDistinct(t *testing.T) {
	svc := newTestTokenService(t)

	t1, err := svc.SignJWT("a@b.com", "1", TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	t2, err := svc.SignJWT("a@b.com", "1", TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestL1TokenCarriesNoUserID(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.SignJWT("a@b.com", "", TokenTypeL1, Level1TokenTTL)
	require.NoError(t, err)

	claims := svc.VerifyJWT(token)
	require.NotNil(t, claims)
	assert.Empty(t, claims.UserID)
	assert.Equal(t, TokenTypeL1, claims.Type)
}
