package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(42, time.Hour, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestGenerateAccessTokenRequiresSecret(t *testing.T) {
	_, err := GenerateAccessToken(42, time.Hour, "")
	assert.Error(t, err)
}

func TestVerifyAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, time.Hour, testSecret)
	require.NoError(t, err)

	_, err = VerifyAccessToken(token, "a-different-secret")
	assert.Error(t, err)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, -time.Minute, testSecret)
	require.NoError(t, err)

	_, err = VerifyAccessToken(token, testSecret)
	assert.Error(t, err)
}

func TestVerifyAccessTokenGarbage(t *testing.T) {
	_, err := VerifyAccessToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestVerifyAccessTokenRejectsMissingUserID(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})
	token, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifyAccessToken(token, testSecret)
	assert.Error(t, err)
}
