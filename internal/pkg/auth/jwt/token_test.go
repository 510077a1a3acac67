package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{ID: "u1", Name: "Alice", Role: "user"}

	tokenString, err := GenerateToken(payload, testSecret, UserIdentityExpiration)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := ParseToken(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", parsed.ID)
	assert.Equal(t, "Alice", parsed.Name)
	assert.Equal(t, "user", parsed.Role)
	assert.Equal(t, TokenIssuer, parsed.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "u1"}, testSecret, UserIdentityExpiration)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "another-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "u1"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, testSecret)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
