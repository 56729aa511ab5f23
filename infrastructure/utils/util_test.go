package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-platform/domain/model"
)

func TestGenerateToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken(model.User{ID: 42, UserName: "ada"}, "secret", now)
	require.NoError(t, err)

	var claims model.UserClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})

	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "42", claims.Issuer)
	assert.Equal(t, "ada", claims.UserName)
	assert.Equal(t, now.Add(TokenTTL).Unix(), claims.ExpiresAt)
}
