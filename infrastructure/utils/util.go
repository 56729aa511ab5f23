package utils

import (
	"strconv"
	"time"

	"token-platform/domain/model"
	"token-platform/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

const TokenTTL = 24 * time.Hour

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs an HS256 token whose issuer is the user id.
func GenerateToken(user model.User, secretKey string, now time.Time) (string, error) {
	claims := model.UserClaims{
		UserName: user.UserName,
		StandardClaims: jwt.StandardClaims{
			Issuer:    strconv.FormatInt(user.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
