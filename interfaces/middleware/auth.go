package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth validates the bearer token and stores the caller's id under "user_id".
func Auth(userRepository repository.IUser, secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		raw := strings.TrimPrefix(authorization, "Bearer ")
		if authorization == "" || raw == authorization || raw == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		userClaims, token, err := getClaim(raw, secretKey)
		if err != nil || token == nil || !token.Valid {
			res.ResponseMessage = abortMessage(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		userID, err := strconv.ParseInt(userClaims.Issuer, 10, 64)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if _, err := userRepository.GetById(ctx.Request.Context(), userID); err != nil {
			logger.WithRequest(ctx.Request.Context()).WithField("user_id", userID).Warn("token for unknown user")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set("user_id", userID)
		ctx.Set("user_name", userClaims.UserName)
		ctx.Next()
	}
}

func abortMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
	}
	return "Unauthorized"
}

func getClaim(raw string, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		raw,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}

// UserID returns the id set by Auth.
func UserID(ctx *gin.Context) int64 {
	return ctx.GetInt64("user_id")
}
