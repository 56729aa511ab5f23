package middleware

import (
	"crypto/subtle"
	"net/http"

	"token-platform/domain/dto"

	"github.com/gin-gonic/gin"
)

// AdminKey guards operator routes with a shared X-Admin-Key header. An empty
// configured key rejects everything.
func AdminKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if expected == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Invalid admin key"})
			return
		}
		c.Next()
	}
}
