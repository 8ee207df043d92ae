package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceBearerAuthMiddleware проверяет сервисный ключ из заголовка Authorization
// (Bearer). serviceName сохраняется в контексте запроса под ключом "service".
func ServiceBearerAuthMiddleware(serviceName, secret string) gin.HandlerFunc {
	if secret == "" {
		panic("service API key is empty - set GO_SERVER_API_KEY")
	}

	secretBytes := []byte(secret)

	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "service auth required"})
			return
		}

		token := []byte(h[7:])
		if subtle.ConstantTimeCompare(token, secretBytes) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service token"})
			return
		}

		c.Set("service", serviceName)
		c.Next()
	}
}
