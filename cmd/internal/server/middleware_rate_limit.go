package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ServiceRateLimitMiddleware ограничивает частоту запросов к внутренним маршрутам.
// requests - запросов в секунду, burst - размер всплеска.
// Значения <= 0 заменяются на 1.
func ServiceRateLimitMiddleware(requests int, burst int) gin.HandlerFunc {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(requests), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
