package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows the given origins; an empty list or "*" allows any.
func CORS(origins ...string) gin.HandlerFunc {
	permitidos := make(map[string]bool, len(origins))
	for _, o := range origins {
		permitidos[strings.TrimSpace(o)] = true
	}
	cualquiera := len(permitidos) == 0 || permitidos["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case cualquiera:
			c.Header("Access-Control-Allow-Origin", "*")
		case permitidos[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
