package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// FunctionKeyHeader carries the function key on start, stop and send calls.
	FunctionKeyHeader = "x-functions-key"
	// FunctionKeyQuery is accepted in place of the header.
	FunctionKeyQuery = "code"
	// TelegramSecretHeader carries the callback token on webhook deliveries.
	TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
)

// requireFunctionKey rejects requests that do not present key. An empty key disables the check.
func requireFunctionKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		presented := c.GetHeader(FunctionKeyHeader)
		if presented == "" {
			presented = c.Query(FunctionKeyQuery)
		}
		if !secretEqual(presented, key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid function key"})
			return
		}
		c.Next()
	}
}

// requireTelegramSecret rejects webhook deliveries without the callback token. An empty token disables the check.
func requireTelegramSecret(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token != "" && !secretEqual(c.GetHeader(TelegramSecretHeader), token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid callback token"})
			return
		}
		c.Next()
	}
}

func secretEqual(presented, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}
