package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"rentalscout/internal/util"
)

// AdminKeyHeader carries the plaintext admin key.
const AdminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware compares the admin key header against a bcrypt hash. An empty
// hash disables the admin routes entirely.
func AdminKeyMiddleware(keyHash string) gin.HandlerFunc {
	hash := []byte(keyHash)
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		if len(hash) == 0 || key == "" || bcrypt.CompareHashAndPassword(hash, []byte(key)) != nil {
			log.Printf("⚠️  [admin] rejected %s %s from %s", c.Request.Method, c.FullPath(), c.ClientIP())
			util.AbortWithError(c, http.StatusUnauthorized, "Admin access required", nil)
			return
		}
		c.Next()
	}
}

// CooldownMiddleware lets the wrapped route succeed at most once per interval,
// whoever calls it.
func CooldownMiddleware(interval time.Duration) gin.HandlerFunc {
	var (
		mu   sync.Mutex
		next time.Time
	)

	return func(c *gin.Context) {
		mu.Lock()
		now := time.Now()
		if now.Before(next) {
			wait := next.Sub(now).Round(time.Second)
			mu.Unlock()
			util.AbortWithError(c, http.StatusTooManyRequests,
				fmt.Sprintf("Please wait %v before trying again", wait), nil)
			return
		}
		next = now.Add(interval)
		mu.Unlock()
		c.Next()
	}
}
