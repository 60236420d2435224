package middleware

import (
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rentalscout/internal/util"
)

// apiCSP locks JSON responses down completely; docsCSP lets the swagger UI run.
const (
	apiCSP  = "default-src 'none'; frame-ancestors 'none'"
	docsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'"
)

var fixedHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
}

// SecurityHeaders sets hardening headers. API responses are never cached since
// they change as enrichment lands.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range fixedHeaders {
			h.Set(kv[0], kv[1])
		}
		if isAPI(c.Request.URL.Path) {
			h.Set("Content-Security-Policy", apiCSP)
			h.Set("Cache-Control", "no-store")
		} else {
			h.Set("Content-Security-Policy", docsCSP)
		}
		c.Next()
	}
}

// HTTPMethodFilter answers 405 for methods outside the list.
func HTTPMethodFilter(methods ...string) gin.HandlerFunc {
	allow := strings.Join(methods, ", ")
	return func(c *gin.Context) {
		if !slices.Contains(methods, c.Request.Method) {
			log.Printf("🚫 [http] %s not allowed on %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.Header("Allow", allow)
			util.AbortWithError(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
			return
		}
		c.Next()
	}
}

// RequestLogger logs API calls with status and latency. Swagger assets are skipped.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if !isAPI(c.Request.URL.Path) {
			return
		}
		log.Printf("[http] %s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/listings/")
}
