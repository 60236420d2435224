package util

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ErrorResponse writes the {status, error, message} envelope. err is always logged;
// its text is only sent to the client outside release mode.
func ErrorResponse(c *gin.Context, statusCode int, userMessage string, err error) {
	if err != nil {
		log.Printf("[ERROR] %s: %v", c.Request.URL.Path, err)
	}

	response := gin.H{
		"status":  statusCode,
		"error":   http.StatusText(statusCode),
		"message": userMessage,
	}

	if os.Getenv("GIN_MODE") != "release" && err != nil {
		response["details"] = err.Error()
	}

	c.JSON(statusCode, response)
}

// AbortWithError writes the envelope and stops the handler chain.
func AbortWithError(c *gin.Context, statusCode int, userMessage string, err error) {
	ErrorResponse(c, statusCode, userMessage, err)
	c.Abort()
}
