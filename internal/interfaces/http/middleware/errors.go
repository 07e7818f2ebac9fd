// Package middleware provides the gin middleware of the console API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LogisticsPrefix is the path prefix of the logistics API, which uses its own envelope
const LogisticsPrefix = "/logistics/"

// abortWithError stops the chain with an error body in the envelope of the API being called
func abortWithError(c *gin.Context, status int, code, message string) {
	if strings.HasPrefix(c.Request.URL.Path, LogisticsPrefix) {
		c.AbortWithStatusJSON(status, dto.Envelope{Code: status, Status: dto.StatusError, Message: message})
		return
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, message, GetRequestID(c)))
}

// NotFound answers unmatched routes
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, dto.ErrCodeNotFound, "No route for "+c.Request.Method+" "+c.Request.URL.Path)
	}
}
