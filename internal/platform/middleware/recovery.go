package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery returns the outermost Gin middleware function of the pipeline:
// the error boundary. Panics from inner stages and errors handlers attached
// via c.Error are logged with full detail server-side and converted into a
// generic 500 body. No internal detail ever reaches the client. Terminal —
// nothing after it can re-raise.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					gin.H{"error": "internal server error"})
			}
		}()

		c.Next()

		// Typed failures are already translated to status codes by the
		// handlers; whatever reaches c.Errors unwritten is unclassified.
		if len(c.Errors) > 0 && !c.Writer.Written() {
			slog.Error("unhandled error",
				"errors", c.Errors.String(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}
