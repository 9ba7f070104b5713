package middleware

import (
	"bytes"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// bufferingWriter captures the response body instead of writing it through,
// so it can be read twice: once for logging and once for transmission.
// Status code and headers pass through to the wrapped writer untouched.
type bufferingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferingWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// flush copies the buffered body to the real writer exactly once.
func (w *bufferingWriter) flush() {
	if w.body.Len() == 0 {
		return
	}
	_, _ = w.ResponseWriter.Write(w.body.Bytes())
}

// RequestLogger returns a Gin middleware function that logs the inbound
// request before dispatch and the response after dispatch. The response body
// is buffered per request so its length can be logged, then replayed to the
// real writer unmodified. Purely an observer: bytes and headers are never
// altered.
//
// On panic the buffer is discarded and the writer restored, leaving the
// outer boundary free to write its own response.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"content_type", c.ContentType())

		orig := c.Writer
		buf := &bufferingWriter{ResponseWriter: orig, body: &bytes.Buffer{}}
		c.Writer = buf
		defer func() { c.Writer = orig }()

		c.Next()

		buf.flush()

		slog.Info("response",
			"status", orig.Status(),
			"content_type", orig.Header().Get("Content-Type"),
			"content_length", buf.body.Len())
	}
}
