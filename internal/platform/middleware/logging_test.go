package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSlog はテスト中だけslogの出力をバッファへ差し替えます。
func captureSlog(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

// TestRequestLogger_BodyPassesThroughUnchanged はバッファ経由でも
// レスポンスのバイト列・ステータス・ヘッダーが一切変わらないことを検証します。
func TestRequestLogger_BodyPassesThroughUnchanged(t *testing.T) {
	captureSlog(t)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/echo", func(c *gin.Context) {
		c.Header("X-Custom", "value")
		c.JSON(http.StatusCreated, gin.H{"message": "hello"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/echo?q=1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"hello"}`, w.Body.String())
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

// TestRequestLogger_LogsRequestAndResponse はディスパッチ前後の2本の
// ログエントリが記録されることを検証します。
func TestRequestLogger_LogsRequestAndResponse(t *testing.T) {
	buf := captureSlog(t)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{"a"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/items?page=2", nil)
	r.ServeHTTP(w, req)

	logs := buf.String()
	assert.Contains(t, logs, `"msg":"request"`)
	assert.Contains(t, logs, `"method":"GET"`)
	assert.Contains(t, logs, `"path":"/items"`)
	assert.Contains(t, logs, `"query":"page=2"`)
	assert.Contains(t, logs, `"msg":"response"`)
	assert.Contains(t, logs, `"status":200`)
	assert.Contains(t, logs, `"content_length":5`)
}

// TestRequestLogger_EmptyBody はボディのないレスポンス（204等）でも
// 正しく動作することを検証します。
func TestRequestLogger_EmptyBody(t *testing.T) {
	captureSlog(t)

	r := gin.New()
	r.Use(RequestLogger())
	r.DELETE("/items/1", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/items/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

// TestRequestLogger_MultipleWrites は複数回のWriteが1回の書き出しへ
// まとめられ、内容が連結されることを検証します。
func TestRequestLogger_MultipleWrites(t *testing.T) {
	captureSlog(t)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/chunks", func(c *gin.Context) {
		c.Status(http.StatusOK)
		_, err := c.Writer.WriteString("hello ")
		require.NoError(t, err)
		_, err = c.Writer.WriteString("world")
		require.NoError(t, err)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/chunks", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, "hello world", w.Body.String())
}

// TestRequestLogger_PanicDiscardsBuffer はパニック時に部分的なボディが
// 破棄され、外側のバウンダリの500だけが返ることを検証します。
func TestRequestLogger_PanicDiscardsBuffer(t *testing.T) {
	captureSlog(t)

	r := gin.New()
	r.Use(Recovery())
	r.Use(RequestLogger())
	r.GET("/boom", func(c *gin.Context) {
		_, _ = c.Writer.WriteString("partial")
		panic("boom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "partial")
}
