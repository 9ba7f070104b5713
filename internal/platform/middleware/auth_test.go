package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testSecret = "TechHive2025ApiKeySecret"

// newAuthTestRouter はAuthRequiredを適用し、到達可能な確認用ルートを持つルータを返します。
func newAuthTestRouter(v CredentialValidator, prefixes ...string) (*gin.Engine, *bool) {
	reached := false
	r := gin.New()
	r.Use(AuthRequired(v, prefixes...))
	handler := func(c *gin.Context) {
		reached = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/api/Users", handler)
	r.GET("/api/health", handler)
	r.GET("/api/health/live", handler)
	r.GET("/swagger/openapi.yaml", handler)
	return r, &reached
}

// TestAuthRequired_PublicPrefixBypass は公開プレフィックス配下のパスが
// 認証ヘッダーなしで素通しされることを検証します。
func TestAuthRequired_PublicPrefixBypass(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"health root", "/api/health"},
		{"health subpath matches by prefix", "/api/health/live"},
		{"swagger subpath matches by prefix", "/swagger/openapi.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reached := newAuthTestRouter(NewStaticTokenValidator(testSecret))

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, *reached, "public paths must reach the handler without credentials")
		})
	}
}

// TestAuthRequired_MissingOrMalformedHeader はヘッダー欠落・不正形式で
// 401と「認証必須」の本文が返ることを検証します。
func TestAuthRequired_MissingOrMalformedHeader(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer " + testSecret},
		{"no space after Bearer", "Bearer" + testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reached := newAuthTestRouter(NewStaticTokenValidator(testSecret))

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/api/Users", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t,
				`{"error":"Authentication required. Please provide a valid Bearer token."}`,
				w.Body.String())
			assert.False(t, *reached, "the dispatcher must never run on auth failure")
		})
	}
}

// TestAuthRequired_InvalidToken は不一致トークンで401と「無効トークン」の本文が返ることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	r, reached := newAuthTestRouter(NewStaticTokenValidator(testSecret))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/Users", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token. Authentication failed."}`, w.Body.String())
	assert.False(t, *reached)
}

// TestAuthRequired_ValidToken は正しいトークンでハンドラーへ到達することを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	r, reached := newAuthTestRouter(NewStaticTokenValidator(testSecret))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/Users", nil)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}

// TestAuthRequired_CustomPrefixes は明示指定したプレフィックスが既定値を上書きすることを検証します。
func TestAuthRequired_CustomPrefixes(t *testing.T) {
	r, _ := newAuthTestRouter(NewStaticTokenValidator(testSecret), "/api/Users")

	// /api/Users が公開になり、/api/health は認証必須になる
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/Users", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestStaticTokenValidator はバリデータ単体の一致判定を検証します。
func TestStaticTokenValidator(t *testing.T) {
	t.Parallel()

	v := NewStaticTokenValidator(testSecret)
	assert.NoError(t, v.Validate(testSecret))
	assert.ErrorIs(t, v.Validate("other"), ErrInvalidCredential)
	assert.ErrorIs(t, v.Validate(""), ErrInvalidCredential)
}

// signJWT はテスト用のHS256署名済みトークンを生成します。
func signJWT(t *testing.T, secret string, expiration time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": float64(1),
		"exp": time.Now().Add(expiration).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// TestJWTValidator はJWT方式の差し替えバリデータを検証します。
func TestJWTValidator(t *testing.T) {
	t.Parallel()

	const secret = "jwt-test-secret"
	v := NewJWTValidator(secret)

	t.Run("valid token", func(t *testing.T) {
		assert.NoError(t, v.Validate(signJWT(t, secret, time.Hour)))
	})

	t.Run("expired token", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate(signJWT(t, secret, -time.Hour)), ErrInvalidCredential)
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate(signJWT(t, "wrong-secret", time.Hour)), ErrInvalidCredential)
	})

	t.Run("malformed token", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate("not.a.token"), ErrInvalidCredential)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": float64(1),
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.ErrorIs(t, v.Validate(signed), ErrInvalidCredential)
	})
}
