// Package middleware provides the cross-cutting request pipeline stages:
// the panic/error boundary, the bearer-token authentication gate and the
// body-capturing request/response logger. Composition order in the router is
// fixed: Recovery (outermost), then AuthRequired, then RequestLogger.
package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	authHeaderName = "Authorization"
	bearerPrefix   = "Bearer "
)

// ErrInvalidCredential is returned by validators when a presented token is
// well-formed but does not verify.
var ErrInvalidCredential = errors.New("invalid credential")

// defaultPublicPrefixes are the paths exempted from authentication,
// matched by prefix.
var defaultPublicPrefixes = []string{"/api/health", "/swagger"}

// CredentialValidator validates a presented bearer credential.
// The gate itself only extracts the token; swapping the validator swaps the
// trust model without touching the pipeline.
type CredentialValidator interface {
	Validate(token string) error
}

// StaticTokenValidator accepts exactly one preconfigured secret.
// Placeholder trust model for environments without a token service.
type StaticTokenValidator struct {
	secret string
}

// NewStaticTokenValidator creates a validator that accepts only the given secret.
func NewStaticTokenValidator(secret string) *StaticTokenValidator {
	return &StaticTokenValidator{secret: secret}
}

// Validate compares the token against the configured secret in constant time.
func (v *StaticTokenValidator) Validate(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.secret)) != 1 {
		return ErrInvalidCredential
	}
	return nil
}

// JWTValidator verifies HMAC-signed JWTs.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for tokens signed with the given secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// Validate parses and verifies the JWT signature and registered claims.
func (v *JWTValidator) Validate(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCredential
	}
	return nil
}

// AuthRequired returns a Gin middleware function that restricts access to
// requests carrying a bearer credential accepted by the validator.
//
// Paths matching one of the public prefixes bypass the check entirely; when
// none are given the defaults (/api/health, /swagger) apply. A missing or
// malformed Authorization header and a rejected token both yield 401, with
// distinct bodies so clients can tell the two apart.
func AuthRequired(v CredentialValidator, publicPrefixes ...string) gin.HandlerFunc {
	if len(publicPrefixes) == 0 {
		publicPrefixes = defaultPublicPrefixes
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		auth := c.GetHeader(authHeaderName)
		if !strings.HasPrefix(auth, bearerPrefix) {
			slog.Warn("authentication failed: no Authorization header or invalid format",
				"method", c.Request.Method, "path", path)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "Authentication required. Please provide a valid Bearer token."})
			return
		}

		token := strings.TrimPrefix(auth, bearerPrefix)
		if err := v.Validate(token); err != nil {
			slog.Warn("authentication failed: invalid token",
				"method", c.Request.Method, "path", path)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "Invalid token. Authentication failed."})
			return
		}

		c.Next()
	}
}
