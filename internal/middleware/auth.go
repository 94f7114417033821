package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authTimingFloor is the minimum response time for failed auth to prevent
// timing oracles that could distinguish near-miss secrets.
const authTimingFloor = 50 * time.Millisecond

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// ExtractBearerToken extracts the credential from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// secretEqual compares a presented credential against the expected secret in
// constant time. Both sides are hashed first so the comparison length never
// depends on the secret.
func secretEqual(presented, expected string) bool {
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(expected))

	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// BearerSecret returns Gin middleware that authenticates requests against a
// static shared secret. The same middleware guards both the admin API key
// and the scheduler's cron secret; audience names the credential in logs.
func BearerSecret(audience, secret string, log *logrus.Logger, guards ...*FailureLockout) gin.HandlerFunc {
	var guard *FailureLockout
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		clientIP := c.ClientIP()
		if guard != nil && guard.IsBlocked(clientIP) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")

			return
		}

		token := ExtractBearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")

			return
		}

		if !secretEqual(token, secret) {
			log.WithFields(logrus.Fields{
				"client_ip":  clientIP,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"user_agent": c.Request.UserAgent(),
				"request_id": c.GetString(RequestIDKey),
				"audience":   audience,
			}).Warn("authentication failed: invalid credential")

			if guard != nil {
				guard.RecordFailure(clientIP)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credential")

			return
		}

		if guard != nil {
			guard.Reset(clientIP)
		}

		c.Next()
	}
}
