package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
)

// maxWebhookBody bounds the payload read for signature verification.
const maxWebhookBody = 1 << 20

// WebhookHMAC returns middleware that validates HMAC-SHA256 webhook
// signatures carried in header. The body is restored for the next handler.
func WebhookHMAC(secret, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeJSONError(w, http.StatusServiceUnavailable, "webhook secret not configured")
				return
			}

			sig := r.Header.Get(header)
			if sig == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing webhook signature")
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "failed to read body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !verifyHMAC(body, sig, secret) {
				writeJSONError(w, http.StatusForbidden, "invalid webhook signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// verifyHMAC checks a hex HMAC-SHA256 signature, with or without a "sha256=" prefix.
func verifyHMAC(payload []byte, signature, secret string) bool {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(sigBytes, mac.Sum(nil))
}
