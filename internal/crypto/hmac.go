// Package crypto signs Bybit v5 REST requests.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Signer holds the API credentials for HMAC-authenticated requests against
// the Bybit v5 API.
type Signer struct {
	Key        string // API key
	Secret     string // API secret
	RecvWindow string // request validity window in milliseconds, e.g. "5000"
}

// Headers returns the authentication headers for one request. payload is the
// raw query string for GET requests or the JSON body for POST requests. The
// signature is HMAC-SHA256(secret, timestamp+key+recvWindow+payload) in hex.
//
// Returned header keys:
//   - X-BAPI-API-KEY
//   - X-BAPI-TIMESTAMP
//   - X-BAPI-RECV-WINDOW
//   - X-BAPI-SIGN
func (s *Signer) Headers(payload string) map[string]string {
	return s.HeadersAt(payload, time.Now().UnixMilli())
}

// HeadersAt is like Headers but lets the caller supply the millisecond
// timestamp (useful for deterministic testing).
func (s *Signer) HeadersAt(payload string, unixMilli int64) map[string]string {
	ts := strconv.FormatInt(unixMilli, 10)
	sig := hmacSHA256Hex([]byte(s.Secret), ts+s.Key+s.RecvWindow+payload)
	return map[string]string{
		"X-BAPI-API-KEY":     s.Key,
		"X-BAPI-TIMESTAMP":   ts,
		"X-BAPI-RECV-WINDOW": s.RecvWindow,
		"X-BAPI-SIGN":        sig,
	}
}

// String returns a redacted representation suitable for logging.
func (s *Signer) String() string {
	redact := func(v string) string {
		if len(v) <= 4 {
			return "****"
		}
		return v[:4] + "****"
	}
	return fmt.Sprintf("Signer{key=%s, secret=%s}", redact(s.Key), redact(s.Secret))
}

// hmacSHA256Hex computes HMAC-SHA256 of message using key and returns the
// result hex-encoded.
func hmacSHA256Hex(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
