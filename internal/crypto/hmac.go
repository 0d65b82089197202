package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// APICreds holds the exchange-issued API credentials obtained from the
// credential-derivation endpoint.
type APICreds struct {
	Key        string
	Secret     string // base64-encoded
	Passphrase string
}

// AuthHeaders returns the L2 HTTP headers for an authenticated CLOB request,
// stamped with the current time.
func (c *APICreds) AuthHeaders(address, method, path, body string) map[string]string {
	return c.AuthHeadersAt(address, method, path, body, time.Now().Unix())
}

// AuthHeadersAt is AuthHeaders with a caller-supplied Unix timestamp, which
// keeps the signature deterministic in tests. The secret is base64-decoded
// before use as the HMAC key; if decoding fails the raw bytes are used so the
// caller sees a clean rejection instead of a panic.
func (c *APICreds) AuthHeadersAt(address, method, path, body string, unixTS int64) map[string]string {
	secret, err := base64.StdEncoding.DecodeString(c.Secret)
	if err != nil {
		secret = []byte(c.Secret)
	}

	ts := strconv.FormatInt(unixTS, 10)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts + method + path + body))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"POLY_ADDRESS":    address,
		"POLY_API_KEY":    c.Key,
		"POLY_TIMESTAMP":  ts,
		"POLY_PASSPHRASE": c.Passphrase,
		"POLY_SIGNATURE":  sig,
	}
}

// String returns a redacted representation safe for logging.
func (c *APICreds) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("APICreds{key=%s, secret=%s}", redact(c.Key), redact(c.Secret))
}
