package svea

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// timestampLayout is the provider's required form: UTC YYYY-MM-DD HH:MM:SS.
const timestampLayout = "2006-01-02 15:04:05"

// Timestamp formats t the way the provider's Timestamp header expects.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// AuthToken builds the Authorization token for a request: the SHA-512 digest
// of body+secret+timestamp, hex-encoded, then base64("{merchantID}:{digest}").
// GET requests sign the empty body.
func AuthToken(merchantID, secret string, body []byte, timestamp string) string {
	h := sha512.New()
	h.Write(body)
	h.Write([]byte(secret))
	h.Write([]byte(timestamp))
	digest := hex.EncodeToString(h.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(merchantID + ":" + digest))
}
