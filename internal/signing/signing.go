// Package signing implements the Tencent Meeting API request-signing scheme:
// HMAC-SHA256 over a canonical string, hex-encoded, then base64-encoded.
package signing

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Signer holds the credential pair used to sign Tencent Meeting API requests.
type Signer struct {
	SecretID  string
	SecretKey string
}

// New returns a Signer for the given AppId-scoped secret pair.
func New(secretID, secretKey string) *Signer {
	return &Signer{SecretID: secretID, SecretKey: secretKey}
}

// Nonce generates an 8-digit random nonce, matching the upstream API's
// expected X-TC-Nonce format.
func Nonce() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000000))
	if err != nil {
		return "", fmt.Errorf("signing: generate nonce: %w", err)
	}
	return strconv.FormatInt(n.Int64()+10000000, 10), nil
}

// Timestamp returns the current Unix timestamp in seconds.
func Timestamp() int64 {
	return time.Now().Unix()
}

// Headers is the set of values a caller must attach to an outbound request
// alongside the computed signature.
type Headers struct {
	Nonce     string
	Timestamp int64
	Signature string
}

// Sign computes the X-TC-Signature header value for a request. uri must
// include the query string when the request carries one (the signature
// covers the exact string sent on the wire). body is the raw request body,
// or "" for requests without one.
func (s *Signer) Sign(method, uri string, body string) (Headers, error) {
	nonce, err := Nonce()
	if err != nil {
		return Headers{}, err
	}
	ts := Timestamp()

	headerString := fmt.Sprintf("X-TC-Key=%s&X-TC-Nonce=%s&X-TC-Timestamp=%d", s.SecretID, nonce, ts)
	content := fmt.Sprintf("%s\n%s\n%s\n%s", method, headerString, uri, body)

	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(content))
	hexHash := hex.EncodeToString(mac.Sum(nil))
	signature := base64.StdEncoding.EncodeToString([]byte(hexHash))

	return Headers{Nonce: nonce, Timestamp: ts, Signature: signature}, nil
}
