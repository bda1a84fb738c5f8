package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
)

// canonicalSignature recomputes Sign's output for fixed nonce/timestamp so
// determinism and sensitivity can be tested without relying on randomness.
func canonicalSignature(s *Signer, method, uri string, ts int64, nonce, body string) string {
	headerString := fmt.Sprintf("X-TC-Key=%s&X-TC-Nonce=%s&X-TC-Timestamp=%d", s.SecretID, nonce, ts)
	content := fmt.Sprintf("%s\n%s\n%s\n%s", method, headerString, uri, body)
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(content))
	hexHash := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(hexHash))
}

func TestNonceIsEightDigits(t *testing.T) {
	for i := 0; i < 20; i++ {
		n, err := Nonce()
		if err != nil {
			t.Fatalf("Nonce() error: %v", err)
		}
		if len(n) != 8 {
			t.Fatalf("expected 8-digit nonce, got %q (len %d)", n, len(n))
		}
		if _, err := strconv.ParseUint(n, 10, 64); err != nil {
			t.Fatalf("nonce %q is not numeric: %v", n, err)
		}
	}
}

func TestTimestampPositive(t *testing.T) {
	if Timestamp() <= 0 {
		t.Fatalf("expected positive timestamp")
	}
}

func TestSignProducesValidBase64(t *testing.T) {
	s := New("test_secret_id", "test_secret_key")
	h, err := s.Sign("GET", "/v1/test", "")
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if h.Signature == "" {
		t.Fatalf("expected non-empty signature")
	}
	if _, err := base64.StdEncoding.DecodeString(h.Signature); err != nil {
		t.Fatalf("signature is not valid base64: %v", err)
	}
}

func TestSignIsDeterministicGivenSameNonceAndTimestamp(t *testing.T) {
	// Sign() draws its own nonce/timestamp, so determinism is verified by
	// recomputing the canonical signature directly for fixed inputs.
	s := New("test_secret_id", "test_secret_key")
	const nonce = "12345678"
	const ts = int64(1677721600)

	sig1 := canonicalSignature(s, "GET", "/v1/test", ts, nonce, "")
	sig2 := canonicalSignature(s, "GET", "/v1/test", ts, nonce, "")
	if sig1 != sig2 {
		t.Fatalf("expected deterministic signature for identical inputs, got %q vs %q", sig1, sig2)
	}
}

func TestSignIsSensitiveToURI(t *testing.T) {
	s := New("test_secret_id", "test_secret_key")
	const nonce = "12345678"
	const ts = int64(1677721600)

	sigA := canonicalSignature(s, "GET", "/v1/test", ts, nonce, "")
	sigB := canonicalSignature(s, "GET", "/v1/test?page=2", ts, nonce, "")
	if sigA == sigB {
		t.Fatalf("expected different signatures for different URIs")
	}
}

func TestSignIsSensitiveToBody(t *testing.T) {
	s := New("test_secret_id", "test_secret_key")
	const nonce = "12345678"
	const ts = int64(1677721600)

	sigA := canonicalSignature(s, "POST", "/v1/test", ts, nonce, `{"a":1}`)
	sigB := canonicalSignature(s, "POST", "/v1/test", ts, nonce, `{"a":2}`)
	if sigA == sigB {
		t.Fatalf("expected different signatures for different bodies")
	}
}
