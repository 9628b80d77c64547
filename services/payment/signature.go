package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Signer issues and checks checkout signatures:
// hex(HMAC-SHA256(secret, orderRef|paymentRef)).
type Signer struct {
	secret []byte
}

// NewSigner returns a signer for secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the signature for the pair.
func (s *Signer) Sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// Valid reports whether signature matches orderRef and paymentRef.
func (s *Signer) Valid(orderRef, paymentRef, signature string) (bool, error) {
	if len(s.secret) == 0 {
		return false, errors.New("payment signing secret is not configured")
	}
	if orderRef == "" || paymentRef == "" || signature == "" {
		return false, nil
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false, nil
	}
	want, _ := hex.DecodeString(s.Sign(orderRef, paymentRef))
	return hmac.Equal(got, want), nil
}
