package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Sign returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a checkout signature in constant time.
// An empty secret never verifies.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	received := strings.ToLower(strings.TrimSpace(signature))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// Verifier binds the key secret for repeated verification
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	return VerifySignature(v.secret, orderID, paymentID, signature)
}
