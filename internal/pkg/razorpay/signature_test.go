package razorpay

import (
	"strings"
	"testing"
)

func TestSignKnownVector(t *testing.T) {
	got := Sign("secret", "order_abc", "pay_xyz")
	want := "6c4490ce5c4839b0437f2b5dccb1fc7301518f94c6d1165b96d0903bfd33b2ae"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got == Sign("secret", "order_abc", "pay_xy") {
		t.Fatal("signature must depend on payment id")
	}
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("key-secret", "order_1", "pay_1")

	if !VerifySignature("key-secret", "order_1", "pay_1", sig) {
		t.Fatal("expected valid signature")
	}
	if !VerifySignature("key-secret", "order_1", "pay_1", "  "+strings.ToUpper(sig)+" ") {
		t.Fatal("expected case/space-insensitive match")
	}
	if VerifySignature("key-secret", "order_1", "pay_2", sig) {
		t.Fatal("expected mismatch for different payment")
	}
	if VerifySignature("other", "order_1", "pay_1", sig) {
		t.Fatal("expected mismatch for different secret")
	}
	if VerifySignature("", "order_1", "pay_1", Sign("", "order_1", "pay_1")) {
		t.Fatal("empty secret must never verify")
	}
}

func TestVerifierBindsSecret(t *testing.T) {
	v := NewVerifier("s3cret")
	if !v.Verify("o", "p", Sign("s3cret", "o", "p")) {
		t.Fatal("expected verifier to accept its own signature")
	}
}
