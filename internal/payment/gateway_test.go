package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := Gateway{KeyID: "rzp_test_key", KeySecret: "s3cret"}

	good := sign("s3cret", "order_abc", "pay_xyz")
	if !g.VerifySignature("order_abc", "pay_xyz", good) {
		t.Fatal("valid signature rejected")
	}

	tests := []struct {
		name                    string
		orderID, paymentID, sig string
	}{
		{"tampered signature", "order_abc", "pay_xyz", sign("s3cret", "order_abc", "pay_other")},
		{"wrong secret", "order_abc", "pay_xyz", sign("wrong", "order_abc", "pay_xyz")},
		{"swapped ids", "pay_xyz", "order_abc", good},
		{"empty signature", "order_abc", "pay_xyz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g.VerifySignature(tt.orderID, tt.paymentID, tt.sig) {
				t.Error("invalid signature accepted")
			}
		})
	}
}

func TestNewIntentDefaults(t *testing.T) {
	g := Gateway{}

	p := g.NewIntent(7950, "", "")
	if p.Amount != 7950 {
		t.Errorf("amount = %d", p.Amount)
	}
	if p.Currency != "INR" {
		t.Errorf("currency = %q, want INR default", p.Currency)
	}
	if p.Receipt == "" {
		t.Error("receipt not generated")
	}

	p = g.NewIntent(100, "USD", "receipt_42")
	if p.Currency != "USD" || p.Receipt != "receipt_42" {
		t.Errorf("explicit params overridden: %+v", p)
	}
}
