// Package payment is the gateway boundary. The rest of the system only
// ever sees a verified "paid" signal and an opaque payment reference;
// everything protocol-specific stays here.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

type Gateway struct {
	KeyID     string
	KeySecret string
}

// IntentParams is the request body for creating a gateway order.
// Amounts are already in minor units.
type IntentParams struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (g Gateway) NewIntent(amountCents int64, currency, receipt string) IntentParams {
	if currency == "" {
		currency = "INR"
	}
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	}
	return IntentParams{Amount: amountCents, Currency: currency, Receipt: receipt}
}

// VerifySignature checks the gateway callback: HMAC-SHA256 over
// "orderID|paymentID" keyed with the secret, compared in constant time.
func (g Gateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
