// Package gateway is the narrow contract the payment lifecycle needs from a
// card/UPI processor: create a remote order, verify the signed callback.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrSignatureMismatch = errors.New("signature mismatch")

type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	VerifySignature(ctx context.Context, paymentID, orderID, signature string) error
}

// Sign computes the checkout signature: hex HMAC-SHA256 of "order|payment"
// keyed by the merchant secret.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify backs the sandbox; Razorpay checks through the SDK.
func verify(secret, paymentID, orderID, signature string) error {
	if secret == "" {
		return errors.New("gateway secret not configured")
	}
	want := Sign(secret, orderID, paymentID)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

type Config struct {
	Driver    string
	KeyID     string
	KeySecret string
}

func New(cfg Config) (Gateway, error) {
	switch cfg.Driver {
	case "", "sandbox":
		if cfg.KeySecret == "" {
			return nil, errors.New("RAZORPAY_KEY_SECRET is required, the sandbox signs with it")
		}
		return NewSandbox(cfg.KeySecret), nil
	case "razorpay":
		if cfg.KeyID == "" || cfg.KeySecret == "" {
			return nil, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
		}
		return NewRazorpay(cfg.KeyID, cfg.KeySecret), nil
	default:
		return nil, fmt.Errorf("unsupported GATEWAY_DRIVER %q", cfg.Driver)
	}
}
