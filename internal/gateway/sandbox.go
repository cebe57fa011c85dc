package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Sandbox issues local order ids and checks signatures with the shared
// secret. Used for development and tests.
type Sandbox struct {
	secret string
}

func NewSandbox(secret string) *Sandbox {
	return &Sandbox{secret: secret}
}

func (g *Sandbox) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14], nil
}

func (g *Sandbox) VerifySignature(_ context.Context, paymentID, orderID, signature string) error {
	return verify(g.secret, paymentID, orderID, signature)
}

// Sign returns the signature the hosted checkout would send for orderID.
func (g *Sandbox) Sign(orderID, paymentID string) string {
	return Sign(g.secret, orderID, paymentID)
}
