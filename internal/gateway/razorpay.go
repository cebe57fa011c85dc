package gateway

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

type Razorpay struct {
	client *razorpay.Client
	secret string
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret), secret: keySecret}
}

func (g *Razorpay) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	// the SDK call has no context; the caller's deadline still bounds the wait
	ch := make(chan result, 1)
	go func() {
		body, err := g.client.Order.Create(map[string]interface{}{
			"amount":          amountMinor,
			"currency":        currency,
			"receipt":         receipt,
			"payment_capture": 1,
		}, nil)
		ch <- result{body: body, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("razorpay create order: %w", res.err)
		}
		id, _ := res.body["id"].(string)
		if id == "" {
			return "", errors.New("razorpay create order: missing id")
		}
		return id, nil
	}
}

func (g *Razorpay) VerifySignature(_ context.Context, paymentID, orderID, signature string) error {
	ok := utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, g.secret)
	if !ok {
		return ErrSignatureMismatch
	}
	return nil
}
