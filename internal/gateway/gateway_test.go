package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	sb := NewSandbox("s3cret")
	sig := sb.Sign("order_1", "pay_1")

	require.NoError(t, sb.VerifySignature(context.Background(), "pay_1", "order_1", sig))
	require.ErrorIs(t, sb.VerifySignature(context.Background(), "pay_2", "order_1", sig), ErrSignatureMismatch)
	require.ErrorIs(t, sb.VerifySignature(context.Background(), "pay_1", "order_2", sig), ErrSignatureMismatch)
	require.ErrorIs(t, NewSandbox("other").VerifySignature(context.Background(), "pay_1", "order_1", sig), ErrSignatureMismatch)
}

func TestSignShape(t *testing.T) {
	require.Len(t, Sign("key", "order_A", "pay_B"), 64)
	require.Equal(t, Sign("key", "order_A", "pay_B"), Sign("key", "order_A", "pay_B"))
	require.NotEqual(t, Sign("key", "order_A", "pay_B"), Sign("key", "order_B", "pay_A"))
}

func TestSandboxCreateOrder(t *testing.T) {
	sb := NewSandbox("x")
	a, err := sb.CreateOrder(context.Background(), 57500, "INR", "payment-1")
	require.NoError(t, err)
	b, err := sb.CreateOrder(context.Background(), 57500, "INR", "payment-1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(a, "order_"))
	require.NotEqual(t, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sb.CreateOrder(ctx, 100, "INR", "r")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	_, err := New(Config{Driver: "sandbox"})
	require.Error(t, err)

	g, err := New(Config{Driver: "sandbox", KeySecret: "dev"})
	require.NoError(t, err)
	require.IsType(t, &Sandbox{}, g)

	_, err = New(Config{Driver: "razorpay"})
	require.Error(t, err)

	g, err = New(Config{Driver: "razorpay", KeyID: "rzp_test_x", KeySecret: "y"})
	require.NoError(t, err)
	require.IsType(t, &Razorpay{}, g)

	_, err = New(Config{Driver: "paypal"})
	require.Error(t, err)
}

func TestRazorpayVerifySignature(t *testing.T) {
	g := NewRazorpay("rzp_test_key", "rzp-secret")
	sig := Sign("rzp-secret", "order_9", "pay_9")

	require.NoError(t, g.VerifySignature(context.Background(), "pay_9", "order_9", sig))
	require.ErrorIs(t, g.VerifySignature(context.Background(), "pay_8", "order_9", sig), ErrSignatureMismatch)
	require.ErrorIs(t, g.VerifySignature(context.Background(), "pay_9", "order_9", Sign("other", "order_9", "pay_9")), ErrSignatureMismatch)
}
