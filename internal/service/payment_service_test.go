package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type downGateway struct{}

func (downGateway) CreateOrder(context.Context, int64, string, string) (string, error) {
	return "", errors.New("connection refused")
}

func (downGateway) VerifySignature(context.Context, string, string, string) error {
	return errors.New("unreachable")
}

// bookedAppointment books a 500.00 grooming slot for a fresh owner and
// returns the owner and the pending payment.
func bookedAppointment(t *testing.T, e *testEnv) (*model.User, *model.ServiceAppointment, *model.Payment) {
	t.Helper()
	owner := e.user(t, model.RoleOwner, "Omar")
	pet := e.ownedPet(t, owner, "Mittens", false)
	svc := e.service(t, "Bath", "500")
	date, clock := futureSlot(3)
	appt, pay, err := e.booking.Book(context.Background(), owner, BookInput{
		OwnedPetID: pet.ID,
		ServiceID:  svc.ID,
		Date:       date,
		Time:       clock,
	})
	require.NoError(t, err)
	return owner, appt, pay
}

func TestCreatePendingValidatesReference(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	payer := e.user(t, model.RoleOwner, "Omar")
	ten := decimal.NewFromInt(10)

	tests := []struct {
		name string
		in   PendingInput
	}{
		{"no reference", PendingInput{Kind: model.PaymentForShop, Amount: ten}},
		{"kind mismatch", PendingInput{Kind: model.PaymentForAppointment, Amount: ten, OrderID: u64(1)}},
		{"two references", PendingInput{Kind: model.PaymentForShop, Amount: ten, OrderID: u64(1), AppointmentID: u64(1)}},
		{"zero amount", PendingInput{Kind: model.PaymentForShop, Amount: decimal.Zero, OrderID: u64(1)}},
		{"negative amount", PendingInput{Kind: model.PaymentForShop, Amount: ten.Neg(), OrderID: u64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.payments.CreatePending(ctx, payer, tt.in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestMinorUnits(t *testing.T) {
	require.EqualValues(t, 57500, MinorUnits(decimal.RequireFromString("575")))
	require.EqualValues(t, 19999, MinorUnits(decimal.RequireFromString("199.99")))
	require.EqualValues(t, 1, MinorUnits(decimal.RequireFromString("0.005")))
}

func TestInitiateGatewayOrderIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, _, pay := bookedAppointment(t, e)

	first, err := e.payments.InitiateGatewayOrder(ctx, owner, pay.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.GatewayOrderID)

	second, err := e.payments.InitiateGatewayOrder(ctx, owner, pay.ID)
	require.NoError(t, err)
	require.Equal(t, first.GatewayOrderID, second.GatewayOrderID)

	stranger := e.user(t, model.RoleOwner, "Stranger")
	_, err = e.payments.InitiateGatewayOrder(ctx, stranger, pay.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyAndSettleConfirmsAppointmentOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, appt, pay := bookedAppointment(t, e)

	paid := e.pay(t, owner, pay.ID)
	require.NotNil(t, paid.SettledAt)
	require.Equal(t, "pay_test", paid.GatewayPaymentID)

	got, err := e.booking.Get(ctx, owner, appt.ID)
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusConfirmed, got.Status)

	// a replayed callback changes nothing and reports the settled state
	again, err := e.payments.VerifyAndSettle(ctx, owner, SettleInput{
		PaymentID:        pay.ID,
		GatewayPaymentID: "pay_other",
		GatewayOrderID:   "order_bogus",
		Signature:        "bad",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPaid, again.Status)
	require.Equal(t, "pay_test", again.GatewayPaymentID)

	callbacks, err := e.store.Payments.ListCallbacks(ctx, pay.ID)
	require.NoError(t, err)
	require.Len(t, callbacks, 2)

	expected := `
# HELP petverse_payment_settlements_total Payment settlements by kind and outcome.
# TYPE petverse_payment_settlements_total counter
petverse_payment_settlements_total{kind="appointment",outcome="paid"} 1
`
	require.NoError(t, testutil.GatherAndCompare(e.metrics.Registry(), strings.NewReader(expected), "petverse_payment_settlements_total"))
	e.dispatch.Wait()
}

func TestReceiptMailedAndArchivedAfterSettle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, appt, pay := bookedAppointment(t, e)
	e.pay(t, owner, pay.ID)
	e.dispatch.Wait()

	sent := e.mail.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, owner.Email, sent[0].To)
	require.Equal(t, "PetVerse - Appointment Payment Successful", sent[0].Subject)
	require.Contains(t, sent[0].Body, fmt.Sprintf("appointment #%d", appt.ID))
	require.Contains(t, sent[0].Body, "INR 500.00")
	require.Len(t, sent[0].Attachments, 1)
	require.True(t, bytes.HasPrefix(sent[0].Attachments[0].Data, []byte("%PDF-")))

	key := fmt.Sprintf("receipts/receipt-%d.pdf", pay.ID)
	_, ok := e.archive.Get(key)
	require.True(t, ok)

	pdf, err := e.payments.Receipt(ctx, owner, pay.ID)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestReceiptRequiresPaidPayment(t *testing.T) {
	e := newEnv(t)
	owner, _, pay := bookedAppointment(t, e)
	_, err := e.payments.Receipt(context.Background(), owner, pay.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestSignatureMismatchFailsPayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, appt, pay := bookedAppointment(t, e)

	p, err := e.payments.InitiateGatewayOrder(ctx, owner, pay.ID)
	require.NoError(t, err)
	failed, err := e.payments.VerifyAndSettle(ctx, owner, SettleInput{
		PaymentID:        p.ID,
		GatewayPaymentID: "pay_test",
		GatewayOrderID:   p.GatewayOrderID,
		Signature:        "deadbeef",
	})
	require.ErrorIs(t, err, ErrGateway)
	require.Equal(t, model.PaymentStatusFailed, failed.Status)
	require.NotEmpty(t, failed.FailureReason)

	got, err := e.booking.Get(ctx, owner, appt.ID)
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusPending, got.Status)

	// a failed payment is never reopened, even with a valid signature
	again, err := e.payments.VerifyAndSettle(ctx, owner, SettleInput{
		PaymentID:        p.ID,
		GatewayPaymentID: "pay_test",
		GatewayOrderID:   p.GatewayOrderID,
		Signature:        e.gw.Sign(p.GatewayOrderID, "pay_test"),
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusFailed, again.Status)

	e.dispatch.Wait()
	require.Empty(t, e.mail.Sent())
}

func TestOrderIDMismatchFailsWithoutVerification(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, _, pay := bookedAppointment(t, e)

	p, err := e.payments.InitiateGatewayOrder(ctx, owner, pay.ID)
	require.NoError(t, err)
	failed, err := e.payments.VerifyAndSettle(ctx, owner, SettleInput{
		PaymentID:        p.ID,
		GatewayPaymentID: "pay_test",
		GatewayOrderID:   "order_someoneelse",
		Signature:        e.gw.Sign("order_someoneelse", "pay_test"),
	})
	require.ErrorIs(t, err, ErrGateway)
	require.Equal(t, model.PaymentStatusFailed, failed.Status)

	callbacks, err := e.store.Payments.ListCallbacks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, callbacks, 1)
	require.Equal(t, "order_mismatch", callbacks[0].Outcome)
}

func TestGatewayDownFailsPayment(t *testing.T) {
	e := newEnvWithGateway(t, downGateway{})
	ctx := context.Background()
	owner, appt, pay := bookedAppointment(t, e)

	failed, err := e.payments.InitiateGatewayOrder(ctx, owner, pay.ID)
	require.ErrorIs(t, err, ErrGateway)
	require.Equal(t, model.PaymentStatusFailed, failed.Status)
	require.Empty(t, failed.GatewayOrderID)

	got, err := e.booking.Get(ctx, owner, appt.ID)
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusPending, got.Status)

	_, err = e.payments.InitiateGatewayOrder(ctx, owner, pay.ID)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}
