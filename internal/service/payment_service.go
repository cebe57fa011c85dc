package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/blob"
	"github.com/shinyyama/petverse-backend/internal/gateway"
	"github.com/shinyyama/petverse-backend/internal/mailer"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type PendingInput struct {
	Kind              model.PaymentKind
	Amount            decimal.Decimal
	ReceiverID        *uint64
	AppointmentID     *uint64
	AdoptionRequestID *uint64
	OrderID           *uint64
}

// SettleInput is what the hosted checkout posts back after the payer
// completes payment.
type SettleInput struct {
	PaymentID        uint64 `json:"paymentId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	Signature        string `json:"signature"`
}

type PaymentConfig struct {
	Currency   string
	Timeout    time.Duration
	Mail       mailer.Sender
	Dispatcher *mailer.Dispatcher
	Archive    blob.Store
	Metrics    *metrics.Recorder
}

type PaymentService interface {
	CreatePending(ctx context.Context, payer *model.User, in PendingInput) (*model.Payment, error)
	CreateAdoptionPayment(ctx context.Context, adopter *model.User, requestID uint64) (*model.Payment, error)
	InitiateGatewayOrder(ctx context.Context, payer *model.User, paymentID uint64) (*model.Payment, error)
	VerifyAndSettle(ctx context.Context, payer *model.User, in SettleInput) (*model.Payment, error)
	Get(ctx context.Context, actor *model.User, paymentID uint64) (*model.Payment, error)
	ListMine(ctx context.Context, payer *model.User) ([]model.Payment, error)
	Receipt(ctx context.Context, actor *model.User, paymentID uint64) ([]byte, error)
	Currency() string
}

type paymentService struct {
	store  *repository.Store
	gw     gateway.Gateway
	notify NotificationService
	cfg    PaymentConfig
	now    func() time.Time
}

func NewPaymentService(store *repository.Store, gw gateway.Gateway, notify NotificationService, cfg PaymentConfig) PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Mail == nil {
		cfg.Mail = mailer.LogSender{}
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = mailer.NewDispatcher(0)
	}
	return &paymentService{store: store, gw: gw, notify: notify, cfg: cfg, now: time.Now}
}

func (s *paymentService) Currency() string {
	return s.cfg.Currency
}

// createPending validates the reference/kind pairing and inserts a pending
// payment through repo, which may be bound to a caller's transaction.
func createPending(ctx context.Context, repo repository.PaymentRepository, p *model.Payment) error {
	refs := 0
	for _, ref := range []*uint64{p.AppointmentID, p.AdoptionRequestID, p.OrderID} {
		if ref != nil {
			refs++
		}
	}
	if refs != 1 {
		return invalid("payment must reference exactly one of appointment, adoption request or order")
	}
	switch {
	case p.Kind == model.PaymentForAppointment && p.AppointmentID != nil:
	case p.Kind == model.PaymentForAdoption && p.AdoptionRequestID != nil:
	case p.Kind == model.PaymentForShop && p.OrderID != nil:
	default:
		return invalid("payment reference does not match kind %q", p.Kind)
	}
	if !p.Amount.IsPositive() {
		return invalid("payment amount must be positive")
	}
	p.Amount = p.Amount.Round(2)
	p.Status = model.PaymentStatusPending
	return repo.Create(ctx, p)
}

func (s *paymentService) CreatePending(ctx context.Context, payer *model.User, in PendingInput) (*model.Payment, error) {
	if payer == nil {
		return nil, ErrForbidden
	}
	p := &model.Payment{
		UserID:            payer.ID,
		ReceiverID:        in.ReceiverID,
		Kind:              in.Kind,
		Amount:            in.Amount,
		Currency:          s.cfg.Currency,
		AppointmentID:     in.AppointmentID,
		AdoptionRequestID: in.AdoptionRequestID,
		OrderID:           in.OrderID,
	}
	if err := createPending(ctx, s.store.Payments, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) CreateAdoptionPayment(ctx context.Context, adopter *model.User, requestID uint64) (*model.Payment, error) {
	if adopter == nil {
		return nil, ErrForbidden
	}
	req, err := s.store.Adoptions.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if req.AdopterID != adopter.ID {
		return nil, ErrNotFound
	}
	if req.Status != model.AdoptionStatusPending || req.FeePaidAt != nil {
		return nil, badTransition("request does not accept a payment")
	}
	party, err := resolveParty(ctx, s.store, req)
	if err != nil {
		return nil, err
	}
	if !party.pet.HasFee() {
		return nil, invalid("this pet has no adoption fee")
	}
	if open, err := s.store.Payments.FindOpenFor(ctx, model.PaymentForAdoption, req.ID); err == nil {
		if open.Status == model.PaymentStatusPending {
			return open, nil
		}
		return nil, badTransition("adoption fee already paid")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.CreatePending(ctx, adopter, PendingInput{
		Kind:              model.PaymentForAdoption,
		Amount:            party.pet.AdoptionFee,
		ReceiverID:        u64(party.counterpartyID),
		AdoptionRequestID: u64(req.ID),
	})
}

func (s *paymentService) owned(ctx context.Context, actor *model.User, paymentID uint64) (*model.Payment, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	p, err := s.store.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if p.UserID != actor.ID && !authz.Can(actor, authz.Administer) {
		return nil, ErrNotFound
	}
	return p, nil
}

// MinorUnits converts an amount to the gateway's integer currency units.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func (s *paymentService) InitiateGatewayOrder(ctx context.Context, payer *model.User, paymentID uint64) (*model.Payment, error) {
	p, err := s.owned(ctx, payer, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusPending {
		return nil, badTransition("payment is %s", p.Status)
	}
	if p.GatewayOrderID != "" {
		return p, nil
	}

	gctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	orderID, err := s.gw.CreateOrder(gctx, MinorUnits(p.Amount), p.Currency, fmt.Sprintf("payment-%d", p.ID))
	if err != nil {
		s.cfg.Metrics.GatewayOrder("error")
		log.Printf("[payment] rid=%s payment=%d stage=gateway_order_fail err=%v", reqctx.RID(ctx), p.ID, err)
		failed, ferr := s.fail(ctx, p, "", "gateway order failed: "+err.Error())
		if ferr != nil {
			return nil, ferr
		}
		return failed, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	s.cfg.Metrics.GatewayOrder("ok")

	n, err := s.store.Payments.SetGatewayOrder(ctx, p.ID, orderID)
	if err != nil {
		return nil, err
	}
	cur, err := s.store.Payments.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if n == 0 && (cur.GatewayOrderID == "" || cur.Status != model.PaymentStatusPending) {
		return nil, badTransition("payment is %s", cur.Status)
	}
	log.Printf("[payment] rid=%s payment=%d stage=gateway_order order=%s", reqctx.RID(ctx), p.ID, cur.GatewayOrderID)
	return cur, nil
}

func (s *paymentService) logCallback(ctx context.Context, in SettleInput, outcome string) {
	payload, _ := json.Marshal(in)
	cb := &model.GatewayCallback{
		PaymentID:        in.PaymentID,
		GatewayOrderID:   in.GatewayOrderID,
		GatewayPaymentID: in.GatewayPaymentID,
		Outcome:          outcome,
		Payload:          datatypes.JSON(payload),
	}
	if err := s.store.Payments.LogCallback(ctx, cb); err != nil {
		log.Printf("[payment] rid=%s payment=%d stage=callback_log err=%v", reqctx.RID(ctx), in.PaymentID, err)
	}
}

func (s *paymentService) VerifyAndSettle(ctx context.Context, payer *model.User, in SettleInput) (*model.Payment, error) {
	p, err := s.owned(ctx, payer, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.Terminal() {
		s.logCallback(ctx, in, "replay")
		return p, nil
	}
	if p.GatewayOrderID == "" || in.GatewayOrderID != p.GatewayOrderID {
		s.logCallback(ctx, in, "order_mismatch")
		failed, err := s.fail(ctx, p, in.GatewayPaymentID, "gateway order id mismatch")
		if err != nil {
			return nil, err
		}
		return failed, ErrGateway
	}
	if err := s.gw.VerifySignature(ctx, in.GatewayPaymentID, p.GatewayOrderID, in.Signature); err != nil {
		s.logCallback(ctx, in, "signature_invalid")
		failed, ferr := s.fail(ctx, p, in.GatewayPaymentID, "signature verification failed: "+err.Error())
		if ferr != nil {
			return nil, ferr
		}
		return failed, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	now := s.now()
	applied, credited := false, false
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Payments.Settle(ctx, p.ID, model.PaymentStatusPaid, in.GatewayPaymentID, "", now)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		applied = true
		credited, err = s.applyPaid(ctx, tx, p, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	cur, err := s.store.Payments.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !applied {
		s.logCallback(ctx, in, "replay")
		return cur, nil
	}
	s.logCallback(ctx, in, "paid")
	log.Printf("[payment] rid=%s payment=%d kind=%s stage=paid amount=%s", reqctx.RID(ctx), cur.ID, cur.Kind, cur.Amount.StringFixed(2))
	s.cfg.Metrics.Settlement(string(cur.Kind), string(model.PaymentStatusPaid))
	s.notify.Notify(ctx, cur.UserID, "payment_paid", "Payment successful",
		fmt.Sprintf("We received %s %s.", cur.Currency, cur.Amount.StringFixed(2)), NotificationRef{PaymentID: u64(cur.ID)})
	if credited {
		s.notify.Notify(ctx, *cur.ReceiverID, "payment_received", "Adoption fee received",
			fmt.Sprintf("An adoption fee of %s %s was credited to you.", cur.Currency, cur.Amount.StringFixed(2)), NotificationRef{PaymentID: u64(cur.ID), AdoptionRequestID: cur.AdoptionRequestID})
	}
	s.sendReceipt(ctx, cur)
	return cur, nil
}

// applyPaid runs the business effect the payment guards, inside the
// settlement transaction. credited reports whether a receiver balance grew.
func (s *paymentService) applyPaid(ctx context.Context, tx *repository.Store, p *model.Payment, now time.Time) (bool, error) {
	rid := reqctx.RID(ctx)
	credited := false
	switch p.Kind {
	case model.PaymentForAppointment:
		n, err := tx.Appointments.Transition(ctx, *p.AppointmentID,
			[]model.AppointmentStatus{model.AppointmentStatusPending}, model.AppointmentStatusConfirmed)
		if err != nil {
			return false, err
		}
		if n == 0 {
			log.Printf("[payment] rid=%s payment=%d stage=confirm_skipped appointment=%d", rid, p.ID, *p.AppointmentID)
		}
	case model.PaymentForAdoption:
		n, err := tx.Adoptions.MarkFeePaid(ctx, *p.AdoptionRequestID, now)
		if err != nil {
			return false, err
		}
		if n == 0 {
			log.Printf("[payment] rid=%s payment=%d stage=credit_skipped request=%d", rid, p.ID, *p.AdoptionRequestID)
			return false, nil
		}
		if p.ReceiverID != nil {
			if err := tx.Balances.Credit(ctx, *p.ReceiverID, p.Amount); err != nil {
				return false, err
			}
			credited = true
		}
	case model.PaymentForShop:
		n, err := tx.Shop.TransitionOrder(ctx, *p.OrderID, model.OrderStatusPending, model.OrderStatusPaid)
		if err != nil {
			return false, err
		}
		if n == 0 {
			log.Printf("[payment] rid=%s payment=%d stage=order_skipped order=%d", rid, p.ID, *p.OrderID)
		}
	}
	return credited, nil
}

// fail settles a pending payment as failed. A shop order follows its
// payment; appointments and adoption requests stay pending for a retry.
func (s *paymentService) fail(ctx context.Context, p *model.Payment, gatewayPaymentID, reason string) (*model.Payment, error) {
	applied := false
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Payments.Settle(ctx, p.ID, model.PaymentStatusFailed, gatewayPaymentID, reason, s.now())
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		applied = true
		if p.Kind != model.PaymentForShop || p.OrderID == nil {
			return nil
		}
		n, err = tx.Shop.TransitionOrder(ctx, *p.OrderID, model.OrderStatusPending, model.OrderStatusFailed)
		if err != nil || n == 0 {
			return err
		}
		return restockOrder(ctx, tx, *p.OrderID)
	})
	if err != nil {
		return nil, err
	}
	cur, err := s.store.Payments.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if applied {
		log.Printf("[payment] rid=%s payment=%d kind=%s stage=failed reason=%q", reqctx.RID(ctx), p.ID, p.Kind, reason)
		s.cfg.Metrics.Settlement(string(p.Kind), string(model.PaymentStatusFailed))
		s.notify.Notify(ctx, p.UserID, "payment_failed", "Payment failed",
			"Your payment could not be completed. Please retry.", NotificationRef{PaymentID: u64(p.ID)})
	}
	return cur, nil
}

func (s *paymentService) Get(ctx context.Context, actor *model.User, paymentID uint64) (*model.Payment, error) {
	return s.owned(ctx, actor, paymentID)
}

func (s *paymentService) ListMine(ctx context.Context, payer *model.User) ([]model.Payment, error) {
	if payer == nil {
		return nil, ErrForbidden
	}
	return s.store.Payments.ListByUser(ctx, payer.ID)
}

func (s *paymentService) Receipt(ctx context.Context, actor *model.User, paymentID uint64) ([]byte, error) {
	p, err := s.owned(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusPaid {
		return nil, badTransition("payment is %s", p.Status)
	}
	doc, err := s.buildReceipt(ctx, p)
	if err != nil {
		return nil, err
	}
	return doc.render()
}
