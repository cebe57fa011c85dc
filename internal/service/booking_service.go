package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var adopterSurcharge = decimal.RequireFromString("1.15")

// AppointmentPrice is what a user of the given role pays for a service
// listed at price. Adopters pay a 15% surcharge.
func AppointmentPrice(role model.Role, price decimal.Decimal) decimal.Decimal {
	if role == model.RoleAdopter {
		return price.Mul(adopterSurcharge).Round(2)
	}
	return price.Round(2)
}

type BookInput struct {
	OwnedPetID uint64
	ServiceID  uint64
	// Date is YYYY-MM-DD and Time is HH:MM, both in the clinic's time zone.
	Date  string
	Time  string
	Notes string
}

type ServiceInput struct {
	Category        string
	Name            string
	Description     string
	Price           decimal.Decimal
	DurationMinutes int
}

type ConfirmInput struct {
	PaymentID        uint64
	GatewayPaymentID string
	Signature        string
}

type BookingService interface {
	Book(ctx context.Context, user *model.User, in BookInput) (*model.ServiceAppointment, *model.Payment, error)
	Confirm(ctx context.Context, user *model.User, in ConfirmInput) (*model.Payment, error)
	RetryPayment(ctx context.Context, user *model.User, appointmentID uint64) (*model.Payment, error)
	Complete(ctx context.Context, actor *model.User, appointmentID uint64) (*model.ServiceAppointment, error)
	Cancel(ctx context.Context, actor *model.User, appointmentID uint64) (*model.ServiceAppointment, error)
	Get(ctx context.Context, actor *model.User, appointmentID uint64) (*model.ServiceAppointment, error)
	ListMine(ctx context.Context, user *model.User) ([]model.ServiceAppointment, error)
	ListAll(ctx context.Context, actor *model.User, limit int) ([]model.ServiceAppointment, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	CreateService(ctx context.Context, actor *model.User, in ServiceInput) (*model.Service, error)
}

type bookingService struct {
	store    *repository.Store
	payments PaymentService
	notify   NotificationService
	metrics  *metrics.Recorder
	loc      *time.Location
	currency string
	now      func() time.Time
}

func NewBookingService(store *repository.Store, payments PaymentService, notify NotificationService, loc *time.Location, rec *metrics.Recorder) BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{
		store:    store,
		payments: payments,
		notify:   notify,
		metrics:  rec,
		loc:      loc,
		currency: payments.Currency(),
		now:      time.Now,
	}
}

func (s *bookingService) parseSlot(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, invalid("date and time are required")
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.loc)
	if err != nil {
		return time.Time{}, invalid("invalid date or time %q %q", date, clock)
	}
	if !at.After(s.now()) {
		return time.Time{}, invalid("appointment must be in the future")
	}
	return at, nil
}

func (s *bookingService) Book(ctx context.Context, user *model.User, in BookInput) (*model.ServiceAppointment, *model.Payment, error) {
	if !authz.Can(user, authz.BookService) {
		return nil, nil, ErrForbidden
	}
	at, err := s.parseSlot(in.Date, in.Time)
	if err != nil {
		return nil, nil, err
	}
	svc, err := s.store.CareServices.FindByID(ctx, in.ServiceID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if !svc.IsActive {
		return nil, nil, ErrNotFound
	}
	owned, err := s.store.OwnedPets.FindByID(ctx, in.OwnedPetID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if owned.OwnerID != user.ID || !owned.Active() {
		return nil, nil, ErrNotFound
	}

	appt := &model.ServiceAppointment{
		UserID:        user.ID,
		OwnedPetID:    owned.ID,
		ServiceID:     svc.ID,
		AppointmentAt: at,
		Notes:         strings.TrimSpace(in.Notes),
		Status:        model.AppointmentStatusPending,
	}
	pay := &model.Payment{
		UserID:   user.ID,
		Kind:     model.PaymentForAppointment,
		Amount:   AppointmentPrice(user.Role, svc.Price),
		Currency: s.currency,
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Appointments.Create(ctx, appt); err != nil {
			return err
		}
		pay.AppointmentID = u64(appt.ID)
		return createPending(ctx, tx.Payments, pay)
	})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[booking] rid=%s actor=%d appointment=%d service=%d payment=%d amount=%s stage=booked",
		reqctx.RID(ctx), user.ID, appt.ID, svc.ID, pay.ID, pay.Amount.StringFixed(2))
	s.metrics.Booking()
	return appt, pay, nil
}

func (s *bookingService) Confirm(ctx context.Context, user *model.User, in ConfirmInput) (*model.Payment, error) {
	p, err := s.payments.Get(ctx, user, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.Kind != model.PaymentForAppointment {
		return nil, invalid("payment %d is not an appointment payment", p.ID)
	}
	return s.payments.VerifyAndSettle(ctx, user, SettleInput{
		PaymentID:        p.ID,
		GatewayPaymentID: in.GatewayPaymentID,
		GatewayOrderID:   p.GatewayOrderID,
		Signature:        in.Signature,
	})
}

func (s *bookingService) load(ctx context.Context, actor *model.User, id uint64) (*model.ServiceAppointment, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	a, err := s.store.Appointments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if a.UserID != actor.ID && !authz.Can(actor, authz.Administer) {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *bookingService) Get(ctx context.Context, actor *model.User, appointmentID uint64) (*model.ServiceAppointment, error) {
	return s.load(ctx, actor, appointmentID)
}

func (s *bookingService) RetryPayment(ctx context.Context, user *model.User, appointmentID uint64) (*model.Payment, error) {
	a, err := s.load(ctx, user, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.UserID != user.ID {
		return nil, ErrForbidden
	}
	if a.Status != model.AppointmentStatusPending {
		return nil, badTransition("appointment is %s", a.Status)
	}
	open, err := s.store.Payments.FindOpenFor(ctx, model.PaymentForAppointment, a.ID)
	switch {
	case err == nil && open.Status == model.PaymentStatusPending:
		return open, nil
	case err == nil:
		return nil, badTransition("appointment is already paid")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if a.Service == nil {
		return nil, ErrNotFound
	}
	return s.payments.CreatePending(ctx, user, PendingInput{
		Kind:          model.PaymentForAppointment,
		Amount:        AppointmentPrice(user.Role, a.Service.Price),
		AppointmentID: u64(a.ID),
	})
}

func (s *bookingService) Complete(ctx context.Context, actor *model.User, appointmentID uint64) (*model.ServiceAppointment, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, ErrForbidden
	}
	a, err := s.load(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	n, err := s.store.Appointments.Transition(ctx, a.ID,
		[]model.AppointmentStatus{model.AppointmentStatusConfirmed}, model.AppointmentStatusCompleted)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, badTransition("appointment is %s", a.Status)
	}
	log.Printf("[booking] rid=%s actor=%d appointment=%d stage=completed", reqctx.RID(ctx), actor.ID, a.ID)
	s.notify.Notify(ctx, a.UserID, "appointment_completed", "Appointment completed",
		"Thanks for visiting. Your appointment is marked complete.", NotificationRef{AppointmentID: u64(a.ID)})
	return s.store.Appointments.FindByID(ctx, a.ID)
}

func (s *bookingService) Cancel(ctx context.Context, actor *model.User, appointmentID uint64) (*model.ServiceAppointment, error) {
	a, err := s.load(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	from := []model.AppointmentStatus{model.AppointmentStatusPending}
	if authz.Can(actor, authz.Administer) {
		from = append(from, model.AppointmentStatusConfirmed)
	}
	now := s.now()
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Appointments.Transition(ctx, a.ID, from, model.AppointmentStatusCancelled)
		if err != nil {
			return err
		}
		if n == 0 {
			return badTransition("appointment is %s", a.Status)
		}
		open, err := tx.Payments.FindOpenFor(ctx, model.PaymentForAppointment, a.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if open.Status == model.PaymentStatusPending {
			_, err = tx.Payments.Settle(ctx, open.ID, model.PaymentStatusFailed, "", "appointment cancelled", now)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[booking] rid=%s actor=%d appointment=%d stage=cancelled", reqctx.RID(ctx), actor.ID, a.ID)
	if actor.ID != a.UserID {
		s.notify.Notify(ctx, a.UserID, "appointment_cancelled", "Appointment cancelled",
			fmt.Sprintf("Your appointment on %s was cancelled.", a.AppointmentAt.In(s.loc).Format("02 Jan 2006 15:04")),
			NotificationRef{AppointmentID: u64(a.ID)})
	}
	return s.store.Appointments.FindByID(ctx, a.ID)
}

func (s *bookingService) ListMine(ctx context.Context, user *model.User) ([]model.ServiceAppointment, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	return s.store.Appointments.ListByUser(ctx, user.ID)
}

func (s *bookingService) ListAll(ctx context.Context, actor *model.User, limit int) ([]model.ServiceAppointment, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, ErrForbidden
	}
	return s.store.Appointments.ListAll(ctx, limit)
}

func (s *bookingService) ListServices(ctx context.Context) ([]model.Service, error) {
	return s.store.CareServices.ListActive(ctx)
}

func (s *bookingService) CreateService(ctx context.Context, actor *model.User, in ServiceInput) (*model.Service, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, invalid("name and category are required")
	}
	if !in.Price.IsPositive() {
		return nil, invalid("price must be positive")
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 30
	}
	var svc *model.Service
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		cat, err := tx.CareServices.FindOrCreateCategory(ctx, strings.TrimSpace(in.Category))
		if err != nil {
			return err
		}
		svc = &model.Service{
			CategoryID:      cat.ID,
			Name:            strings.TrimSpace(in.Name),
			Description:     strings.TrimSpace(in.Description),
			Price:           in.Price.Round(2),
			DurationMinutes: in.DurationMinutes,
			IsActive:        true,
		}
		return tx.CareServices.Create(ctx, svc)
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
