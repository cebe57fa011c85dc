package repository

import (
	"context"
	"time"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, id uint64) (*model.Payment, error)
	FindOpenFor(ctx context.Context, kind model.PaymentKind, targetID uint64) (*model.Payment, error)
	// SetGatewayOrder stores the remote order id once; 0 rows means another
	// caller stored one first or the payment is no longer pending.
	SetGatewayOrder(ctx context.Context, id uint64, gatewayOrderID string) (int64, error)
	// Settle moves a pending payment to paid or failed; 0 rows means it was
	// already settled.
	Settle(ctx context.Context, id uint64, status model.PaymentStatus, gatewayPaymentID, reason string, at time.Time) (int64, error)
	// FailPendingFor fails every pending payment of kind guarding one of
	// targetIDs.
	FailPendingFor(ctx context.Context, kind model.PaymentKind, targetIDs []uint64, reason string, at time.Time) (int64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error)
	CountPaid(ctx context.Context) (int64, error)
	LogCallback(ctx context.Context, cb *model.GatewayCallback) error
	ListCallbacks(ctx context.Context, paymentID uint64) ([]model.GatewayCallback, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint64) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func paymentRefColumn(kind model.PaymentKind) string {
	switch kind {
	case model.PaymentForAppointment:
		return "appointment_id"
	case model.PaymentForAdoption:
		return "adoption_request_id"
	default:
		return "order_id"
	}
}

// FindOpenFor returns the latest pending or paid payment for a target.
func (r *paymentRepository) FindOpenFor(ctx context.Context, kind model.PaymentKind, targetID uint64) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).
		Where("payment_for = ? AND "+paymentRefColumn(kind)+" = ?", kind, targetID).
		Where("status IN ?", []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusPaid}).
		Order("id DESC").
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) SetGatewayOrder(ctx context.Context, id uint64, gatewayOrderID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ? AND gateway_order_id = ?", id, model.PaymentStatusPending, "").
		Update("gateway_order_id", gatewayOrderID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *paymentRepository) Settle(ctx context.Context, id uint64, status model.PaymentStatus, gatewayPaymentID, reason string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":             status,
			"gateway_payment_id": gatewayPaymentID,
			"failure_reason":     reason,
			"settled_at":         at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *paymentRepository) FailPendingFor(ctx context.Context, kind model.PaymentKind, targetIDs []uint64, reason string, at time.Time) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_for = ? AND "+paymentRefColumn(kind)+" IN ?", kind, targetIDs).
		Where("status = ?", model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentStatusFailed,
			"failure_reason": reason,
			"settled_at":     at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	var list []model.Payment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *paymentRepository) CountPaid(ctx context.Context) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ?", model.PaymentStatusPaid).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *paymentRepository) LogCallback(ctx context.Context, cb *model.GatewayCallback) error {
	return r.db.WithContext(ctx).Create(cb).Error
}

func (r *paymentRepository) ListCallbacks(ctx context.Context, paymentID uint64) ([]model.GatewayCallback, error) {
	var list []model.GatewayCallback
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
