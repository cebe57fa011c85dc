package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.ServiceAppointment) error
	FindByID(ctx context.Context, id uint64) (*model.ServiceAppointment, error)
	// Transition moves an appointment to status only from one of from.
	Transition(ctx context.Context, id uint64, from []model.AppointmentStatus, to model.AppointmentStatus) (int64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.ServiceAppointment, error)
	ListAll(ctx context.Context, limit int) ([]model.ServiceAppointment, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.ServiceAppointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uint64) (*model.ServiceAppointment, error) {
	var a model.ServiceAppointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("OwnedPet.Pet").
		First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Transition(ctx context.Context, id uint64, from []model.AppointmentStatus, to model.AppointmentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ServiceAppointment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID uint64) ([]model.ServiceAppointment, error) {
	var list []model.ServiceAppointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("OwnedPet.Pet").
		Where("user_id = ?", userID).
		Order("appointment_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *appointmentRepository) ListAll(ctx context.Context, limit int) ([]model.ServiceAppointment, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var list []model.ServiceAppointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Order("appointment_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
