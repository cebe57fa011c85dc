package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type PetRepository interface {
	Create(ctx context.Context, p *model.Pet) error
	FindByID(ctx context.Context, id uint64) (*model.Pet, error)
	// UpdateDetails rewrites the editable fields of p; availability and
	// AddedByID are left alone.
	UpdateDetails(ctx context.Context, p *model.Pet) error
	SetAvailability(ctx context.Context, id uint64, available bool) error
	// MarkAdopted flips an available pet to unavailable; 0 rows means it was
	// no longer available.
	MarkAdopted(ctx context.Context, id uint64) (int64, error)
	Delete(ctx context.Context, id uint64) error
	ListAvailable(ctx context.Context) ([]model.Pet, error)
	ListByAddedBy(ctx context.Context, userID uint64) ([]model.Pet, error)
	Count(ctx context.Context) (int64, error)
}

type petRepository struct {
	db *gorm.DB
}

func NewPetRepository(db *gorm.DB) PetRepository {
	return &petRepository{db: db}
}

func (r *petRepository) Create(ctx context.Context, p *model.Pet) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *petRepository) FindByID(ctx context.Context, id uint64) (*model.Pet, error) {
	var p model.Pet
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *petRepository) UpdateDetails(ctx context.Context, p *model.Pet) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("name", "category", "description", "image_url", "adoption_fee", "updated_at").
		Updates(p).Error
}

func (r *petRepository) SetAvailability(ctx context.Context, id uint64, available bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Pet{}).
		Where("id = ?", id).
		Update("is_available", available).Error
}

func (r *petRepository) MarkAdopted(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Pet{}).
		Where("id = ? AND is_available = ?", id, true).
		Update("is_available", false)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *petRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.Pet{}, id).Error
}

// ListAvailable returns shelter pets open for adoption, newest first.
func (r *petRepository) ListAvailable(ctx context.Context) ([]model.Pet, error) {
	var list []model.Pet
	if err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *petRepository) ListByAddedBy(ctx context.Context, userID uint64) ([]model.Pet, error) {
	var list []model.Pet
	if err := r.db.WithContext(ctx).
		Where("added_by_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *petRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Pet{}).Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
