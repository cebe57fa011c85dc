package repository

import (
	"context"
	"time"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type OwnedPetRepository interface {
	Create(ctx context.Context, o *model.OwnedPet) error
	FindByID(ctx context.Context, id uint64) (*model.OwnedPet, error)
	FindActiveByPet(ctx context.Context, petID uint64) (*model.OwnedPet, error)
	ListActiveByOwner(ctx context.Context, ownerID uint64) ([]model.OwnedPet, error)
	ListListed(ctx context.Context) ([]model.OwnedPet, error)
	SetListing(ctx context.Context, id, ownerID uint64, listed bool) (int64, error)
	// Retire ends an active possession; 0 rows means it was already retired.
	Retire(ctx context.Context, id uint64, at time.Time) (int64, error)
}

type ownedPetRepository struct {
	db *gorm.DB
}

func NewOwnedPetRepository(db *gorm.DB) OwnedPetRepository {
	return &ownedPetRepository{db: db}
}

func (r *ownedPetRepository) Create(ctx context.Context, o *model.OwnedPet) error {
	if o.RetiredAt == nil && o.ActivePetID == nil {
		pid := o.PetID
		o.ActivePetID = &pid
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *ownedPetRepository) FindByID(ctx context.Context, id uint64) (*model.OwnedPet, error) {
	var o model.OwnedPet
	if err := r.db.WithContext(ctx).Preload("Pet").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ownedPetRepository) FindActiveByPet(ctx context.Context, petID uint64) (*model.OwnedPet, error) {
	var o model.OwnedPet
	if err := r.db.WithContext(ctx).
		Where("pet_id = ? AND retired_at IS NULL", petID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ownedPetRepository) ListActiveByOwner(ctx context.Context, ownerID uint64) ([]model.OwnedPet, error) {
	var list []model.OwnedPet
	if err := r.db.WithContext(ctx).
		Preload("Pet").
		Where("owner_id = ? AND retired_at IS NULL", ownerID).
		Order("acquired_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ownedPetRepository) ListListed(ctx context.Context) ([]model.OwnedPet, error) {
	var list []model.OwnedPet
	if err := r.db.WithContext(ctx).
		Preload("Pet").
		Where("is_listed_for_adoption = ? AND retired_at IS NULL", true).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ownedPetRepository) SetListing(ctx context.Context, id, ownerID uint64, listed bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.OwnedPet{}).
		Where("id = ? AND owner_id = ? AND retired_at IS NULL", id, ownerID).
		Update("is_listed_for_adoption", listed)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ownedPetRepository) Retire(ctx context.Context, id uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.OwnedPet{}).
		Where("id = ? AND retired_at IS NULL", id).
		Updates(map[string]interface{}{
			"retired_at":             at,
			"active_pet_id":          nil,
			"is_listed_for_adoption": false,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
