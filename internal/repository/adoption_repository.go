package repository

import (
	"context"
	"time"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type AdoptionRepository interface {
	Create(ctx context.Context, r *model.AdoptionRequest) error
	FindByID(ctx context.Context, id uint64) (*model.AdoptionRequest, error)
	FindPending(ctx context.Context, adopterID uint64, petID, ownedPetID *uint64) (*model.AdoptionRequest, error)
	// Resolve moves a pending request to status; 0 rows means it was no
	// longer pending.
	Resolve(ctx context.Context, id uint64, status model.AdoptionStatus, actorID uint64, at time.Time) (int64, error)
	DeclineCompeting(ctx context.Context, winnerID uint64, petID, ownedPetID *uint64, actorID uint64, at time.Time) ([]uint64, error)
	// MarkFeePaid records the fee on a request that is still pending; 0 rows
	// means it was resolved or already paid.
	MarkFeePaid(ctx context.Context, id uint64, at time.Time) (int64, error)
	ListByAdopter(ctx context.Context, adopterID uint64) ([]model.AdoptionRequest, error)
	ListForShelter(ctx context.Context, shelterID uint64) ([]model.AdoptionRequest, error)
	ListForOwner(ctx context.Context, ownerID uint64) ([]model.AdoptionRequest, error)
	ListAll(ctx context.Context, limit int) ([]model.AdoptionRequest, error)
	CountApprovedForPet(ctx context.Context, petID uint64) (int64, error)
	CountByStatus(ctx context.Context) (map[model.AdoptionStatus]int64, error)
}

type adoptionRepository struct {
	db *gorm.DB
}

func NewAdoptionRepository(db *gorm.DB) AdoptionRepository {
	return &adoptionRepository{db: db}
}

func (r *adoptionRepository) Create(ctx context.Context, req *model.AdoptionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *adoptionRepository) FindByID(ctx context.Context, id uint64) (*model.AdoptionRequest, error) {
	var req model.AdoptionRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func targetScope(petID, ownedPetID *uint64) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if petID != nil {
			return q.Where("pet_id = ?", *petID)
		}
		return q.Where("owned_pet_id = ?", *ownedPetID)
	}
}

func (r *adoptionRepository) FindPending(ctx context.Context, adopterID uint64, petID, ownedPetID *uint64) (*model.AdoptionRequest, error) {
	var req model.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Scopes(targetScope(petID, ownedPetID)).
		Where("adopter_id = ? AND status = ?", adopterID, model.AdoptionStatusPending).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *adoptionRepository) Resolve(ctx context.Context, id uint64, status model.AdoptionStatus, actorID uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AdoptionRequest{}).
		Where("id = ? AND status = ?", id, model.AdoptionStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"pending_key":    nil,
			"resolved_by_id": actorID,
			"resolved_at":    at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeclineCompeting declines every other pending request for the same target
// and returns their ids.
func (r *adoptionRepository) DeclineCompeting(ctx context.Context, winnerID uint64, petID, ownedPetID *uint64, actorID uint64, at time.Time) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&model.AdoptionRequest{}).
		Scopes(targetScope(petID, ownedPetID)).
		Where("id <> ? AND status = ?", winnerID, model.AdoptionStatusPending).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&model.AdoptionRequest{}).
		Where("id IN ? AND status = ?", ids, model.AdoptionStatusPending).
		Updates(map[string]interface{}{
			"status":         model.AdoptionStatusDeclined,
			"pending_key":    nil,
			"resolved_by_id": actorID,
			"resolved_at":    at,
		}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *adoptionRepository) MarkFeePaid(ctx context.Context, id uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AdoptionRequest{}).
		Where("id = ? AND status = ? AND fee_paid_at IS NULL", id, model.AdoptionStatusPending).
		Update("fee_paid_at", at)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *adoptionRepository) ListByAdopter(ctx context.Context, adopterID uint64) ([]model.AdoptionRequest, error) {
	var list []model.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Where("adopter_id = ?", adopterID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *adoptionRepository) ListForShelter(ctx context.Context, shelterID uint64) ([]model.AdoptionRequest, error) {
	var list []model.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Joins("JOIN pets ON pets.id = adoption_requests.pet_id").
		Where("pets.added_by_id = ?", shelterID).
		Order("adoption_requests.id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *adoptionRepository) ListForOwner(ctx context.Context, ownerID uint64) ([]model.AdoptionRequest, error) {
	var list []model.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Joins("JOIN owned_pets ON owned_pets.id = adoption_requests.owned_pet_id").
		Where("owned_pets.owner_id = ?", ownerID).
		Order("adoption_requests.id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *adoptionRepository) ListAll(ctx context.Context, limit int) ([]model.AdoptionRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var list []model.AdoptionRequest
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *adoptionRepository) CountApprovedForPet(ctx context.Context, petID uint64) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.AdoptionRequest{}).
		Where("pet_id = ? AND status = ?", petID, model.AdoptionStatusApproved).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *adoptionRepository) CountByStatus(ctx context.Context) (map[model.AdoptionStatus]int64, error) {
	var rows []struct {
		Status model.AdoptionStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.AdoptionRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.AdoptionStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
