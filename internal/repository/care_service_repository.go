package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type CareServiceRepository interface {
	CreateCategory(ctx context.Context, c *model.ServiceCategory) error
	FindOrCreateCategory(ctx context.Context, name string) (*model.ServiceCategory, error)
	Create(ctx context.Context, s *model.Service) error
	FindByID(ctx context.Context, id uint64) (*model.Service, error)
	ListActive(ctx context.Context) ([]model.Service, error)
}

type careServiceRepository struct {
	db *gorm.DB
}

func NewCareServiceRepository(db *gorm.DB) CareServiceRepository {
	return &careServiceRepository{db: db}
}

func (r *careServiceRepository) CreateCategory(ctx context.Context, c *model.ServiceCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *careServiceRepository) FindOrCreateCategory(ctx context.Context, name string) (*model.ServiceCategory, error) {
	c := model.ServiceCategory{Name: name, IsActive: true}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *careServiceRepository) Create(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *careServiceRepository) FindByID(ctx context.Context, id uint64) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).Preload("Category").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *careServiceRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	var list []model.Service
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Joins("JOIN service_categories ON service_categories.id = services.category_id").
		Where("services.is_active = ? AND service_categories.is_active = ?", true, true).
		Order("services.name ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
