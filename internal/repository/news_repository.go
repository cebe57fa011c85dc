package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type NewsRepository interface {
	Create(ctx context.Context, n *model.News) error
	ListLatest(ctx context.Context, limit int) ([]model.News, error)
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, n *model.News) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *newsRepository) ListLatest(ctx context.Context, limit int) ([]model.News, error) {
	var list []model.News
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
