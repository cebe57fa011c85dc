package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"gorm.io/gorm"
)

type ShopRepository interface {
	FindOrCreateCategory(ctx context.Context, name string) (*model.ProductCategory, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	FindProductByID(ctx context.Context, id uint64) (*model.Product, error)
	ListActiveProducts(ctx context.Context, limit, offset int) ([]model.Product, int64, error)
	// CreateOrder inserts the order together with its items.
	CreateOrder(ctx context.Context, o *model.Order) error
	FindOrderByID(ctx context.Context, id uint64) (*model.Order, error)
	FindOrderByToken(ctx context.Context, token string) (*model.Order, error)
	// TakeStock decrements stock only when at least qty units remain.
	TakeStock(ctx context.Context, productID uint64, qty int) (int64, error)
	ReturnStock(ctx context.Context, productID uint64, qty int) error
	ListOrdersByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	TransitionOrder(ctx context.Context, id uint64, from, to model.OrderStatus) (int64, error)
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) FindOrCreateCategory(ctx context.Context, name string) (*model.ProductCategory, error) {
	c := model.ProductCategory{Name: name, IsActive: true}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *shopRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *shopRepository) FindProductByID(ctx context.Context, id uint64) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *shopRepository) ListActiveProducts(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	var (
		list  []model.Product
		total int64
	)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&model.Product{}).
			Joins("JOIN product_categories ON product_categories.id = products.category_id").
			Where("products.is_active = ? AND product_categories.is_active = ?", true, true)
	}
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := base().
		Preload("Category").
		Order("products.created_at DESC, products.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *shopRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *shopRepository) FindOrderByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *shopRepository) FindOrderByToken(ctx context.Context, token string) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("cart_token = ?", token).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *shopRepository) TakeStock(ctx context.Context, productID uint64, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *shopRepository) ReturnStock(ctx context.Context, productID uint64, qty int) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *shopRepository) ListOrdersByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *shopRepository) TransitionOrder(ctx context.Context, id uint64, from, to model.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
