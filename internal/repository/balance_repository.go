package repository

import (
	"context"

	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository interface {
	Credit(ctx context.Context, userID uint64, amount decimal.Decimal) error
	// Debit subtracts amount when the balance covers it; gorm.ErrRecordNotFound
	// otherwise.
	Debit(ctx context.Context, userID uint64, amount decimal.Decimal) error
	Get(ctx context.Context, userID uint64) (*model.PayeeBalance, error)
}

type balanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) Credit(ctx context.Context, userID uint64, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
	}).Create(&model.PayeeBalance{UserID: userID, Balance: amount}).Error
}

func (r *balanceRepository) Debit(ctx context.Context, userID uint64, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.PayeeBalance{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *balanceRepository) Get(ctx context.Context, userID uint64) (*model.PayeeBalance, error) {
	var b model.PayeeBalance
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&b, &model.PayeeBalance{UserID: userID, Balance: decimal.Zero}).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
