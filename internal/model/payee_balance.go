package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayeeBalance accumulates adoption fees received by shelters and owners.
type PayeeBalance struct {
	UserID    uint64          `gorm:"column:user_id;primaryKey"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (PayeeBalance) TableName() string {
	return "payee_balances"
}
