package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:80;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

type Product struct {
	ID          uint64           `gorm:"primaryKey;autoIncrement"`
	CategoryID  uint64           `gorm:"column:category_id;index;not null"`
	Category    *ProductCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Name        string           `gorm:"size:200;not null"`
	Description string           `gorm:"type:text"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Stock       int              `gorm:"not null;default:0"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	UserID    uint64          `gorm:"column:user_id;index;not null"`
	User      *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status    OrderStatus     `gorm:"size:16;not null;index"`
	CartToken string          `gorm:"column:cart_token;size:64;uniqueIndex;not null"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot taken at checkout; it does not follow later
// product edits.
type OrderItem struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID     uint64          `gorm:"column:order_id;index;not null"`
	ProductID   uint64          `gorm:"column:product_id;index;not null"`
	ProductName string          `gorm:"column:product_name;size:200;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity    int             `gorm:"not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
