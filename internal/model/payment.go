package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentKind string

const (
	PaymentForAppointment PaymentKind = "appointment"
	PaymentForAdoption    PaymentKind = "adoption"
	PaymentForShop        PaymentKind = "shop"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment references exactly one of appointment, adoption request or order,
// matching Kind. Status leaves pending once and never changes again.
type Payment struct {
	ID                uint64              `gorm:"primaryKey;autoIncrement"`
	UserID            uint64              `gorm:"column:user_id;index;not null"`
	ReceiverID        *uint64             `gorm:"column:receiver_id;index"`
	Receiver          *User               `gorm:"foreignKey:ReceiverID;constraint:OnDelete:SET NULL"`
	Kind              PaymentKind         `gorm:"column:payment_for;size:16;not null"`
	Amount            decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Currency          string              `gorm:"size:8;not null"`
	Status            PaymentStatus       `gorm:"size:16;not null;index"`
	AppointmentID     *uint64             `gorm:"column:appointment_id;index"`
	Appointment       *ServiceAppointment `gorm:"foreignKey:AppointmentID;constraint:OnDelete:SET NULL"`
	AdoptionRequestID *uint64             `gorm:"column:adoption_request_id;index"`
	AdoptionRequest   *AdoptionRequest    `gorm:"foreignKey:AdoptionRequestID;constraint:OnDelete:SET NULL"`
	OrderID           *uint64             `gorm:"column:order_id;index"`
	Order             *Order              `gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
	GatewayOrderID    string              `gorm:"column:gateway_order_id;size:64;index"`
	GatewayPaymentID  string              `gorm:"column:gateway_payment_id;size:64"`
	FailureReason     string              `gorm:"column:failure_reason;size:255"`
	SettledAt         *time.Time          `gorm:"column:settled_at"`
	CreatedAt         time.Time           `gorm:"autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusFailed
}

// TargetID returns the id of the referenced record for the payment's kind.
func (p *Payment) TargetID() uint64 {
	var ref *uint64
	switch p.Kind {
	case PaymentForAppointment:
		ref = p.AppointmentID
	case PaymentForAdoption:
		ref = p.AdoptionRequestID
	case PaymentForShop:
		ref = p.OrderID
	}
	if ref == nil {
		return 0
	}
	return *ref
}

// GatewayCallback records every settlement attempt as received.
type GatewayCallback struct {
	ID               uint64         `gorm:"primaryKey;autoIncrement"`
	PaymentID        uint64         `gorm:"column:payment_id;index;not null"`
	GatewayOrderID   string         `gorm:"column:gateway_order_id;size:64"`
	GatewayPaymentID string         `gorm:"column:gateway_payment_id;size:64"`
	Outcome          string         `gorm:"size:32;not null"`
	Payload          datatypes.JSON `gorm:"type:json"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
}

func (GatewayCallback) TableName() string {
	return "gateway_callbacks"
}
