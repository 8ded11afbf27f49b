package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"size:150;not null"`
	Phone            string          `json:"phone" gorm:"size:20;not null"`
	Email            string          `json:"email" gorm:"size:254;not null"`
	Address          string          `json:"address" gorm:"type:text;not null"`
	City             string          `json:"city" gorm:"size:80;not null"`
	PostalCode       string          `json:"postal_code" gorm:"size:12;not null"`
	PaymentMethod    string          `json:"payment_method" gorm:"size:10;not null;default:'COD'"` // COD, UPI
	Total            decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null;default:0"`
	Status           string          `json:"status" gorm:"size:24;not null;default:'pending'"` // pending, awaiting_confirmation, paid, cancelled
	PaymentReference string          `json:"payment_reference" gorm:"size:120;not null;default:''"`
	OrderCode        string          `json:"order_code" gorm:"<-:create;size:12;uniqueIndex;not null"`
	Items            []OrderItem     `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BeforeCreate assigns the order code on first persistence.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderCode != "" {
		return nil
	}
	code, err := NewOrderCode()
	if err != nil {
		return err
	}
	o.OrderCode = code
	return nil
}

type OrderStatus string

const (
	OrderPending              OrderStatus = "pending"
	OrderAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	OrderPaid                 OrderStatus = "paid"
	OrderCancelled            OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderAwaitingConfirmation, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD PaymentMethod = "COD"
	PaymentUPI PaymentMethod = "UPI"
)
