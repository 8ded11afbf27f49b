package models

import (
	"github.com/shopspring/decimal"
)

// OrderItem keeps the unit price the product had at checkout.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Qty       int             `json:"qty" gorm:"not null;default:1;check:qty >= 1"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}
