package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	CategoryID uint            `json:"category_id" gorm:"not null;index"`
	Category   *Category       `json:"category,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Name       string          `json:"name" gorm:"size:200;not null"`
	Slug       string          `json:"slug" gorm:"size:220;uniqueIndex;not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Image      *string         `json:"image" gorm:"size:255"`
	CreatedAt  time.Time       `json:"created_at"`
}
