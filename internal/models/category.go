package models

type Category struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Name     string    `json:"name" gorm:"size:100;not null"`
	Slug     string    `json:"slug" gorm:"size:120;uniqueIndex;not null"`
	Products []Product `json:"products,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
