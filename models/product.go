package models

import "github.com/google/uuid"

// Category groups inventory items
type Category struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Products []ProductInventory `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductInventory is one stocked item in a tenant's inventory
type ProductInventory struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	ProductID   uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"product_id"`
	ProductName string    `gorm:"size:255;not null" json:"product_name"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Description string    `gorm:"type:text" json:"description"`

	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
