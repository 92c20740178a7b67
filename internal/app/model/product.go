package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID            uint     `gorm:"primarykey" json:"id"`
	Name          string   `gorm:"not null;index" json:"name"`
	Description   string   `gorm:"type:text" json:"description"`
	Price         float64  `gorm:"not null" json:"price"`
	StockQuantity int      `gorm:"default:0" json:"stock_quantity"`
	ImageURLs     []string `gorm:"serializer:json" json:"image_urls"`
	CategoryID    *uint    `gorm:"index" json:"category_id,omitempty"`
	BrandID       *uint    `gorm:"index" json:"brand_id,omitempty"`
	SupplierID    *uint    `gorm:"index" json:"supplier_id,omitempty"`

	// Derived from approved reviews, recomputed on every review mutation
	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	IsFeatured bool `gorm:"default:false" json:"is_featured"`
	IsActive   bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand    *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
	Reviews    []Review    `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
