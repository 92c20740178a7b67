package model

import (
	"time"
)

// Review is one user's rating of one product. Only approved reviews count
// toward the product's aggregated rating. The unique composite index backs
// the one-review-per-(user, product) rule at the store level; deletes are
// hard so a removed review frees the slot.
type Review struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	UserID     uint   `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"user_id"`
	ProductID  uint   `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"product_id"`
	Rating     int    `gorm:"not null" json:"rating"`
	Title      string `json:"title"`
	Comment    string `gorm:"type:text" json:"comment"`
	IsApproved bool   `gorm:"default:false" json:"is_approved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
