package model

import (
	"time"

	"gorm.io/gorm"
)

type Supplier struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"not null;index" json:"name"`
	ContactPerson string         `json:"contact_person"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product         `gorm:"foreignKey:SupplierID" json:"-"`
	Invoices []PurchaseInvoice `gorm:"foreignKey:SupplierID" json:"-"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
