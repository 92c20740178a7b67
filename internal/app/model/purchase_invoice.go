package model

import (
	"time"

	"gorm.io/gorm"
)

// PurchaseInvoice records stock received from a supplier. Creation increments
// product stock; cancellation reverses it.
type PurchaseInvoice struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	InvoiceNumber string `gorm:"uniqueIndex;not null" json:"invoice_number"`
	SupplierID    uint   `gorm:"not null;index" json:"supplier_id"`

	// The admin who booked the delivery
	ReceivedByID uint `gorm:"not null;index" json:"received_by_id"`

	Subtotal     float64 `gorm:"not null" json:"subtotal"`
	ShippingCost float64 `gorm:"default:0" json:"shipping_cost"`
	TaxAmount    float64 `gorm:"default:0" json:"tax_amount"`
	TotalAmount  float64 `gorm:"not null" json:"total_amount"`

	Notes      string    `gorm:"type:text" json:"notes"`
	ReceivedAt time.Time `json:"received_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Supplier   Supplier              `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	ReceivedBy User                  `gorm:"foreignKey:ReceivedByID" json:"received_by,omitempty"`
	Items      []PurchaseInvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (PurchaseInvoice) TableName() string {
	return "purchase_invoices"
}

type PurchaseInvoiceItem struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	InvoiceID uint    `gorm:"not null;index" json:"invoice_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitCost  float64 `gorm:"not null" json:"unit_cost"`
	LineTotal float64 `gorm:"not null" json:"line_total"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (PurchaseInvoiceItem) TableName() string {
	return "purchase_invoice_items"
}
