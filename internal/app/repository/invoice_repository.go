package repository

import (
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/pkg/logger"
)

type InvoiceRepository interface {
	FindByID(id uint) (*model.PurchaseInvoice, error)
	FindAll(limit, offset int) ([]model.PurchaseInvoice, int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) FindByID(id uint) (*model.PurchaseInvoice, error) {
	var invoice model.PurchaseInvoice
	err := r.db.
		Preload("Supplier").
		Preload("Items").
		First(&invoice, id).Error
	if err != nil {
		logger.Error("Failed to find purchase invoice by ID in database", err, map[string]interface{}{
			"invoice_id": id,
		})
		return nil, err
	}
	return &invoice, nil
}

// FindAll returns one page of invoices plus the total count.
func (r *invoiceRepository) FindAll(limit, offset int) ([]model.PurchaseInvoice, int64, error) {
	logger.Debug("Finding purchase invoices", map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})

	var total int64
	if err := r.db.Model(&model.PurchaseInvoice{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count purchase invoices in database", err, nil)
		return nil, 0, err
	}

	query := r.db.
		Preload("Supplier").
		Preload("Items").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var invoices []model.PurchaseInvoice
	if err := query.Find(&invoices).Error; err != nil {
		logger.Error("Failed to find purchase invoices in database", err, nil)
		return nil, 0, err
	}

	return invoices, total, nil
}
