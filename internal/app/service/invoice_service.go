package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
	"github.com/storely/storely-backend/pkg/util"
)

var (
	ErrInvoiceNotFound = errors.New("purchase invoice not found")
	ErrEmptyInvoice    = errors.New("invoice must contain at least one item")
)

// UnknownProductsError reports every product id an invoice referenced that
// does not exist. The whole request is rejected when any id is unknown.
type UnknownProductsError struct {
	ProductIDs []uint
}

func (e *UnknownProductsError) Error() string {
	return fmt.Sprintf("unknown product ids: %v", e.ProductIDs)
}

type InvoiceItemInput struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
}

type CreateInvoiceInput struct {
	SupplierID   uint               `json:"supplier_id"`
	ReceivedByID uint               `json:"received_by_id"`
	Items        []InvoiceItemInput `json:"items"`
	ShippingCost float64            `json:"shipping_cost"`
	TaxAmount    float64            `json:"tax_amount"`
	Notes        string             `json:"notes"`
}

type InvoiceService interface {
	CreateInvoice(input CreateInvoiceInput) (*model.PurchaseInvoice, error)
	GetInvoiceByID(id uint) (*model.PurchaseInvoice, error)
	ListInvoices(limit, offset int) ([]model.PurchaseInvoice, int64, error)
	CancelInvoice(id uint) error
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	supplierRepo repository.SupplierRepository
	db           *gorm.DB
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	supplierRepo repository.SupplierRepository,
	db *gorm.DB,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		supplierRepo: supplierRepo,
		db:           db,
	}
}

// CreateInvoice records received stock: the invoice row, its items and every
// product's stock increment commit together or not at all.
func (s *invoiceService) CreateInvoice(input CreateInvoiceInput) (*model.PurchaseInvoice, error) {
	logger.Info("Creating purchase invoice", map[string]interface{}{
		"supplier_id": input.SupplierID,
		"item_count":  len(input.Items),
	})

	if len(input.Items) == 0 {
		return nil, ErrEmptyInvoice
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	if _, err := s.supplierRepo.FindByID(input.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invoice creation failed: supplier not found", map[string]interface{}{
				"supplier_id": input.SupplierID,
			})
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during invoice creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"supplier_id": input.SupplierID,
			})
		}
	}()

	// Products are locked and validated inside the transaction so a
	// concurrent delete cannot slip between the check and the increment.
	// The full list of unknown ids is collected before aborting so the
	// response can name every offender, not just the first.
	var (
		unknown      []uint
		subtotal     float64
		invoiceItems []model.PurchaseInvoiceItem
	)
	for _, item := range input.Items {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unknown = append(unknown, item.ProductID)
				continue
			}
			tx.Rollback()
			logger.Error("Failed to fetch product during invoice creation", err, map[string]interface{}{
				"product_id": item.ProductID,
			})
			return nil, err
		}

		lineTotal := item.UnitCost * float64(item.Quantity)
		invoiceItems = append(invoiceItems, model.PurchaseInvoiceItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			LineTotal: lineTotal,
		})
		subtotal += lineTotal

		if err := tx.Model(&model.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to increment product stock", err, map[string]interface{}{
				"product_id": item.ProductID,
			})
			return nil, err
		}
	}

	if len(unknown) > 0 {
		tx.Rollback()
		logger.Warn("Invoice creation failed: unknown products", map[string]interface{}{
			"supplier_id": input.SupplierID,
			"product_ids": unknown,
		})
		return nil, &UnknownProductsError{ProductIDs: unknown}
	}

	invoice := &model.PurchaseInvoice{
		InvoiceNumber: util.GenerateInvoiceNumber(),
		SupplierID:    input.SupplierID,
		ReceivedByID:  input.ReceivedByID,
		Subtotal:      subtotal,
		ShippingCost:  input.ShippingCost,
		TaxAmount:     input.TaxAmount,
		TotalAmount:   subtotal + input.ShippingCost + input.TaxAmount,
		Notes:         input.Notes,
		ReceivedAt:    time.Now(),
		Items:         invoiceItems,
	}

	if err := tx.Create(invoice).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create purchase invoice", err, map[string]interface{}{
			"supplier_id": input.SupplierID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit invoice transaction", err, map[string]interface{}{
			"supplier_id": input.SupplierID,
		})
		return nil, err
	}

	logger.Info("Purchase invoice created", map[string]interface{}{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"total_amount":   invoice.TotalAmount,
	})

	return s.invoiceRepo.FindByID(invoice.ID)
}

func (s *invoiceService) GetInvoiceByID(id uint) (*model.PurchaseInvoice, error) {
	invoice, err := s.invoiceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(limit, offset int) ([]model.PurchaseInvoice, int64, error) {
	return s.invoiceRepo.FindAll(limit, offset)
}

// CancelInvoice reverses each stock increment, clamped at zero so sales made
// since receipt cannot drive stock negative, and soft-deletes the invoice in
// the same transaction.
func (s *invoiceService) CancelInvoice(id uint) error {
	logger.Info("Cancelling purchase invoice", map[string]interface{}{
		"invoice_id": id,
	})

	invoice, err := s.GetInvoiceByID(id)
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during invoice cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"invoice_id": id,
			})
		}
	}()

	for _, item := range invoice.Items {
		if err := tx.Model(&model.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock_quantity",
				gorm.Expr("CASE WHEN stock_quantity > ? THEN stock_quantity - ? ELSE 0 END", item.Quantity, item.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to reverse product stock", err, map[string]interface{}{
				"invoice_id": id,
				"product_id": item.ProductID,
			})
			return err
		}
	}

	if err := tx.Delete(&model.PurchaseInvoice{}, id).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete purchase invoice", err, map[string]interface{}{
			"invoice_id": id,
		})
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit invoice cancellation", err, map[string]interface{}{
			"invoice_id": id,
		})
		return err
	}

	logger.Info("Purchase invoice cancelled", map[string]interface{}{
		"invoice_id": id,
	})
	return nil
}
