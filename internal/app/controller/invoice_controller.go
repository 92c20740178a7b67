package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/storely-backend/internal/app/service"
	apperrors "github.com/storely/storely-backend/internal/errors"
	"github.com/storely/storely-backend/internal/middleware"
)

type InvoiceController struct {
	invoiceService service.InvoiceService
}

func NewInvoiceController(invoiceService service.InvoiceService) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
	}
}

type invoiceItemRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" binding:"gte=0"`
}

type createInvoiceRequest struct {
	SupplierID   uint                 `json:"supplier_id" binding:"required"`
	Items        []invoiceItemRequest `json:"items" binding:"required"`
	ShippingCost float64              `json:"shipping_cost" binding:"gte=0"`
	TaxAmount    float64              `json:"tax_amount" binding:"gte=0"`
	Notes        string               `json:"notes"`
}

// CreateInvoice records a stock delivery and increments product stock. The
// authenticated admin is stored on the invoice as the receiving user.
// POST /api/admin/invoices
func (ctrl *InvoiceController) CreateInvoice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid invoice data")
		return
	}

	input := service.CreateInvoiceInput{
		SupplierID:   req.SupplierID,
		ReceivedByID: userID,
		ShippingCost: req.ShippingCost,
		TaxAmount:    req.TaxAmount,
		Notes:        req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.InvoiceItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}

	invoice, err := ctrl.invoiceService.CreateInvoice(input)
	if err != nil {
		var unknown *service.UnknownProductsError
		switch {
		case errors.As(err, &unknown):
			log.Warn("Invoice rejected: unknown products", map[string]interface{}{
				"supplier_id": req.SupplierID,
				"product_ids": unknown.ProductIDs,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       apperrors.InvoiceUnknownProducts,
				"message":     "invoice references unknown products",
				"product_ids": unknown.ProductIDs,
			})
		case errors.Is(err, service.ErrEmptyInvoice):
			apperrors.BadRequest(c, apperrors.InvoiceEmpty, "invoice must contain at least one item")
		case errors.Is(err, service.ErrSupplierNotFound):
			apperrors.BadRequest(c, apperrors.SupplierNotFound, "supplier not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "item quantity must be at least 1")
		default:
			log.Error("Failed to create invoice", err, map[string]interface{}{
				"supplier_id": req.SupplierID,
			})
			apperrors.InternalError(c, "failed to create invoice")
		}
		return
	}

	log.Info("Purchase invoice created", map[string]interface{}{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"supplier_id":    invoice.SupplierID,
		"total_amount":   invoice.TotalAmount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invoice recorded successfully",
		"invoice": invoice,
	})
}

// GetInvoices handles GET /api/admin/invoices
func (ctrl *InvoiceController) GetInvoices(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, limit, offset := parsePagination(c)

	invoices, total, err := ctrl.invoiceService.ListInvoices(limit, offset)
	if err != nil {
		log.Error("Failed to list invoices", err, nil)
		apperrors.InternalError(c, "failed to fetch invoices")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices":   invoices,
		"pagination": paginationPayload(total, page, limit),
	})
}

// GetInvoiceByID handles GET /api/admin/invoices/:id
func (ctrl *InvoiceController) GetInvoiceByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid invoice id")
		return
	}

	invoice, err := ctrl.invoiceService.GetInvoiceByID(id)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			apperrors.NotFound(c, apperrors.InvoiceNotFound, "invoice not found")
			return
		}
		log.Error("Failed to fetch invoice", err, map[string]interface{}{
			"invoice_id": id,
		})
		apperrors.InternalError(c, "failed to fetch invoice")
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// CancelInvoice reverses an invoice's stock increments and removes it
// DELETE /api/admin/invoices/:id
func (ctrl *InvoiceController) CancelInvoice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid invoice id")
		return
	}

	if err := ctrl.invoiceService.CancelInvoice(id); err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			apperrors.NotFound(c, apperrors.InvoiceNotFound, "invoice not found")
			return
		}
		log.Error("Failed to cancel invoice", err, map[string]interface{}{
			"invoice_id": id,
		})
		apperrors.InternalError(c, "failed to cancel invoice")
		return
	}

	log.Info("Purchase invoice cancelled", map[string]interface{}{
		"invoice_id": id,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Invoice cancelled"})
}
