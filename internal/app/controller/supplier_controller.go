package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/storely-backend/internal/app/service"
	"github.com/storely/storely-backend/internal/middleware"
)

type SupplierController struct {
	supplierService service.SupplierService
}

func NewSupplierController(supplierService service.SupplierService) *SupplierController {
	return &SupplierController{
		supplierService: supplierService,
	}
}

// GetSuppliers handles GET /api/admin/suppliers
func (ctrl *SupplierController) GetSuppliers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	suppliers, err := ctrl.supplierService.ListSuppliers()
	if err != nil {
		log.Error("Failed to fetch suppliers", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suppliers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suppliers": suppliers,
		"count":     len(suppliers),
	})
}

// GetSupplierByID handles GET /api/admin/suppliers/:id
func (ctrl *SupplierController) GetSupplierByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
		return
	}

	supplier, err := ctrl.supplierService.GetSupplierByID(id)
	if err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		log.Error("Failed to fetch supplier", err, map[string]interface{}{
			"supplier_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch supplier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"supplier": supplier})
}

type supplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// CreateSupplier handles POST /api/admin/suppliers
func (ctrl *SupplierController) CreateSupplier(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	supplier, err := ctrl.supplierService.CreateSupplier(service.SupplierInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		log.Error("Failed to create supplier", err, map[string]interface{}{
			"name": req.Name,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier"})
		return
	}

	log.Info("Supplier created", map[string]interface{}{
		"supplier_id": supplier.ID,
		"name":        supplier.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Supplier created successfully",
		"supplier": supplier,
	})
}

// UpdateSupplier handles PUT /api/admin/suppliers/:id
func (ctrl *SupplierController) UpdateSupplier(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
		return
	}

	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	supplier, err := ctrl.supplierService.UpdateSupplier(id, service.SupplierInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		log.Error("Failed to update supplier", err, map[string]interface{}{
			"supplier_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Supplier updated successfully",
		"supplier": supplier,
	})
}

// DeleteSupplier handles DELETE /api/admin/suppliers/:id
func (ctrl *SupplierController) DeleteSupplier(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier ID"})
		return
	}

	if err := ctrl.supplierService.DeleteSupplier(id); err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		log.Error("Failed to delete supplier", err, map[string]interface{}{
			"supplier_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete supplier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
