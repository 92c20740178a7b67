package repository

import (
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/pkg/logger"
)

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	FindAll() ([]model.Supplier, error)
	FindByID(id uint) (*model.Supplier, error)
	Update(supplier *model.Supplier) error
	Delete(id uint) error
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(supplier *model.Supplier) error {
	logger.Debug("Creating supplier in database", map[string]interface{}{
		"name": supplier.Name,
	})

	if err := r.db.Create(supplier).Error; err != nil {
		logger.Error("Failed to create supplier in database", err, map[string]interface{}{
			"name": supplier.Name,
		})
		return err
	}
	return nil
}

func (r *supplierRepository) FindAll() ([]model.Supplier, error) {
	var suppliers []model.Supplier
	if err := r.db.Order("name ASC").Find(&suppliers).Error; err != nil {
		logger.Error("Failed to list suppliers from database", err, nil)
		return nil, err
	}
	return suppliers, nil
}

func (r *supplierRepository) FindByID(id uint) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.First(&supplier, id).Error; err != nil {
		logger.Error("Failed to find supplier by ID in database", err, map[string]interface{}{
			"supplier_id": id,
		})
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) Update(supplier *model.Supplier) error {
	logger.Debug("Updating supplier in database", map[string]interface{}{
		"supplier_id": supplier.ID,
		"name":        supplier.Name,
	})

	if err := r.db.Save(supplier).Error; err != nil {
		logger.Error("Failed to update supplier in database", err, map[string]interface{}{
			"supplier_id": supplier.ID,
		})
		return err
	}
	return nil
}

func (r *supplierRepository) Delete(id uint) error {
	logger.Debug("Deleting supplier from database", map[string]interface{}{
		"supplier_id": id,
	})

	if err := r.db.Delete(&model.Supplier{}, id).Error; err != nil {
		logger.Error("Failed to delete supplier from database", err, map[string]interface{}{
			"supplier_id": id,
		})
		return err
	}
	return nil
}
