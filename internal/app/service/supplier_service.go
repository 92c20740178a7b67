package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
)

var ErrSupplierNotFound = errors.New("supplier not found")

type SupplierInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type SupplierService interface {
	ListSuppliers() ([]model.Supplier, error)
	GetSupplierByID(id uint) (*model.Supplier, error)
	CreateSupplier(input SupplierInput) (*model.Supplier, error)
	UpdateSupplier(id uint, input SupplierInput) (*model.Supplier, error)
	DeleteSupplier(id uint) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

func (s *supplierService) ListSuppliers() ([]model.Supplier, error) {
	return s.supplierRepo.FindAll()
}

func (s *supplierService) GetSupplierByID(id uint) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) CreateSupplier(input SupplierInput) (*model.Supplier, error) {
	supplier := &model.Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
	}
	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, err
	}

	logger.Info("Supplier created", map[string]interface{}{
		"supplier_id": supplier.ID,
		"name":        supplier.Name,
	})
	return supplier, nil
}

func (s *supplierService) UpdateSupplier(id uint, input SupplierInput) (*model.Supplier, error) {
	supplier, err := s.GetSupplierByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		supplier.Name = input.Name
	}
	if input.ContactPerson != "" {
		supplier.ContactPerson = input.ContactPerson
	}
	if input.Email != "" {
		supplier.Email = input.Email
	}
	if input.Phone != "" {
		supplier.Phone = input.Phone
	}
	if input.Address != "" {
		supplier.Address = input.Address
	}

	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) DeleteSupplier(id uint) error {
	if _, err := s.GetSupplierByID(id); err != nil {
		return err
	}
	return s.supplierRepo.Delete(id)
}
