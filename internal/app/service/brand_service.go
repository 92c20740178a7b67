package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
)

var ErrBrandNotFound = errors.New("brand not found")

type BrandInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

type BrandService interface {
	ListBrands() ([]model.Brand, error)
	GetBrandByID(id uint) (*model.Brand, error)
	CreateBrand(input BrandInput) (*model.Brand, error)
	UpdateBrand(id uint, input BrandInput) (*model.Brand, error)
	DeleteBrand(id uint) error
}

type brandService struct {
	brandRepo repository.BrandRepository
}

func NewBrandService(brandRepo repository.BrandRepository) BrandService {
	return &brandService{brandRepo: brandRepo}
}

func (s *brandService) ListBrands() ([]model.Brand, error) {
	return s.brandRepo.FindAll()
}

func (s *brandService) GetBrandByID(id uint) (*model.Brand, error) {
	brand, err := s.brandRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

func (s *brandService) CreateBrand(input BrandInput) (*model.Brand, error) {
	brand := &model.Brand{
		Name:        input.Name,
		Description: input.Description,
		LogoURL:     input.LogoURL,
	}
	if err := s.brandRepo.Create(brand); err != nil {
		return nil, err
	}

	logger.Info("Brand created", map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
	})
	return brand, nil
}

func (s *brandService) UpdateBrand(id uint, input BrandInput) (*model.Brand, error) {
	brand, err := s.GetBrandByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		brand.Name = input.Name
	}
	if input.Description != "" {
		brand.Description = input.Description
	}
	if input.LogoURL != "" {
		brand.LogoURL = input.LogoURL
	}

	if err := s.brandRepo.Update(brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *brandService) DeleteBrand(id uint) error {
	if _, err := s.GetBrandByID(id); err != nil {
		return err
	}
	return s.brandRepo.Delete(id)
}
