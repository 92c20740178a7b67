package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

type FavoriteService interface {
	GetUserFavorites(userID uint) ([]model.FavoriteItem, error)
	AddFavorite(userID, productID uint) (*model.FavoriteItem, error)
	RemoveFavorite(userID, productID uint) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

func (s *favoriteService) GetUserFavorites(userID uint) ([]model.FavoriteItem, error) {
	items, err := s.favoriteRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user favorites", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

// AddFavorite is idempotent: adding a product already in the list returns
// the existing row.
func (s *favoriteService) AddFavorite(userID, productID uint) (*model.FavoriteItem, error) {
	logger.Info("Adding favorite", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.favoriteRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing favorite", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	item := &model.FavoriteItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.favoriteRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *favoriteService) RemoveFavorite(userID, productID uint) error {
	logger.Info("Removing favorite", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	if _, err := s.favoriteRepo.FindByUserAndProduct(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}

	return s.favoriteRepo.DeleteByUserAndProduct(userID, productID)
}
