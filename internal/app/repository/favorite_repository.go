package repository

import (
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/pkg/logger"
)

type FavoriteRepository interface {
	Create(item *model.FavoriteItem) error
	FindByUserID(userID uint) ([]model.FavoriteItem, error)
	FindByUserAndProduct(userID, productID uint) (*model.FavoriteItem, error)
	DeleteByUserAndProduct(userID, productID uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(item *model.FavoriteItem) error {
	logger.Debug("Creating favorite item in database", map[string]interface{}{
		"user_id":    item.UserID,
		"product_id": item.ProductID,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create favorite item in database", err, map[string]interface{}{
			"user_id":    item.UserID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) FindByUserID(userID uint) ([]model.FavoriteItem, error) {
	var items []model.FavoriteItem
	err := r.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find favorite items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (r *favoriteRepository) FindByUserAndProduct(userID, productID uint) (*model.FavoriteItem, error) {
	var item model.FavoriteItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *favoriteRepository) DeleteByUserAndProduct(userID, productID uint) error {
	logger.Debug("Deleting favorite item from database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.FavoriteItem{}).Error; err != nil {
		logger.Error("Failed to delete favorite item from database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}
