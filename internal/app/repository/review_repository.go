package repository

import (
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/pkg/logger"
)

type ReviewFilter struct {
	ProductID    *uint
	ApprovedOnly bool
	Limit        int
	Offset       int
}

// RatingSummary is the aggregate of a product's approved reviews.
type RatingSummary struct {
	Average float64
	Count   int64
}

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindByUserAndProduct(userID, productID uint) (*model.Review, error)
	FindWithFilter(filter ReviewFilter) ([]model.Review, int64, error)
	Update(review *model.Review) error
	Delete(id uint) error
	ApproveMany(ids []uint) (int64, error)
	AggregateApproved(productID uint) (RatingSummary, error)
	AllReviewedProductIDs() ([]uint, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"user_id":    review.UserID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"user_id":    review.UserID,
			"product_id": review.ProductID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		logger.Error("Failed to find review by ID in database", err, map[string]interface{}{
			"review_id": id,
		})
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByUserAndProduct(userID, productID uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindWithFilter returns one page of reviews plus the total matching count.
func (r *reviewRepository) FindWithFilter(filter ReviewFilter) ([]model.Review, int64, error) {
	logger.Debug("Finding reviews with filter", map[string]interface{}{
		"product_id":    filter.ProductID,
		"approved_only": filter.ApprovedOnly,
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	})

	base := r.db.Model(&model.Review{})
	if filter.ProductID != nil {
		base = base.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ApprovedOnly {
		base = base.Where("is_approved = ?", true)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count reviews with filter", err, nil)
		return nil, 0, err
	}

	query := base.Session(&gorm.Session{}).
		Preload("User").
		Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var reviews []model.Review
	if err := query.Find(&reviews).Error; err != nil {
		logger.Error("Failed to find reviews with filter", err, nil)
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) Update(review *model.Review) error {
	logger.Debug("Updating review in database", map[string]interface{}{
		"review_id": review.ID,
		"rating":    review.Rating,
	})

	if err := r.db.Save(review).Error; err != nil {
		logger.Error("Failed to update review in database", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Delete(id uint) error {
	logger.Debug("Deleting review from database", map[string]interface{}{
		"review_id": id,
	})

	if err := r.db.Delete(&model.Review{}, id).Error; err != nil {
		logger.Error("Failed to delete review from database", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}

// ApproveMany marks the given reviews approved and reports how many rows
// actually changed.
func (r *reviewRepository) ApproveMany(ids []uint) (int64, error) {
	logger.Debug("Approving reviews in database", map[string]interface{}{
		"count": len(ids),
	})

	result := r.db.Model(&model.Review{}).
		Where("id IN ?", ids).
		Update("is_approved", true)
	if result.Error != nil {
		logger.Error("Failed to approve reviews in database", result.Error, map[string]interface{}{
			"count": len(ids),
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AggregateApproved computes the average rating and count over approved
// reviews for one product.
func (r *reviewRepository) AggregateApproved(productID uint) (RatingSummary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		logger.Error("Failed to aggregate approved reviews in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return RatingSummary{}, err
	}
	return RatingSummary{Average: row.Average, Count: row.Count}, nil
}

// AllReviewedProductIDs lists the distinct products that have any review,
// used by the nightly reconciliation job.
func (r *reviewRepository) AllReviewedProductIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Review{}).
		Distinct().
		Pluck("product_id", &ids).Error
	if err != nil {
		logger.Error("Failed to list reviewed product IDs in database", err, nil)
		return nil, err
	}
	return ids, nil
}
