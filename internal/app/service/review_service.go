package service

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
)

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrReviewExists       = errors.New("user has already reviewed this product")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrReviewAccessDenied = errors.New("review belongs to another user")
	ErrNoReviewsToApprove = errors.New("no review ids given")
)

type ReviewInput struct {
	ProductID uint   `json:"product_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

type ReviewService interface {
	CreateReview(userID uint, input ReviewInput) (*model.Review, error)
	UpdateReview(userID, reviewID uint, rating int, title, comment string) (*model.Review, error)
	DeleteReview(userID, reviewID uint, isAdmin bool) error
	ApproveReview(reviewID uint) (*model.Review, error)
	ApproveReviews(ids []uint) (int64, error)
	ListProductReviews(productID uint, limit, offset int) ([]model.Review, int64, error)
	ListReviews(filter repository.ReviewFilter) ([]model.Review, int64, error)
	RecalculateProductRating(productID uint) error
	ReconcileAllRatings() (int, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		db:          db,
	}
}

func (s *reviewService) CreateReview(userID uint, input ReviewInput) (*model.Review, error) {
	logger.Info("Creating review", map[string]interface{}{
		"user_id":    userID,
		"product_id": input.ProductID,
		"rating":     input.Rating,
	})

	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(userID, input.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": input.ProductID,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("Review rejected: duplicate for user and product", map[string]interface{}{
			"user_id":    userID,
			"product_id": input.ProductID,
		})
		return nil, ErrReviewExists
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Title:     input.Title,
		Comment:   input.Comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	// New reviews are unapproved so the aggregate is unchanged, but keep the
	// recompute unconditional: it makes every mutation path identical
	if err := s.RecalculateProductRating(input.ProductID); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) UpdateReview(userID, reviewID uint, rating int, title, comment string) (*model.Review, error) {
	logger.Info("Updating review", map[string]interface{}{
		"user_id":   userID,
		"review_id": reviewID,
	})

	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.UserID != userID {
		logger.Warn("Review update denied: ownership mismatch", map[string]interface{}{
			"user_id":   userID,
			"review_id": reviewID,
			"owner_id":  review.UserID,
		})
		return nil, ErrReviewAccessDenied
	}

	review.Rating = rating
	review.Title = title
	review.Comment = comment

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	if err := s.RecalculateProductRating(review.ProductID); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) DeleteReview(userID, reviewID uint, isAdmin bool) error {
	logger.Info("Deleting review", map[string]interface{}{
		"user_id":   userID,
		"review_id": reviewID,
	})

	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if !isAdmin && review.UserID != userID {
		return ErrReviewAccessDenied
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}

	return s.RecalculateProductRating(review.ProductID)
}

func (s *reviewService) ApproveReview(reviewID uint) (*model.Review, error) {
	logger.Info("Approving review", map[string]interface{}{
		"review_id": reviewID,
	})

	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if !review.IsApproved {
		review.IsApproved = true
		if err := s.reviewRepo.Update(review); err != nil {
			return nil, err
		}
		if err := s.RecalculateProductRating(review.ProductID); err != nil {
			return nil, err
		}
	}

	return review, nil
}

// ApproveReviews bulk-approves and recomputes every affected product once.
func (s *reviewService) ApproveReviews(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoReviewsToApprove
	}

	logger.Info("Bulk approving reviews", map[string]interface{}{
		"count": len(ids),
	})

	var productIDs []uint
	if err := s.db.Model(&model.Review{}).
		Where("id IN ?", ids).
		Distinct().
		Pluck("product_id", &productIDs).Error; err != nil {
		logger.Error("Failed to resolve products for bulk approval", err, nil)
		return 0, err
	}

	approved, err := s.reviewRepo.ApproveMany(ids)
	if err != nil {
		return 0, err
	}

	for _, productID := range productIDs {
		if err := s.RecalculateProductRating(productID); err != nil {
			return approved, err
		}
	}

	return approved, nil
}

func (s *reviewService) ListProductReviews(productID uint, limit, offset int) ([]model.Review, int64, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}

	return s.reviewRepo.FindWithFilter(repository.ReviewFilter{
		ProductID:    &productID,
		ApprovedOnly: true,
		Limit:        limit,
		Offset:       offset,
	})
}

func (s *reviewService) ListReviews(filter repository.ReviewFilter) ([]model.Review, int64, error) {
	return s.reviewRepo.FindWithFilter(filter)
}

// RecalculateProductRating stores the mean of approved ratings rounded to one
// decimal, or zero when there are none, together with the approved count.
func (s *reviewService) RecalculateProductRating(productID uint) error {
	summary, err := s.reviewRepo.AggregateApproved(productID)
	if err != nil {
		return err
	}

	rating := 0.0
	if summary.Count > 0 {
		rating = math.Round(summary.Average*10) / 10
	}

	if err := s.db.Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": summary.Count,
		}).Error; err != nil {
		logger.Error("Failed to store product rating", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	logger.Debug("Product rating recalculated", map[string]interface{}{
		"product_id":   productID,
		"rating":       rating,
		"review_count": summary.Count,
	})
	return nil
}

// ReconcileAllRatings recomputes the stored rating of every reviewed product
// and returns how many were processed.
func (s *reviewService) ReconcileAllRatings() (int, error) {
	productIDs, err := s.reviewRepo.AllReviewedProductIDs()
	if err != nil {
		return 0, err
	}

	for _, productID := range productIDs {
		if err := s.RecalculateProductRating(productID); err != nil {
			return 0, err
		}
	}

	return len(productIDs), nil
}
