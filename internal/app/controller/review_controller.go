package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/internal/app/service"
	apperrors "github.com/storely/storely-backend/internal/errors"
	"github.com/storely/storely-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type createReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid review data")
		return
	}

	review, err := ctrl.reviewService.CreateReview(userID, service.ReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "rating must be between 1 and 5")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
		case errors.Is(err, service.ErrReviewExists):
			apperrors.Conflict(c, apperrors.ReviewAlreadyExists, "you have already reviewed this product")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "failed to create review")
		}
		return
	}

	log.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    userID,
		"product_id": req.ProductID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted for approval",
		"review":  review,
	})
}

// GetProductReviews handles GET /api/products/:id/reviews.
// Only approved reviews are visible here.
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	page, limit, offset := parsePagination(c)

	reviews, total, err := ctrl.reviewService.ListProductReviews(productID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to fetch product reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":    reviews,
		"pagination": paginationPayload(total, page, limit),
	})
}

// GetReviews handles GET /api/admin/reviews with approval filtering
func (ctrl *ReviewController) GetReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, limit, offset := parsePagination(c)

	filter := repository.ReviewFilter{
		ApprovedOnly: c.Query("approved") == "true",
		Limit:        limit,
		Offset:       offset,
	}
	if id, ok := parseQueryUint(c, "product_id"); ok {
		filter.ProductID = &id
	}

	reviews, total, err := ctrl.reviewService.ListReviews(filter)
	if err != nil {
		log.Error("Failed to list reviews", err, nil)
		apperrors.InternalError(c, "failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":    reviews,
		"pagination": paginationPayload(total, page, limit),
	})
}

// UpdateReview handles PUT /api/reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, ok := parseIDParam(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid review data")
		return
	}

	review, err := ctrl.reviewService.UpdateReview(userID, reviewID, req.Rating, req.Title, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "review not found")
		case errors.Is(err, service.ErrReviewAccessDenied):
			apperrors.Forbidden(c, "review belongs to another user")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "rating must be between 1 and 5")
		default:
			log.Error("Failed to update review", err, map[string]interface{}{
				"review_id": reviewID,
				"user_id":   userID,
			})
			apperrors.InternalError(c, "failed to update review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated",
		"review":  review,
	})
}

// DeleteReview handles DELETE /api/reviews/:id. Owners and admins only.
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, ok := parseIDParam(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	if err := ctrl.reviewService.DeleteReview(userID, reviewID, middleware.IsAdmin(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "review not found")
		case errors.Is(err, service.ErrReviewAccessDenied):
			apperrors.Forbidden(c, "review belongs to another user")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"review_id": reviewID,
				"user_id":   userID,
			})
			apperrors.InternalError(c, "failed to delete review")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// ApproveReview handles PATCH /api/admin/reviews/:id/approve
func (ctrl *ReviewController) ApproveReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewID, ok := parseIDParam(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid review id")
		return
	}

	review, err := ctrl.reviewService.ApproveReview(reviewID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.ReviewNotFound, "review not found")
			return
		}
		log.Error("Failed to approve review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		apperrors.InternalError(c, "failed to approve review")
		return
	}

	log.Info("Review approved", map[string]interface{}{
		"review_id":  reviewID,
		"product_id": review.ProductID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Review approved",
		"review":  review,
	})
}

type approveReviewsRequest struct {
	ReviewIDs []uint `json:"review_ids" binding:"required"`
}

// ApproveReviews handles POST /api/admin/reviews/approve for bulk approval
func (ctrl *ReviewController) ApproveReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req approveReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "review_ids is required")
		return
	}

	approved, err := ctrl.reviewService.ApproveReviews(req.ReviewIDs)
	if err != nil {
		if errors.Is(err, service.ErrNoReviewsToApprove) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "review_ids must not be empty")
			return
		}
		log.Error("Failed to approve reviews", err, map[string]interface{}{
			"review_ids": req.ReviewIDs,
		})
		apperrors.InternalError(c, "failed to approve reviews")
		return
	}

	log.Info("Reviews approved in bulk", map[string]interface{}{
		"requested": len(req.ReviewIDs),
		"approved":  approved,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Reviews approved",
		"approved": approved,
	})
}
