package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/internal/db"
)

func setupReviewServiceTest(t *testing.T) (ReviewService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	reviewRepo := repository.NewReviewRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	reviewService := NewReviewService(reviewRepo, productRepo, testDB)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Test Product",
		Price:         100,
		StockQuantity: 10,
		IsActive:      true,
	}
	testDB.Create(product)

	return reviewService, testDB, user, product
}

func createReviewer(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Reviewer",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func productRating(t *testing.T, testDB *gorm.DB, productID uint) (float64, int) {
	t.Helper()
	var product model.Product
	require.NoError(t, testDB.First(&product, productID).Error)
	return product.Rating, product.ReviewCount
}

func TestReviewService_CreateReview_PendingApproval(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{
		ProductID: product.ID,
		Rating:    5,
		Title:     "Great",
		Comment:   "Would buy again",
	})
	require.NoError(t, err)
	assert.False(t, review.IsApproved)

	// Unapproved reviews do not move the aggregate
	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0, count)
}

func TestReviewService_CreateReview_Validation(t *testing.T) {
	reviewService, _, user, product := setupReviewServiceTest(t)

	tests := []struct {
		name    string
		input   ReviewInput
		wantErr error
	}{
		{
			name:    "Rating below range",
			input:   ReviewInput{ProductID: product.ID, Rating: 0},
			wantErr: ErrInvalidRating,
		},
		{
			name:    "Rating above range",
			input:   ReviewInput{ProductID: product.ID, Rating: 6},
			wantErr: ErrInvalidRating,
		},
		{
			name:    "Unknown product",
			input:   ReviewInput{ProductID: 9999, Rating: 4},
			wantErr: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := reviewService.CreateReview(user.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, review)
		})
	}
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	reviewService, _, user, product := setupReviewServiceTest(t)

	_, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrReviewExists)
	assert.Nil(t, review)
}

func TestReviewService_CreateReview_DuplicateRejectedByStore(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	_, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	// Inserting around the service must still hit the unique index
	err = testDB.Create(&model.Review{
		UserID:    user.ID,
		ProductID: product.ID,
		Rating:    5,
	}).Error
	assert.Error(t, err)

	var count int64
	testDB.Model(&model.Review{}).
		Where("user_id = ? AND product_id = ?", user.ID, product.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestReviewService_CreateReview_AllowedAfterDelete(t *testing.T) {
	reviewService, _, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)

	require.NoError(t, reviewService.DeleteReview(user.ID, review.ID, false))

	replacement, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)
	assert.NotZero(t, replacement.ID)
}

func TestReviewService_ApproveReview_UpdatesRating(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	first, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	other := createReviewer(t, testDB, "other@example.com")
	second, err := reviewService.CreateReview(other.ID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	approved, err := reviewService.ApproveReview(first.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 4.0, rating)
	assert.Equal(t, 1, count)

	_, err = reviewService.ApproveReview(second.ID)
	require.NoError(t, err)

	rating, count = productRating(t, testDB, product.ID)
	assert.Equal(t, 4.5, rating)
	assert.Equal(t, 2, count)
}

func TestReviewService_Rating_RoundsToOneDecimal(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	ratings := []int{3, 4, 4}
	reviewers := []*model.User{
		user,
		createReviewer(t, testDB, "second@example.com"),
		createReviewer(t, testDB, "third@example.com"),
	}

	for i, reviewer := range reviewers {
		review, err := reviewService.CreateReview(reviewer.ID, ReviewInput{
			ProductID: product.ID,
			Rating:    ratings[i],
		})
		require.NoError(t, err)
		_, err = reviewService.ApproveReview(review.ID)
		require.NoError(t, err)
	}

	// mean of 3, 4, 4 is 3.666..., stored as 3.7
	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 3.7, rating)
	assert.Equal(t, 3, count)
}

func TestReviewService_ApproveReview_Idempotent(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = reviewService.ApproveReview(review.ID)
	require.NoError(t, err)
	_, err = reviewService.ApproveReview(review.ID)
	require.NoError(t, err)

	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 4.0, rating)
	assert.Equal(t, 1, count)
}

func TestReviewService_ApproveReviews_Bulk(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	other := createReviewer(t, testDB, "other@example.com")

	first, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)
	second, err := reviewService.CreateReview(other.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	approved, err := reviewService.ApproveReviews([]uint{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), approved)

	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 3.0, rating)
	assert.Equal(t, 2, count)
}

func TestReviewService_ApproveReviews_EmptyInput(t *testing.T) {
	reviewService, _, _, _ := setupReviewServiceTest(t)

	approved, err := reviewService.ApproveReviews(nil)
	assert.ErrorIs(t, err, ErrNoReviewsToApprove)
	assert.Equal(t, int64(0), approved)
}

func TestReviewService_ListProductReviews_ApprovedOnly(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	other := createReviewer(t, testDB, "other@example.com")

	approvedReview, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = reviewService.ApproveReview(approvedReview.ID)
	require.NoError(t, err)

	_, err = reviewService.CreateReview(other.ID, ReviewInput{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	reviews, total, err := reviewService.ListProductReviews(product.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reviews, 1)
	assert.Equal(t, approvedReview.ID, reviews[0].ID)
}

func TestReviewService_UpdateReview(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 5, Title: "Great"})
	require.NoError(t, err)
	_, err = reviewService.ApproveReview(review.ID)
	require.NoError(t, err)

	updated, err := reviewService.UpdateReview(user.ID, review.ID, 3, "Changed my mind", "Broke after a week")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)
	assert.Equal(t, "Changed my mind", updated.Title)

	rating, _ := productRating(t, testDB, product.ID)
	assert.Equal(t, 3.0, rating)
}

func TestReviewService_UpdateReview_NotOwner(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	other := createReviewer(t, testDB, "other@example.com")
	updated, err := reviewService.UpdateReview(other.ID, review.ID, 1, "", "")
	assert.ErrorIs(t, err, ErrReviewAccessDenied)
	assert.Nil(t, updated)
}

func TestReviewService_DeleteReview(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = reviewService.ApproveReview(review.ID)
	require.NoError(t, err)

	require.NoError(t, reviewService.DeleteReview(user.ID, review.ID, false))

	// Last approved review gone, aggregate returns to zero
	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0, count)
}

func TestReviewService_DeleteReview_Permissions(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	other := createReviewer(t, testDB, "other@example.com")

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)

	err = reviewService.DeleteReview(other.ID, review.ID, false)
	assert.ErrorIs(t, err, ErrReviewAccessDenied)

	// Admins may delete anyone's review
	require.NoError(t, reviewService.DeleteReview(other.ID, review.ID, true))

	err = reviewService.DeleteReview(user.ID, review.ID, false)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_ReconcileAllRatings(t *testing.T) {
	reviewService, testDB, user, product := setupReviewServiceTest(t)

	review, err := reviewService.CreateReview(user.ID, ReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)
	_, err = reviewService.ApproveReview(review.ID)
	require.NoError(t, err)

	// Drift the stored aggregate, then reconcile
	testDB.Model(&model.Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{"rating": 1.0, "review_count": 7})

	processed, err := reviewService.ReconcileAllRatings()
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	rating, count := productRating(t, testDB, product.ID)
	assert.Equal(t, 4.0, rating)
	assert.Equal(t, 1, count)
}
