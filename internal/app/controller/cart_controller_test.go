package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/internal/app/service"
	"github.com/storely/storely-backend/internal/db"
	"github.com/storely/storely-backend/internal/middleware"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.User, *model.Product) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	cartController := NewCartController(cartService)

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

	router := gin.New()
	asUser := func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middleware.UserIDKey, user.ID)
			handler(c)
		}
	}
	router.GET("/cart", asUser(cartController.GetCart))
	router.POST("/cart", asUser(cartController.AddToCart))
	router.PUT("/cart/:id", asUser(cartController.UpdateCartItem))
	router.DELETE("/cart/:id", asUser(cartController.RemoveFromCart))
	router.DELETE("/cart", asUser(cartController.ClearCart))

	return router, testDB, user, product
}

func cartRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCartController_AddAndGet(t *testing.T) {
	router, _, _, product := setupCartControllerTest(t)

	w := cartRequest(t, router, http.MethodPost, "/cart", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = cartRequest(t, router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
	assert.Equal(t, float64(200), response["total"])
}

func TestCartController_AddToCart_Errors(t *testing.T) {
	router, _, _, product := setupCartControllerTest(t)

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
	}{
		{
			name:       "Unknown product",
			body:       gin.H{"product_id": 9999, "quantity": 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "More than stock",
			body:       gin.H{"product_id": product.ID, "quantity": 100},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Missing quantity",
			body:       gin.H{"product_id": product.ID},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := cartRequest(t, router, http.MethodPost, "/cart", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCartController_UpdateCartItem(t *testing.T) {
	router, testDB, user, product := setupCartControllerTest(t)

	cartItem := &model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
	}
	testDB.Create(cartItem)

	w := cartRequest(t, router, http.MethodPut, fmt.Sprintf("/cart/%d", cartItem.ID), gin.H{
		"quantity": 5,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated model.CartItem
	testDB.First(&updated, cartItem.ID)
	assert.Equal(t, 5, updated.Quantity)

	w = cartRequest(t, router, http.MethodPut, "/cart/9999", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_RemoveFromCart(t *testing.T) {
	router, testDB, user, product := setupCartControllerTest(t)

	cartItem := &model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  1,
	}
	testDB.Create(cartItem)

	w := cartRequest(t, router, http.MethodDelete, fmt.Sprintf("/cart/%d", cartItem.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	w = cartRequest(t, router, http.MethodDelete, fmt.Sprintf("/cart/%d", cartItem.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_ClearCart(t *testing.T) {
	router, testDB, user, product := setupCartControllerTest(t)

	testDB.Create(&model.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1})

	w := cartRequest(t, router, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
