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

type orderControllerFixture struct {
	router       *gin.Engine
	db           *gorm.DB
	orderService service.OrderService
	user         *model.User
	admin        *model.User
	product      *model.Product
}

func setupOrderControllerTest(t *testing.T) *orderControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	orderService := service.NewOrderService(orderRepo, testDB)
	orderController := NewOrderController(orderService)

	user := &model.User{
		Email:        "customer@example.com",
		PasswordHash: "hash",
		Name:         "Customer",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	testDB.Create(user)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Name:         "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	testDB.Create(admin)

	product := &model.Product{
		Name:          "Test Product",
		Price:         100,
		StockQuantity: 10,
		IsActive:      true,
	}
	testDB.Create(product)

	as := func(u *model.User, handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middleware.UserIDKey, u.ID)
			c.Set(middleware.UserRoleKey, u.Role)
			handler(c)
		}
	}

	router := gin.New()
	router.POST("/orders", as(user, orderController.CreateOrder))
	router.GET("/orders", as(user, orderController.GetOrders))
	router.GET("/orders/:id", as(user, orderController.GetOrderByID))
	router.PATCH("/orders/:id/pay", as(user, orderController.MarkPaid))
	router.PATCH("/orders/:id/cancel", as(user, orderController.CancelOrder))
	router.GET("/admin/orders", as(admin, orderController.GetOrders))
	router.PATCH("/admin/orders/:id/status", as(admin, orderController.UpdateOrderStatus))

	return &orderControllerFixture{
		router:       router,
		db:           testDB,
		orderService: orderService,
		user:         user,
		admin:        admin,
		product:      product,
	}
}

func (f *orderControllerFixture) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	f.router.ServeHTTP(w, req)
	return w
}

func (f *orderControllerFixture) createOrder(t *testing.T, quantity int) *model.Order {
	t.Helper()
	order, err := f.orderService.CreateOrder(f.user.ID, service.CreateOrderInput{
		Items:           []service.OrderItemInput{{ProductID: f.product.ID, Quantity: quantity}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)
	return order
}

func TestOrderController_CreateOrder(t *testing.T) {
	f := setupOrderControllerTest(t)

	w := f.request(t, http.MethodPost, "/orders", gin.H{
		"items":            []gin.H{{"product_id": f.product.ID, "quantity": 2}},
		"shipping_address": "1 Main St",
		"payment_method":   "card",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	order := response["order"].(map[string]interface{})
	assert.Equal(t, float64(200), order["total_amount"])
	assert.Equal(t, "pending", order["status"])
}

func TestOrderController_CreateOrder_Errors(t *testing.T) {
	f := setupOrderControllerTest(t)

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
	}{
		{
			name:       "Missing shipping address",
			body:       gin.H{"items": []gin.H{{"product_id": f.product.ID, "quantity": 1}}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "No items",
			body:       gin.H{"items": []gin.H{}, "shipping_address": "1 Main St"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Insufficient stock",
			body:       gin.H{"items": []gin.H{{"product_id": f.product.ID, "quantity": 100}}, "shipping_address": "1 Main St"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown product",
			body:       gin.H{"items": []gin.H{{"product_id": 9999, "quantity": 1}}, "shipping_address": "1 Main St"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.request(t, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOrderController_GetOrders_PaginationEnvelope(t *testing.T) {
	f := setupOrderControllerTest(t)

	f.db.Model(&model.Product{}).Where("id = ?", f.product.ID).Update("stock_quantity", 100)
	for i := 0; i < 3; i++ {
		f.createOrder(t, 1)
	}

	w := f.request(t, http.MethodGet, "/orders?page=1&limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	orders := response["orders"].([]interface{})
	assert.Len(t, orders, 2)

	pagination := response["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(2), pagination["pages"])
	assert.Equal(t, true, pagination["has_more"])

	w = f.request(t, http.MethodGet, "/orders?page=2&limit=2", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	pagination = response["pagination"].(map[string]interface{})
	assert.Equal(t, false, pagination["has_more"])
}

func TestOrderController_GetOrders_CustomerSeesOnlyOwn(t *testing.T) {
	f := setupOrderControllerTest(t)

	f.createOrder(t, 1)

	// An order belonging to the admin account
	_, err := f.orderService.CreateOrder(f.admin.ID, service.CreateOrderInput{
		Items:           []service.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
		ShippingAddress: "2 Admin Ave",
	})
	require.NoError(t, err)

	w := f.request(t, http.MethodGet, "/orders", nil)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["orders"].([]interface{}), 1)

	// Admin listing includes everyone
	w = f.request(t, http.MethodGet, "/admin/orders", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["orders"].([]interface{}), 2)

	// Admin can filter by user
	w = f.request(t, http.MethodGet, fmt.Sprintf("/admin/orders?user_id=%d", f.user.ID), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["orders"].([]interface{}), 1)
}

func TestOrderController_GetOrderByID(t *testing.T) {
	f := setupOrderControllerTest(t)

	order := f.createOrder(t, 1)

	w := f.request(t, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodGet, "/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.request(t, http.MethodGet, "/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_UpdateOrderStatus(t *testing.T) {
	f := setupOrderControllerTest(t)

	order := f.createOrder(t, 1)

	w := f.request(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID), gin.H{
		"status": "processing",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Skipping to delivered from processing is rejected
	w = f.request(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID), gin.H{
		"status": "delivered",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(t, http.MethodPatch, "/admin/orders/9999/status", gin.H{
		"status": "processing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_MarkPaid(t *testing.T) {
	f := setupOrderControllerTest(t)

	order := f.createOrder(t, 1)

	// Empty body is accepted
	w := f.request(t, http.MethodPatch, fmt.Sprintf("/orders/%d/pay", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	paid := response["order"].(map[string]interface{})
	assert.Equal(t, true, paid["is_paid"])
	assert.Equal(t, "processing", paid["status"])

	w = f.request(t, http.MethodPatch, fmt.Sprintf("/orders/%d/pay", order.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_CancelOrder(t *testing.T) {
	f := setupOrderControllerTest(t)

	order := f.createOrder(t, 2)

	w := f.request(t, http.MethodPatch, fmt.Sprintf("/orders/%d/cancel", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var updatedProduct model.Product
	f.db.First(&updatedProduct, f.product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)

	// Already cancelled
	w = f.request(t, http.MethodPatch, fmt.Sprintf("/orders/%d/cancel", order.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
