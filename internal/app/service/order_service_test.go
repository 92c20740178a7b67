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

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	orderService := NewOrderService(orderRepo, testDB)

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

	return orderService, testDB, user, product
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	// Cart contents should be consumed by checkout
	testDB.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
	})

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
		ShippingCost:    10,
		TaxAmount:       5,
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, float64(200), order.Subtotal)
	assert.Equal(t, float64(215), order.TotalAmount)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, product.Name, order.OrderItems[0].ProductName)
	assert.Equal(t, float64(100), order.OrderItems[0].UnitPrice)
	assert.Equal(t, float64(200), order.OrderItems[0].LineTotal)

	var updatedProduct model.Product
	testDB.First(&updatedProduct, product.ID)
	assert.Equal(t, 8, updatedProduct.StockQuantity)

	var cartCount int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	assert.Equal(t, int64(0), cartCount)
}

func TestOrderService_CreateOrder_EmptyItems(t *testing.T) {
	orderService, _, user, _ := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_MissingShippingAddress(t *testing.T) {
	orderService, _, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrShippingRequired)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_InsufficientStockLeavesNoTrace(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 100}},
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	// Stock untouched, no order rows written
	var updatedProduct model.Product
	testDB.First(&updatedProduct, product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)

	var orderCount int64
	testDB.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestOrderService_CreateOrder_PartialFailureRollsBack(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	outOfStock := &model.Product{
		Name:          "Out Of Stock",
		Price:         50,
		StockQuantity: 1,
		IsActive:      true,
	}
	testDB.Create(outOfStock)

	// First item is satisfiable, second is not
	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: outOfStock.ID, Quantity: 5},
		},
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	var first, second model.Product
	testDB.First(&first, product.ID)
	testDB.First(&second, outOfStock.ID)
	assert.Equal(t, 10, first.StockQuantity)
	assert.Equal(t, 1, second.StockQuantity)
}

func TestOrderService_CreateOrder_InactiveProduct(t *testing.T) {
	orderService, testDB, user, _ := setupOrderServiceTest(t)

	inactive := &model.Product{
		Name:          "Retired Product",
		Price:         100,
		StockQuantity: 10,
		IsActive:      false,
	}
	testDB.Create(inactive)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: inactive.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrder_SequentialCheckouts(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	testDB.Model(&model.Product{}).Where("id = ?", product.ID).Update("stock_quantity", 3)

	first, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	second, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, second)

	var updatedProduct model.Product
	testDB.First(&updatedProduct, product.ID)
	assert.Equal(t, 1, updatedProduct.StockQuantity)
}

func TestOrderService_GetOrderByID_OwnershipHidden(t *testing.T) {
	orderService, _, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	// Another customer sees not-found, not forbidden
	found, err := orderService.GetOrderByID(user.ID+1, order.ID, false)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, found)

	// Admins see any order
	found, err = orderService.GetOrderByID(user.ID+1, order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestOrderService_UpdateStatus_Transitions(t *testing.T) {
	orderService, _, user, product := setupOrderServiceTest(t)

	newOrder := func() *model.Order {
		order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
			Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: "1 Main St",
		})
		require.NoError(t, err)
		return order
	}

	t.Run("Forward chain", func(t *testing.T) {
		order := newOrder()
		for _, status := range []model.OrderStatus{
			model.OrderStatusProcessing,
			model.OrderStatusShipped,
			model.OrderStatusDelivered,
		} {
			updated, err := orderService.UpdateStatus(order.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
		}
	})

	t.Run("Skipping a step is rejected", func(t *testing.T) {
		order := newOrder()
		updated, err := orderService.UpdateStatus(order.ID, model.OrderStatusShipped)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Nil(t, updated)
	})

	t.Run("Reasserting the current status is a no-op", func(t *testing.T) {
		order := newOrder()
		updated, err := orderService.UpdateStatus(order.ID, model.OrderStatusPending)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPending, updated.Status)
	})

	t.Run("Terminal states accept no transitions", func(t *testing.T) {
		order := newOrder()
		_, err := orderService.UpdateStatus(order.ID, model.OrderStatusCancelled)
		require.NoError(t, err)

		updated, err := orderService.UpdateStatus(order.ID, model.OrderStatusProcessing)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Nil(t, updated)

		// But reasserting cancelled still succeeds
		updated, err = orderService.UpdateStatus(order.ID, model.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, updated.Status)
	})
}

func TestOrderService_UpdateStatus_CancelRestocks(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	var afterOrder model.Product
	testDB.First(&afterOrder, product.ID)
	assert.Equal(t, 7, afterOrder.StockQuantity)

	cancelled, err := orderService.UpdateStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	var afterCancel model.Product
	testDB.First(&afterCancel, product.ID)
	assert.Equal(t, 10, afterCancel.StockQuantity)
}

func TestOrderService_MarkPaid(t *testing.T) {
	orderService, _, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	paid, err := orderService.MarkPaid(user.ID, order.ID, false, "txn-123")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, "txn-123", paid.PaymentResult)
	// Payment advances a pending order
	assert.Equal(t, model.OrderStatusProcessing, paid.Status)

	// Paying twice is rejected
	_, err = orderService.MarkPaid(user.ID, order.ID, false, "txn-456")
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
}

func TestOrderService_MarkPaid_CancelledOrder(t *testing.T) {
	orderService, _, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	_, err = orderService.CancelOrder(user.ID, order.ID, false)
	require.NoError(t, err)

	_, err = orderService.MarkPaid(user.ID, order.ID, false, "txn-123")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_CancelOrder(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	cancelled, err := orderService.CancelOrder(user.ID, order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	var updatedProduct model.Product
	testDB.First(&updatedProduct, product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)
}

func TestOrderService_CancelOrder_AfterShipment(t *testing.T) {
	orderService, _, user, product := setupOrderServiceTest(t)

	order, err := orderService.CreateOrder(user.ID, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	_, err = orderService.UpdateStatus(order.ID, model.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = orderService.UpdateStatus(order.ID, model.OrderStatusShipped)
	require.NoError(t, err)

	cancelled, err := orderService.CancelOrder(user.ID, order.ID, false)
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
	assert.Nil(t, cancelled)
}

func TestOrderService_ListOrders(t *testing.T) {
	orderService, testDB, user, product := setupOrderServiceTest(t)

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		Name:         "Other User",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	testDB.Create(other)

	for _, userID := range []uint{user.ID, user.ID, other.ID} {
		_, err := orderService.CreateOrder(userID, CreateOrderInput{
			Items:           []OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: "1 Main St",
		})
		require.NoError(t, err)
	}

	orders, total, err := orderService.ListOrders(repository.OrderFilter{UserID: &user.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = orderService.ListOrders(repository.OrderFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 3)
}
