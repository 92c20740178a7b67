package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
	"github.com/storely/storely-backend/pkg/util"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrShippingRequired    = errors.New("shipping address is required")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrOrderAlreadyPaid    = errors.New("order is already paid")
)

type OrderItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items"`
	ShippingAddress string           `json:"shipping_address"`
	PaymentMethod   string           `json:"payment_method"`
	ShippingCost    float64          `json:"shipping_cost"`
	TaxAmount       float64          `json:"tax_amount"`
}

type OrderService interface {
	CreateOrder(userID uint, input CreateOrderInput) (*model.Order, error)
	GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	MarkPaid(userID, orderID uint, isAdmin bool, paymentResult string) (*model.Order, error)
	CancelOrder(userID, orderID uint, isAdmin bool) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	db        *gorm.DB
}

func NewOrderService(orderRepo repository.OrderRepository, db *gorm.DB) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		db:        db,
	}
}

// statusFlow maps each status to the states it may move into. Re-asserting
// the current status is always accepted and handled before this table.
var statusFlow = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusDelivered, model.OrderStatusCancelled},
	model.OrderStatusDelivered:  {},
	model.OrderStatusCancelled:  {},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, allowed := range statusFlow[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *orderService) CreateOrder(userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(input.Items),
	})

	if len(input.Items) == 0 {
		logger.Warn("Cannot create order: no items", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyOrder
	}
	if input.ShippingAddress == "" {
		return nil, ErrShippingRequired
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		subtotal   float64
		orderItems []model.OrderItem
	)

	for _, item := range input.Items {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product not found during order creation", map[string]interface{}{
					"user_id":    userID,
					"product_id": item.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during order creation", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": item.ProductID,
			})
			return nil, err
		}

		if !product.IsActive {
			tx.Rollback()
			logger.Warn("Order creation failed: product inactive", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, ErrProductNotFound
		}

		if product.StockQuantity < item.Quantity {
			tx.Rollback()
			logger.Warn("Order creation failed: insufficient product stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
				"requested":  item.Quantity,
				"available":  product.StockQuantity,
			})
			return nil, ErrInsufficientStock
		}

		if err := tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to decrement product stock", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, err
		}

		var image string
		if len(product.ImageURLs) > 0 {
			image = product.ImageURLs[0]
		}
		lineTotal := product.Price * float64(item.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: image,
			UnitPrice:    product.Price,
			Quantity:     item.Quantity,
			LineTotal:    lineTotal,
		})
		subtotal += lineTotal
	}

	order := &model.Order{
		OrderNumber:     util.GenerateOrderNumber(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		Subtotal:        subtotal,
		ShippingCost:    input.ShippingCost,
		TaxAmount:       input.TaxAmount,
		TotalAmount:     subtotal + input.ShippingCost + input.TaxAmount,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		OrderItems:      orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":      userID,
			"total_amount": order.TotalAmount,
		})
		return nil, err
	}

	// Checkout consumes the cart
	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"item_count":   len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetOrderByID(userID, orderID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.FindWithFilter(filter)
}

// UpdateStatus applies an admin status change. Moving into cancelled restocks
// every item in the same transaction as the status write.
func (s *orderService) UpdateStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Re-asserting the current status is a no-op, even for terminal states
	if order.Status == status {
		return order, nil
	}

	if !canTransition(order.Status, status) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if status == model.OrderStatusCancelled {
		if err := s.cancelAndRestock(order); err != nil {
			return nil, err
		}
		return s.orderRepo.FindByID(orderID)
	}

	order.Status = status
	if status == model.OrderStatusDelivered {
		now := time.Now()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return s.orderRepo.FindByID(orderID)
}

// MarkPaid records a payment result. A pending order advances to processing.
func (s *orderService) MarkPaid(userID, orderID uint, isAdmin bool, paymentResult string) (*model.Order, error) {
	order, err := s.GetOrderByID(userID, orderID, isAdmin)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		logger.Warn("Order already paid", map[string]interface{}{
			"order_id": orderID,
		})
		return nil, ErrOrderAlreadyPaid
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = paymentResult
	if order.Status == model.OrderStatusPending {
		order.Status = model.OrderStatusProcessing
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	logger.Info("Order marked as paid", map[string]interface{}{
		"order_id": orderID,
		"status":   order.Status,
	})
	return s.orderRepo.FindByID(orderID)
}

// CancelOrder is the customer-facing cancel. Rejected once the order has
// shipped.
func (s *orderService) CancelOrder(userID, orderID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.GetOrderByID(userID, orderID, isAdmin)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case model.OrderStatusPending, model.OrderStatusProcessing:
		// cancellable
	default:
		logger.Warn("Order cancellation rejected", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotCancellable
	}

	if err := s.cancelAndRestock(order); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(orderID)
}

// cancelAndRestock returns every item's quantity to stock and marks the order
// cancelled, all inside one transaction.
func (s *orderService) cancelAndRestock(order *model.Order) error {
	logger.Info("Cancelling order and restoring stock", map[string]interface{}{
		"order_id":   order.ID,
		"item_count": len(order.OrderItems),
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}()

	for _, item := range order.OrderItems {
		if err := tx.Model(&model.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to restore product stock", err, map[string]interface{}{
				"order_id":   order.ID,
				"product_id": item.ProductID,
			})
			return err
		}
	}

	if err := tx.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("status", model.OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to mark order cancelled", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order cancellation", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}

	logger.Info("Order cancelled successfully", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}
