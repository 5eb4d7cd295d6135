package service

import (
	"context"
	"errors"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/cart"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartEmpty     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// OrderService turns legacy store carts into orders.
type OrderService interface {
	Checkout(ctx context.Context, userID uint, sessionID string) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	manager   *cart.Manager
}

func NewOrderService(orderRepo repository.OrderRepository, manager *cart.Manager) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		manager:   manager,
	}
}

// Checkout snapshots the session cart into an order and clears the cart.
// The cart is locked for the whole operation and left untouched when the
// order cannot be stored.
func (s *orderService) Checkout(ctx context.Context, userID uint, sessionID string) (*model.Order, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}

	store, release := s.manager.Acquire(ctx, sessionID)
	defer release()

	var order *model.Order
	err := store.Checkout(ctx, func(items []cart.Item, total decimal.Decimal) error {
		if len(items) == 0 {
			return ErrCartEmpty
		}

		order = &model.Order{
			UserID:     userID,
			Total:      total,
			Status:     model.OrderStatusPending,
			OrderItems: make([]model.OrderItem, len(items)),
		}
		for i, item := range items {
			order.OrderItems[i] = model.OrderItem{
				ProductID: uint(item.ID),
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
				Image:     item.Image,
			}
		}

		if err := s.orderRepo.Create(ctx, order); err != nil {
			logger.Error("Failed to create order from cart", err, map[string]interface{}{
				"user_id": userID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total.StringFixed(2),
		"items":    len(order.OrderItems),
	})
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// GetOrder hides other users' orders behind ErrOrderNotFound.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
