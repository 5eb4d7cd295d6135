package service

import (
	"context"
	"errors"

	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/cart"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartView is the cart as returned to clients. Reset is true once after a
// stored snapshot could not be read and the cart was emptied.
type CartView struct {
	Items          []cart.Item     `json:"items"`
	Count          int             `json:"count"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	Reset          bool            `json:"reset,omitempty"`
}

// CartService drives the legacy store cart of a browsing session.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) *CartView
	AddProduct(ctx context.Context, sessionID string, productID uint) (*CartView, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int, quantity int) *CartView
	RemoveItem(ctx context.Context, sessionID string, productID int) *CartView
	Clear(ctx context.Context, sessionID string) *CartView
}

type cartService struct {
	manager     *cart.Manager
	productRepo repository.ProductRepository
}

func NewCartService(manager *cart.Manager, productRepo repository.ProductRepository) CartService {
	return &cartService{
		manager:     manager,
		productRepo: productRepo,
	}
}

func view(store *cart.Store) *CartView {
	return &CartView{
		Items:          store.Items(),
		Count:          store.Count(),
		Total:          store.Total(),
		FormattedTotal: store.FormattedTotal(),
		Reset:          store.Reset(),
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) *CartView {
	store, release := s.manager.Acquire(ctx, sessionID)
	defer release()
	return view(store)
}

// AddProduct adds one unit of a catalog product. Name, price and image are
// taken from the catalog at the time of the first add.
func (s *cartService) AddProduct(ctx context.Context, sessionID string, productID uint) (*CartView, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	store, release := s.manager.Acquire(ctx, sessionID)
	defer release()
	store.Add(ctx, cart.Item{
		ID:    int(product.ID),
		Name:  product.Name,
		Price: product.Price,
		Image: product.ImageURL,
	})

	logger.Debug("Product added to cart", map[string]interface{}{
		"product_id": productID,
		"count":      store.Count(),
	})
	return view(store), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, productID int, quantity int) *CartView {
	store, release := s.manager.Acquire(ctx, sessionID)
	defer release()
	store.UpdateQuantity(ctx, productID, quantity)
	return view(store)
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID int) *CartView {
	store, release := s.manager.Acquire(ctx, sessionID)
	defer release()
	store.Remove(ctx, productID)
	return view(store)
}

func (s *cartService) Clear(ctx context.Context, sessionID string) *CartView {
	store, release := s.manager.Acquire(ctx, sessionID)
	defer release()
	store.Clear(ctx)
	return view(store)
}
