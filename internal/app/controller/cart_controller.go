package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/automarket/automarket-backend/internal/app/service"
	apperrors "github.com/automarket/automarket-backend/internal/errors"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService  service.CartService
	orderService service.OrderService
}

func NewCartController(cartService service.CartService, orderService service.OrderService) *CartController {
	return &CartController{
		cartService:  cartService,
		orderService: orderService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// UpdateCartRequest uses a pointer so an explicit 0 is not treated as missing.
type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func itemID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return 0, false
	}
	return id, true
}

// GetCart returns the cart of the browsing session
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	view := ctrl.cartService.GetCart(c.Request.Context(), middleware.GetCartSession(c))
	c.JSON(http.StatusOK, view)
}

// AddToCart adds one unit of a product
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product_id is required")
		return
	}

	view, err := ctrl.cartService.AddProduct(c.Request.Context(), middleware.GetCartSession(c), req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add to cart", err, map[string]interface{}{
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add to cart")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateCartItem sets the quantity of an item; values below 1 become 1
// PUT /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "quantity is required")
		return
	}

	view := ctrl.cartService.UpdateQuantity(c.Request.Context(), middleware.GetCartSession(c), id, *req.Quantity)
	c.JSON(http.StatusOK, view)
}

// RemoveFromCart
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	view := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetCartSession(c), id)
	c.JSON(http.StatusOK, view)
}

// ClearCart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view := ctrl.cartService.Clear(c.Request.Context(), middleware.GetCartSession(c))
	c.JSON(http.StatusOK, view)
}

// Checkout turns the session cart into an order for the logged in user
// POST /api/v1/cart/checkout
func (ctrl *CartController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), userID, middleware.GetCartSession(c))
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
			return
		}
		log.Error("Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}
