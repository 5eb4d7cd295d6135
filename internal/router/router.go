package router

import (
	"net/http"

	"github.com/automarket/automarket-backend/config"
	"github.com/automarket/automarket-backend/internal/app/controller"
	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController        *controller.AuthController
	profileController     *controller.ProfileController
	vehicleController     *controller.VehicleController
	favoriteController    *controller.FavoriteController
	compareController     *controller.CompareController
	productController     *controller.ProductController
	cartController        *controller.CartController
	orderController       *controller.OrderController
	uploadController      *controller.UploadController
	maintenanceController *controller.MaintenanceController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	profileController *controller.ProfileController,
	vehicleController *controller.VehicleController,
	favoriteController *controller.FavoriteController,
	compareController *controller.CompareController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	maintenanceController *controller.MaintenanceController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		profileController:     profileController,
		vehicleController:     vehicleController,
		favoriteController:    favoriteController,
		compareController:     compareController,
		productController:     productController,
		cartController:        cartController,
		orderController:       orderController,
		uploadController:      uploadController,
		maintenanceController: maintenanceController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "AutoMarket API is running",
		})
	})

	authenticated := r.authMiddleware.Authenticate()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", authenticated, r.authController.Logout)
			auth.GET("/me", authenticated, r.authController.GetMe)
		}

		profile := v1.Group("/profile", authenticated)
		{
			profile.GET("", r.profileController.GetProfile)
			profile.PUT("", r.profileController.UpdateProfile)
		}

		business := v1.Group("/business-profile", authenticated)
		{
			business.GET("", r.profileController.GetBusinessProfile)
			business.PUT("", r.profileController.UpdateBusinessProfile)
		}

		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", r.vehicleController.ListVehicles)
			vehicles.GET("/search", r.vehicleController.SearchVehicles)
			vehicles.GET("/mine", authenticated, r.vehicleController.ListMine)
			vehicles.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.vehicleController.GetVehicle)
			vehicles.POST("", authenticated, r.vehicleController.CreateVehicle)
			vehicles.PUT("/:id", authenticated, r.vehicleController.UpdateVehicle)
			vehicles.PATCH("/:id/status", authenticated, r.vehicleController.ToggleStatus)
			vehicles.DELETE("/:id", authenticated, r.vehicleController.DeleteVehicle)
		}

		favorites := v1.Group("/favorites", authenticated)
		{
			favorites.GET("", r.favoriteController.ListFavorites)
			favorites.GET("/:vehicle_id", r.favoriteController.GetFavoriteStatus)
			favorites.POST("/:vehicle_id", r.favoriteController.AddFavorite)
			favorites.DELETE("/:vehicle_id", r.favoriteController.RemoveFavorite)
		}

		v1.GET("/compare", r.compareController.Compare)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		cookieMaxAge := int(r.config.Cart.TTL.Seconds())
		cart := v1.Group("/cart", middleware.CartSession(r.config.Cart.SessionCookie, cookieMaxAge))
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/checkout", authenticated, r.cartController.Checkout)
		}

		orders := v1.Group("/orders", authenticated)
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
		}

		upload := v1.Group("/upload", authenticated)
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		admin := v1.Group("/admin", authenticated, r.authMiddleware.RequireRole(string(model.RoleAdmin)))
		{
			admin.POST("/maintenance/orphan-sweep", r.maintenanceController.SweepOrphanImages)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
