package router

import (
	"github.com/gin-gonic/gin"

	"github.com/storely/storely-backend/config"
	"github.com/storely/storely-backend/internal/app/controller"
	"github.com/storely/storely-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	categoryController *controller.CategoryController
	brandController    *controller.BrandController
	supplierController *controller.SupplierController
	cartController     *controller.CartController
	favoriteController *controller.FavoriteController
	orderController    *controller.OrderController
	invoiceController  *controller.InvoiceController
	reviewController   *controller.ReviewController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	brandController *controller.BrandController,
	supplierController *controller.SupplierController,
	cartController *controller.CartController,
	favoriteController *controller.FavoriteController,
	orderController *controller.OrderController,
	invoiceController *controller.InvoiceController,
	reviewController *controller.ReviewController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		categoryController: categoryController,
		brandController:    brandController,
		supplierController: supplierController,
		cartController:     cartController,
		favoriteController: favoriteController,
		orderController:    orderController,
		invoiceController:  invoiceController,
		reviewController:   reviewController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storely API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		products := api.Group("/products")
		{
			// Optional auth so admins can list inactive products
			products.GET("", r.authMiddleware.OptionalAuthenticate(), r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", r.categoryController.GetCategories)
			categories.GET("/:id", r.categoryController.GetCategoryByID)
		}

		brands := api.Group("/brands")
		{
			brands.GET("", r.brandController.GetBrands)
			brands.GET("/:id", r.brandController.GetBrandByID)
		}

		cart := api.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		favorites := api.Group("/favorites")
		favorites.Use(r.authMiddleware.Authenticate())
		{
			favorites.GET("", r.favoriteController.GetFavorites)
			favorites.POST("", r.favoriteController.AddFavorite)
			favorites.DELETE("/:id", r.favoriteController.RemoveFavorite)
		}

		orders := api.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.PATCH("/:id/pay", r.orderController.MarkPaid)
			orders.PATCH("/:id/cancel", r.orderController.CancelOrder)
		}

		reviews := api.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.POST("", r.reviewController.CreateReview)
			reviews.PUT("/:id", r.reviewController.UpdateReview)
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
		}

		upload := api.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presign", r.uploadController.PresignUpload)
		}

		admin := api.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)
			admin.PATCH("/products/:id/stock", r.productController.SetStock)
			admin.PATCH("/products/:id/feature", r.productController.SetFeatured)

			admin.POST("/categories", r.categoryController.CreateCategory)
			admin.PUT("/categories/:id", r.categoryController.UpdateCategory)
			admin.DELETE("/categories/:id", r.categoryController.DeleteCategory)

			admin.POST("/brands", r.brandController.CreateBrand)
			admin.PUT("/brands/:id", r.brandController.UpdateBrand)
			admin.DELETE("/brands/:id", r.brandController.DeleteBrand)

			admin.GET("/suppliers", r.supplierController.GetSuppliers)
			admin.GET("/suppliers/:id", r.supplierController.GetSupplierByID)
			admin.POST("/suppliers", r.supplierController.CreateSupplier)
			admin.PUT("/suppliers/:id", r.supplierController.UpdateSupplier)
			admin.DELETE("/suppliers/:id", r.supplierController.DeleteSupplier)

			admin.PATCH("/orders/:id/status", r.orderController.UpdateOrderStatus)

			admin.POST("/invoices", r.invoiceController.CreateInvoice)
			admin.GET("/invoices", r.invoiceController.GetInvoices)
			admin.GET("/invoices/:id", r.invoiceController.GetInvoiceByID)
			admin.DELETE("/invoices/:id", r.invoiceController.CancelInvoice)

			admin.GET("/reviews", r.reviewController.GetReviews)
			admin.PATCH("/reviews/:id/approve", r.reviewController.ApproveReview)
			admin.POST("/reviews/approve", r.reviewController.ApproveReviews)
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
