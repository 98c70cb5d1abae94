// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/domain/cart"
	"github.com/your-org/thangka-store-backend/internal/domain/order"
	"github.com/your-org/thangka-store-backend/internal/domain/post"
	"github.com/your-org/thangka-store-backend/internal/domain/product"
	redisdb "github.com/your-org/thangka-store-backend/internal/infrastructure/database/redis"
	"github.com/your-org/thangka-store-backend/internal/interfaces/http/handlers"
	"github.com/your-org/thangka-store-backend/internal/interfaces/http/middleware"
	"github.com/your-org/thangka-store-backend/internal/pkg/logging"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group onto the given router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	logger := logging.New(cfg)

	catalog := product.NewCatalog(db)
	cartService := cart.NewService(db, catalog, &redisdb.Client{Redis: redisClient}, cfg, logger)
	orderService := order.NewService(db, cartService, cfg, logger)

	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, cfg)
	postHandler := handlers.NewPostHandler(post.NewService(db))

	// Public auth endpoints
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}

	// Public catalog endpoints
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/featured", productHandler.GetFeaturedProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/ratings", productHandler.GetProductRatings)

		ratings := products.Group("")
		ratings.Use(middleware.AuthMiddleware(cfg))
		{
			ratings.POST("/:id/ratings", productHandler.AddProductRating)
		}
	}

	// Cart endpoints require authentication
	cartRoutes := rg.Group("/cart")
	cartRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.GET("/summary", cartHandler.GetCartSummary)
		cartRoutes.POST("/items", cartHandler.AddToCart)
		cartRoutes.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartRoutes.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartRoutes.DELETE("", cartHandler.ClearCart)
	}

	// Blog endpoints: published posts are public, writing requires auth
	posts := rg.Group("/posts")
	{
		posts.GET("", postHandler.GetPosts)
		posts.GET("/:id", postHandler.GetPost)

		authored := posts.Group("")
		authored.Use(middleware.AuthMiddleware(cfg))
		{
			authored.GET("/mine", postHandler.GetMyPosts)
			authored.POST("", postHandler.CreatePost)
			authored.PUT("/:id", postHandler.UpdatePost)
			authored.DELETE("/:id", postHandler.DeletePost)
			authored.PUT("/:id/like", postHandler.ToggleLike)
			authored.POST("/:id/comments", postHandler.AddComment)
			authored.DELETE("/:id/comments/:commentID", postHandler.DeleteComment)
		}
	}

	// Order endpoints require authentication
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", orderHandler.GetInvoice)
	}

	// Admin endpoints
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		adminProducts := admin.Group("/products")
		{
			adminProducts.GET("", productHandler.AdminGetProducts)
			adminProducts.GET("/:id", productHandler.GetProduct)
			adminProducts.POST("", productHandler.AdminCreateProduct)
			adminProducts.PUT("/:id", productHandler.AdminUpdateProduct)
			adminProducts.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", orderHandler.AdminGetOrders)
			adminOrders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
			adminOrders.PUT("/:id/payment-status", orderHandler.AdminUpdatePaymentStatus)
			adminOrders.PUT("/:id/tracking", orderHandler.AdminSetTracking)
		}
	}
}
