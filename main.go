package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/velora-shop/velora-backend/controllers"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/middleware"
	"github.com/velora-shop/velora-backend/models"
	"github.com/velora-shop/velora-backend/utils"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}
	//seeding admin user
	ctx := context.Background()
	usersCol := database.OpenCollection("users")
	if err := utils.SeedAdminUser(ctx, usersCol); err != nil {
		log.Fatal(err)
	}

	heroStore := models.NewHeroStore()
	rateCache := utils.NewRateCache(utils.NewHTTPRateFetcher(nil), time.Hour)

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.POST("/auth/register", controllers.Register())
	r.POST("/auth/login", controllers.Login())
	r.POST("/auth/refresh", controllers.Refresh())
	r.POST("/auth/logout", controllers.Logout())

	// public catalog
	r.GET("/api/products", controllers.GetProducts())
	r.GET("/api/products/:id", controllers.GetProduct())
	r.GET("/api/categories", controllers.GetCategories())
	r.GET("/api/categories/:id", controllers.GetCategory())
	r.GET("/api/categories/slug/:slug", controllers.GetCategory())
	r.GET("/api/categories/:id/products", controllers.GetCategoryProducts())
	r.GET("/api/content/hero", controllers.GetHeroContent(heroStore))
	r.POST("/api/chat", controllers.Chat())

	authed := r.Group("/api")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/auth/password", controllers.ChangeMyPassword())

		authed.GET("/cart", controllers.GetCart())
		authed.POST("/cart/items", controllers.AddToCart())
		authed.PUT("/cart/items/:productId", controllers.UpdateCartItem())
		authed.DELETE("/cart/items/:productId", controllers.RemoveCartItem())
		authed.DELETE("/cart", controllers.ClearCart())

		authed.POST("/orders", controllers.CreateOrder(rateCache))
		authed.GET("/orders", controllers.GetOrders())
		authed.GET("/orders/:id", controllers.GetOrder())
		authed.POST("/orders/:id/cancel", controllers.CancelOrder())
		authed.POST("/orders/:id/return", controllers.ReturnOrder())

		authed.POST("/products/:id/reviews", controllers.AddReview())

		authed.GET("/users/me", controllers.GetMe())
		authed.PUT("/users/me", controllers.UpdateMe())
		authed.POST("/users/me/addresses", controllers.AddAddress())
		authed.PUT("/users/me/addresses/:addressId", controllers.UpdateAddress())
		authed.DELETE("/users/me/addresses/:addressId", controllers.DeleteAddress())
		authed.POST("/users/me/payment-methods", controllers.AddPaymentMethod())
		authed.DELETE("/users/me/payment-methods/:methodId", controllers.DeletePaymentMethod())
		authed.GET("/users/me/wishlist", controllers.GetWishlist())
		authed.POST("/users/me/wishlist", controllers.AddToWishlist())
		authed.DELETE("/users/me/wishlist/:productId", controllers.RemoveFromWishlist())
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.POST("/products", controllers.AddProduct())
		admin.PATCH("/products/:id", controllers.UpdateProduct())
		admin.DELETE("/products/:id", controllers.DeleteProduct())
		admin.GET("/products/export", controllers.ExportProducts())

		admin.POST("/categories", controllers.AddCategory())
		admin.PATCH("/categories/:id", controllers.UpdateCategory())
		admin.POST("/categories/:id/image", controllers.UploadCategoryImage())
		admin.DELETE("/categories/:id", controllers.DeleteCategory())

		admin.GET("/orders", controllers.GetOrders())
		admin.GET("/orders/ws", controllers.OrderEventsSocket())
		admin.PUT("/orders/:id/status", controllers.UpdateOrderStatus())

		admin.PUT("/content/hero", controllers.UpdateHeroContent(heroStore))
		admin.POST("/content/hero/image", controllers.UploadHeroImage())

		admin.GET("/users", controllers.ListUsers())
		admin.PUT("/users/:id/status", controllers.SetUserStatus())
	}

	// Start server on port 8080 (default)
	r.Run()
}
