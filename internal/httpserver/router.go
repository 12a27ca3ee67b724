package httpserver

import (
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	switch {
	case deps.CustomerSvc == nil:
		return nil, errors.New("customer service required")
	case deps.ProductSvc == nil:
		return nil, errors.New("product service required")
	case deps.CartSvc == nil:
		return nil, errors.New("cart service required")
	case deps.CheckoutSvc == nil:
		return nil, errors.New("checkout service required")
	}
	if deps.DefaultCustomerID <= 0 {
		deps.DefaultCustomerID = 1
	}

	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", customerIDHeader, idempotencyHeader, requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/health", healthHandler)
	router.GET("/healthz", healthHandler)
	var ready pinger
	if db != nil {
		ready = db
	}
	router.GET("/readyz", readyHandler(ready))

	h := &handlers{logger: logger, deps: deps}
	router.Use(authMiddleware(logger, deps.CustomerSvc))

	auth := router.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.GET("/me", requireAccount(), h.me)
	auth.POST("/logout", requireAccount(), h.logout)

	buyer := router.Group("/buyer")
	buyer.GET("/products", h.listBuyerProducts)
	buyer.GET("/products/:productId", h.getProduct)

	buyer.GET("/cart", h.getCart)
	buyer.POST("/cart/items", h.addCartItem)
	buyer.PUT("/cart/items/:productId", h.setCartItem)
	buyer.DELETE("/cart/items/:productId", h.removeCartItem)

	buyer.POST("/orders/checkout", h.checkout)
	buyer.GET("/orders", h.listOrders)
	buyer.GET("/orders/:orderId", h.getOrder)

	staff := router.Group("/staff", requireStaff())
	staff.GET("/products", h.listStaffProducts)
	staff.POST("/products", h.createProduct)
	staff.PUT("/products/:productId", h.updateProduct)
	staff.PUT("/products/:productId/update_product_status", h.updateProductStatus)
	staff.POST("/products/:productId/images", h.uploadProductImage)

	return router, nil
}

type handlers struct {
	logger *log.Logger
	deps   Deps
}
