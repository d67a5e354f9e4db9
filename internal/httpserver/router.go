package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/checkout"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/pricing"
	cartsvc "storefront-backend/internal/service/cart"
)

// Deps carries the services the routes dispatch to. They are consumer-side
// interfaces so handler tests can stub them.
type Deps struct {
	Checkout  checkoutService
	Reconcile reconcileService
	Orders    orderReader
	Carts     cartService
	Products  productReader
}

type checkoutService interface {
	Checkout(ctx context.Context, userID string, in checkout.Input) (*domain.Order, error)
	Preview(ctx context.Context, userID, cartID string) (pricing.Amounts, error)
}

type reconcileService interface {
	MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult) (*domain.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error)
}

type orderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Order, error)
}

type cartService interface {
	Create(ctx context.Context, userID string, in cartsvc.CreateInput) (*domain.Cart, error)
	Get(ctx context.Context, userID, id string) (*domain.Cart, error)
	GetActive(ctx context.Context, userID string) (*domain.Cart, error)
	Update(ctx context.Context, userID, cartID string, in cartsvc.UpdateInput) (*domain.Cart, error)
}

type productReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-User-Id"},
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.GET("/products", listProductsHandler(deps.Products))
	api.GET("/products/:id", getProductHandler(deps.Products))

	// Delivered by the payment gateway, not a user.
	api.POST("/payments/webhook", webhookHandler(logger, deps.Reconcile))

	user := api.Group("", userMiddleware())
	user.POST("/carts", createCartHandler(deps.Carts))
	user.GET("/carts/mine", activeCartHandler(deps.Carts))
	user.GET("/carts/:id", getCartHandler(deps.Carts))
	user.POST("/carts/:id", updateCartHandler(deps.Carts))

	user.POST("/orders", checkoutHandler(deps.Checkout))
	user.POST("/orders/preview", previewHandler(deps.Checkout))
	user.GET("/orders/mine", listOrdersHandler(deps.Orders))
	user.GET("/orders/:id", getOrderHandler(deps.Orders))
	user.PUT("/orders/:id/pay", payOrderHandler(deps.Reconcile))
	user.PUT("/orders/:id/deliver", deliverOrderHandler(deps.Reconcile))

	return router
}

const userIDKey = "userID"

// userMiddleware trusts the X-User-Id header set by the external auth layer
// after it validated the caller's credentials.
func userMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-Id header"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
