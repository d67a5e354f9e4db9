package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/checkout"
	"storefront-backend/internal/domain"
)

func checkoutHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.CartID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cartId required"})
			return
		}

		order, err := svc.Checkout(c.Request.Context(), currentUser(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func previewHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CartID string `json:"cartId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		amounts, err := svc.Preview(c.Request.Context(), currentUser(c), req.CartID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, amounts)
	}
}

func getOrderHandler(orders orderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if order.UserID != currentUser(c) {
			writeError(c, domain.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func listOrdersHandler(orders orderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListByOwner(c.Request.Context(), currentUser(c))
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}

type payRequest struct {
	TransactionID string     `json:"transactionId"`
	Status        string     `json:"status"`
	SettledAt     *time.Time `json:"settledAt,omitempty"`
	PayerEmail    string     `json:"payerEmail,omitempty"`
}

// payOrderHandler settles orders paid outside the Stripe webhook flow
// (PayPal captures confirmed client-side, cash on delivery).
func payOrderHandler(svc reconcileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := svc.MarkPaid(c.Request.Context(), c.Param("id"), domain.PaymentResult{
			TransactionID: req.TransactionID,
			Status:        req.Status,
			SettledAt:     req.SettledAt,
			PayerEmail:    req.PayerEmail,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func deliverOrderHandler(svc reconcileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.MarkDelivered(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
