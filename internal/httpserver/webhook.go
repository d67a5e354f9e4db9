package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"

	"storefront-backend/internal/domain"
)

// webhookHandler consumes Stripe gateway callbacks. A duplicate
// payment_intent.succeeded is acknowledged with 200 so Stripe stops
// retrying, but reported as a duplicate for upstream logs.
func webhookHandler(logger *log.Logger, svc reconcileService) gin.HandlerFunc {
	const maxBodyBytes = int64(65536)

	return func(c *gin.Context) {
		traceID := uuid.NewString()
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		var event stripe.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		switch event.Type {
		case "payment_intent.succeeded":
			var intent stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
				logger.Printf("webhook %s: unmarshal payment intent: %v", traceID, err)
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payment intent"})
				return
			}

			orderID := intent.Metadata["order_id"]
			if orderID == "" {
				logger.Printf("webhook %s: payment intent %s has no order_id metadata", traceID, intent.ID)
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_id metadata"})
				return
			}

			settled := time.Unix(event.Created, 0).UTC()
			result := domain.PaymentResult{
				TransactionID: intent.ID,
				Status:        "succeeded",
				SettledAt:     &settled,
				PayerEmail:    intent.ReceiptEmail,
			}

			order, err := svc.MarkPaid(c.Request.Context(), orderID, result)
			if err != nil {
				if errors.Is(err, domain.ErrAlreadyPaid) {
					logger.Printf("webhook %s: duplicate payment event for order %s", traceID, orderID)
					c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
					return
				}
				writeError(c, err)
				return
			}
			logger.Printf("webhook %s: order %s paid by %s", traceID, order.ID, intent.ID)
			c.JSON(http.StatusOK, gin.H{"status": "paid"})

		default:
			c.JSON(http.StatusOK, gin.H{"status": "ignored", "event": string(event.Type)})
		}
	}
}
