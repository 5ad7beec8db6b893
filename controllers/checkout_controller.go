package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/middleware"
	"github.com/Rvd99/ali-baba/services"
)

type CheckoutController struct {
	checkoutService *services.CheckoutService
	stripeService   *services.StripeService
	logger          *zap.Logger
}

func NewCheckoutController(checkoutService *services.CheckoutService, stripeService *services.StripeService, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		stripeService:   stripeService,
		logger:          logger,
	}
}

// CreateCheckoutSession starts the hosted payment flow: a PENDING order plus a
// Stripe session the client redirects to.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, svcErr := cc.checkoutService.Checkout(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleWebhook receives Stripe events. Signature verification gates
// everything; unhandled event types are acknowledged so Stripe stops
// retrying them.
func (cc *CheckoutController) HandleWebhook(c *gin.Context) {
	event, err := cc.stripeService.ParseWebhook(c.Request)
	if err != nil {
		cc.logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			cc.logger.Error("Failed to decode checkout session event", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
			return
		}

		orderID, err := uuid.Parse(sess.Metadata["order_id"])
		if err != nil {
			cc.logger.Warn("Checkout session missing order metadata",
				zap.String("session_id", sess.ID),
			)
			// Nothing to reconcile; acknowledge so the event is not redelivered.
			c.JSON(http.StatusOK, gin.H{"status": "received"})
			return
		}

		var paymentIntentID string
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}

		if svcErr := cc.checkoutService.HandlePaymentCompleted(c.Request.Context(), orderID, paymentIntentID); svcErr != nil {
			c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
			return
		}

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			cc.logger.Error("Failed to decode payment intent event", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
			return
		}
		cc.checkoutService.HandlePaymentFailed(c.Request.Context(), intent.ID)

	default:
		cc.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
