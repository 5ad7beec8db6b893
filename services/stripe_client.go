package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// CheckoutLine mirrors one order line into the hosted payment page.
type CheckoutLine struct {
	Name        string
	Description string
	UnitAmount  int64 // minor units
	Quantity    int64
}

// CheckoutSession is the gateway-neutral view of a created hosted session.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// PaymentGateway is the outbound payment boundary. Stripe implements it; tests
// substitute a fake.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, orderID, userID uuid.UUID, lines []CheckoutLine) (*CheckoutSession, error)
}

type StripeService struct {
	WebhookKey  string
	frontendURL string
}

func NewStripeService(secretKey, webhookKey, frontendURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{WebhookKey: webhookKey, frontendURL: frontendURL}
}

// CreateCheckoutSession builds a hosted payment session mirroring the order's
// lines. The order and buyer ids travel in metadata so the webhook can find
// the order again.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, orderID, userID uuid.UUID, lines []CheckoutLine) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("usd"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(line.Name),
					Description: stripe.String(line.Description),
				},
				UnitAmount: stripe.Int64(line.UnitAmount),
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: lineItems,
		SuccessURL: stripe.String(fmt.Sprintf("%s/orders?success=true&orderId=%s",
			s.frontendURL, orderID)),
		CancelURL: stripe.String(s.frontendURL + "/cart?cancelled=true"),
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID.String())
	params.AddMetadata("user_id", userID.String())

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}

	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

// ParseWebhook verifies the Stripe-Signature header against the raw body and
// returns the decoded event. The body is restored so later middleware can
// still read it.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
