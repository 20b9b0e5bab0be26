package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

const metadataTransactionIDKey = "transaction_id"

// StripeAdapter implements Adapter on top of Stripe Checkout and Stripe
// webhook signatures.
type StripeAdapter struct {
	webhookSecret string
	clientURL     string
}

// NewStripeAdapter configures the Stripe client with the given API key and
// returns an adapter. The client URL is the base for success/cancel redirects.
func NewStripeAdapter(apiKey, webhookSecret, clientURL string) *StripeAdapter {
	stripe.Key = apiKey
	return &StripeAdapter{
		webhookSecret: webhookSecret,
		clientURL:     clientURL,
	}
}

// OpenCheckout creates a Stripe Checkout session with the transaction id in
// the session metadata.
func (a *StripeAdapter) OpenCheckout(ctx context.Context, p CheckoutParams) (string, error) {
	unitAmount, err := minorUnits(p.Amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(unitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(a.clientURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(a.clientURL + "/cancel"),
	}
	params.Context = ctx
	params.AddMetadata(metadataTransactionIDKey, p.CorrelationID)

	s, err := session.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return s.URL, nil
}

// VerifyAndParse checks the Stripe-Signature header against the raw payload
// and maps the event into the tagged variants the engine understands.
func (a *StripeAdapter) VerifyAndParse(payload []byte, signatureHeader string) (Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, a.webhookSecret)
	if err != nil {
		if errors.Is(err, webhook.ErrNotSigned) || errors.Is(err, webhook.ErrNoValidSignature) || errors.Is(err, webhook.ErrInvalidHeader) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return CheckoutCompleted{
			ID:            event.ID,
			CorrelationID: sessionTransactionID(event.Data.Object),
			PaymentMethod: sessionPaymentMethod(event.Data.Object),
		}, nil
	case "checkout.session.async_payment_failed":
		return CheckoutFailed{
			ID:            event.ID,
			CorrelationID: sessionTransactionID(event.Data.Object),
		}, nil
	default:
		return OtherEvent{ID: event.ID, RawKind: string(event.Type)}, nil
	}
}

// sessionTransactionID digs the correlation id out of the checkout session
// metadata. An empty result is an anomaly for the engine, not a parse error.
func sessionTransactionID(object map[string]interface{}) string {
	metadata, ok := object["metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := metadata[metadataTransactionIDKey].(string)
	return id
}

// sessionPaymentMethod normalizes Stripe's payment method types to the
// ledger's vocabulary.
func sessionPaymentMethod(object map[string]interface{}) string {
	types, ok := object["payment_method_types"].([]interface{})
	if !ok || len(types) == 0 {
		return "credit_card"
	}
	first, _ := types[0].(string)
	switch first {
	case "", "card":
		return "credit_card"
	default:
		return first
	}
}

func minorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-cent precision", amount)
	}
	return cents.IntPart(), nil
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 {
			log.Printf("stripe checkout session failed upstream: %v", err)
			return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	}

	// Network-level failures reach here without a stripe.Error.
	log.Printf("stripe checkout session unreachable: %v", err)
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}
