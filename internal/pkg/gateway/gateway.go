package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Adapter is the narrow boundary to the external payment gateway. The core
// never builds checkout sessions or inspects webhook payloads itself, and it
// never trusts an event that has not passed through VerifyAndParse.
type Adapter interface {
	// OpenCheckout creates a hosted checkout session for the given amount and
	// returns the payer-facing session URL. The correlation id is embedded in
	// the session so the later webhook can be matched to a ledger row.
	OpenCheckout(ctx context.Context, params CheckoutParams) (string, error)

	// VerifyAndParse authenticates a raw webhook delivery and parses it into
	// a tagged event. Payloads failing authenticity or structure checks are
	// rejected here, before any business logic runs.
	VerifyAndParse(payload []byte, signatureHeader string) (Event, error)
}

// CheckoutParams describes a checkout session to open.
type CheckoutParams struct {
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CorrelationID string
}

var (
	// ErrGatewayUnavailable covers transport failures and gateway-side 5xx;
	// the caller may retry.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected covers gateway-side rejection of the session request.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
	// ErrInvalidSignature means the webhook signature did not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedPayload means the webhook body could not be parsed.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)
