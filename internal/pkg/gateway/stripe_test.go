package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header the verifier accepts.
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func signedEvent(t *testing.T, eventType, object string) ([]byte, string) {
	t.Helper()
	// ConstructEvent rejects events whose api_version differs from the
	// library's pinned version, so the fixture has to carry it.
	payload := []byte(fmt.Sprintf(`{"id":"evt_test_1","api_version":"%s","type":"%s","data":{"object":%s}}`,
		stripe.APIVersion, eventType, object))
	return payload, signPayload(payload, testWebhookSecret, time.Now())
}

func testAdapter() *StripeAdapter {
	return &StripeAdapter{webhookSecret: testWebhookSecret, clientURL: "https://pay.example.com"}
}

func TestVerifyAndParseCompletedSession(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.completed",
		`{"metadata":{"transaction_id":"txn_abc"},"payment_method_types":["card"]}`)

	event, err := testAdapter().VerifyAndParse(payload, sig)
	require.NoError(t, err)

	completed, ok := event.(CheckoutCompleted)
	require.True(t, ok, "expected CheckoutCompleted, got %T", event)
	assert.Equal(t, "evt_test_1", completed.EventID())
	assert.Equal(t, "txn_abc", completed.CorrelationID)
	assert.Equal(t, "credit_card", completed.PaymentMethod)
}

func TestVerifyAndParseFailedSession(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.async_payment_failed",
		`{"metadata":{"transaction_id":"txn_abc"}}`)

	event, err := testAdapter().VerifyAndParse(payload, sig)
	require.NoError(t, err)

	failed, ok := event.(CheckoutFailed)
	require.True(t, ok, "expected CheckoutFailed, got %T", event)
	assert.Equal(t, "txn_abc", failed.CorrelationID)
}

func TestVerifyAndParseUnhandledType(t *testing.T) {
	payload, sig := signedEvent(t, "invoice.paid", `{}`)

	event, err := testAdapter().VerifyAndParse(payload, sig)
	require.NoError(t, err)

	other, ok := event.(OtherEvent)
	require.True(t, ok, "expected OtherEvent, got %T", event)
	assert.Equal(t, "invoice.paid", other.Kind())
}

func TestVerifyAndParseMissingMetadata(t *testing.T) {
	payload, sig := signedEvent(t, "checkout.session.completed", `{}`)

	event, err := testAdapter().VerifyAndParse(payload, sig)
	require.NoError(t, err)

	completed := event.(CheckoutCompleted)
	assert.Empty(t, completed.CorrelationID)
}

func TestVerifyAndParseRejectsBadSignature(t *testing.T) {
	payload, _ := signedEvent(t, "checkout.session.completed", `{}`)
	sig := signPayload(payload, "whsec_wrong_secret", time.Now())

	_, err := testAdapter().VerifyAndParse(payload, sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseRejectsMissingSignature(t *testing.T) {
	payload, _ := signedEvent(t, "checkout.session.completed", `{}`)

	_, err := testAdapter().VerifyAndParse(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseRejectsStaleSignature(t *testing.T) {
	payload, _ := signedEvent(t, "checkout.session.completed", `{}`)
	sig := signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	_, err := testAdapter().VerifyAndParse(payload, sig)
	assert.Error(t, err)
}

func TestSessionPaymentMethodMapping(t *testing.T) {
	cases := []struct {
		name   string
		object map[string]interface{}
		want   string
	}{
		{"card maps to credit_card", map[string]interface{}{"payment_method_types": []interface{}{"card"}}, "credit_card"},
		{"missing types default", map[string]interface{}{}, "credit_card"},
		{"empty types default", map[string]interface{}{"payment_method_types": []interface{}{}}, "credit_card"},
		{"other types pass through", map[string]interface{}{"payment_method_types": []interface{}{"sepa_debit"}}, "sepa_debit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sessionPaymentMethod(tc.object))
		})
	}
}

func TestMinorUnits(t *testing.T) {
	cents, err := minorUnits(decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cents)

	cents, err = minorUnits(decimal.RequireFromString("20.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(2099), cents)

	_, err = minorUnits(decimal.RequireFromString("10.005"))
	assert.Error(t, err)
}
