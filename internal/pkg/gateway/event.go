package gateway

// Event is a verified gateway webhook event, parsed into a tagged variant at
// the adapter boundary so the reconciliation engine never inspects raw maps.
type Event interface {
	// EventID returns the gateway's delivery id, used for deduplication.
	EventID() string
	// Kind returns the gateway's event type string.
	Kind() string
}

// CheckoutCompleted signals a settled checkout. CorrelationID may be empty
// when the session carried no usable metadata; the engine records that as an
// anomaly rather than a parse failure.
type CheckoutCompleted struct {
	ID            string
	CorrelationID string
	PaymentMethod string
}

func (e CheckoutCompleted) EventID() string { return e.ID }
func (e CheckoutCompleted) Kind() string    { return "checkout_completed" }

// CheckoutFailed signals a checkout whose payment did not go through.
type CheckoutFailed struct {
	ID            string
	CorrelationID string
}

func (e CheckoutFailed) EventID() string { return e.ID }
func (e CheckoutFailed) Kind() string    { return "checkout_failed" }

// OtherEvent is any verified event kind the engine does not act on. It is
// acknowledged and logged without mutation.
type OtherEvent struct {
	ID      string
	RawKind string
}

func (e OtherEvent) EventID() string { return e.ID }
func (e OtherEvent) Kind() string    { return e.RawKind }
