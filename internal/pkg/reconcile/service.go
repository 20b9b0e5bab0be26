package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/isaacoduh/paylinker-api/app/models"
	"github.com/isaacoduh/paylinker-api/app/repository"
	"github.com/isaacoduh/paylinker-api/internal/pkg/gateway"
	"github.com/isaacoduh/paylinker-api/internal/pkg/ledger"
)

// Outcome classifies what a webhook delivery did to the ledger. Every outcome
// except a verification failure is acknowledged with a success response,
// because gateway retries only help when verification itself failed.
type Outcome string

const (
	// OutcomeApplied means the event moved a transaction to a terminal state.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the transaction was already terminal, or the
	// exact delivery was seen before; nothing was written.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event kind is not one the engine acts on.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeAnomalous means the event verified but could not be matched to a
	// ledger row (missing or unknown correlation id). Logged, never an error.
	OutcomeAnomalous Outcome = "anomalous"
)

// Engine consumes verified gateway events and maps them to ledger
// transitions, enforcing idempotency and ordering safety.
type Engine struct {
	gateway gateway.Adapter
	ledger  *ledger.Service
	events  repository.WebhookEventRepository
}

// NewEngine creates a reconciliation engine.
func NewEngine(gw gateway.Adapter, led *ledger.Service, events repository.WebhookEventRepository) *Engine {
	return &Engine{gateway: gw, ledger: led, events: events}
}

// NewEngineFromDB creates an engine backed by GORM repositories.
func NewEngineFromDB(db *gorm.DB, gw gateway.Adapter) *Engine {
	return NewEngine(gw, ledger.NewServiceFromDB(db, gw), repository.NewWebhookEventRepository(db))
}

// Process handles one raw webhook delivery end to end.
//
// Only two classes of failure propagate as errors: signature/parse failures
// (the controller answers 400 so the gateway redelivers) and storage failures
// (500, same reason). Business anomalies resolve to an Outcome because a
// gateway retry cannot fix them.
func (e *Engine) Process(ctx context.Context, payload []byte, signatureHeader string) (Outcome, error) {
	event, err := e.gateway.VerifyAndParse(payload, signatureHeader)
	if err != nil {
		return "", err
	}

	created, stored, err := e.events.CreateIfNotExists(&models.WebhookEvent{
		ProviderEventID: event.EventID(),
		EventType:       event.Kind(),
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	})
	if err != nil {
		return "", fmt.Errorf("recording webhook event: %w", err)
	}
	if !created {
		// Only a cleanly processed event is a true duplicate. A record whose
		// processing errored out belongs to a delivery we answered 500 for;
		// the gateway's redelivery must re-run the transition or the
		// transaction stays pending forever. The CAS makes re-running safe.
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			return OutcomeDuplicate, nil
		}
	}

	outcome, note, procErr := e.apply(ctx, event)
	if procErr != nil {
		note = procErr.Error()
	}
	e.markProcessed(stored.ID, note)
	if procErr != nil {
		return "", procErr
	}
	return outcome, nil
}

func (e *Engine) apply(ctx context.Context, event gateway.Event) (Outcome, string, error) {
	var correlationID, target, paymentMethod string

	switch ev := event.(type) {
	case gateway.CheckoutCompleted:
		correlationID = ev.CorrelationID
		target = models.TransactionStatusSuccess
		paymentMethod = ev.PaymentMethod
	case gateway.CheckoutFailed:
		correlationID = ev.CorrelationID
		target = models.TransactionStatusFailure
	default:
		log.Printf("webhook event %s (%s) not handled, acknowledged", event.EventID(), event.Kind())
		return OutcomeIgnored, "", nil
	}

	if correlationID == "" {
		log.Printf("webhook event %s carries no transaction id, acknowledged", event.EventID())
		return OutcomeAnomalous, "missing transaction id in event payload", nil
	}

	mutated, err := e.ledger.ApplyTransition(ctx, correlationID, target, paymentMethod)
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			// No speculative rows: an unknown correlation id is recorded and
			// acknowledged, nothing else.
			log.Printf("webhook event %s references unknown transaction %s, acknowledged", event.EventID(), correlationID)
			return OutcomeAnomalous, "no transaction matches " + correlationID, nil
		}
		return "", "", err
	}
	if !mutated {
		return OutcomeDuplicate, "", nil
	}
	return OutcomeApplied, "", nil
}

func (e *Engine) markProcessed(eventID uint, note string) {
	if err := e.events.MarkProcessed(eventID, note); err != nil {
		log.Printf("failed to mark webhook event %d processed: %v", eventID, err)
	}
}
