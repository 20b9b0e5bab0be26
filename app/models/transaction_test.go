package models

import (
	"strings"
	"testing"
)

func TestNewTransactionID_UniqueAndPrefixed(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewTransactionID()
		if !strings.HasPrefix(id, "txn_") {
			t.Fatalf("expected txn_ prefix, got %q", id)
		}
		if _, exists := seen[id]; exists {
			t.Fatalf("duplicate transaction id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        string
		target      string
		method      string
		wantMutated bool
		wantStatus  string
		wantMethod  string
		wantErr     bool
	}{
		{name: "pending to success", from: TransactionStatusPending, target: TransactionStatusSuccess, method: "credit_card", wantMutated: true, wantStatus: TransactionStatusSuccess, wantMethod: "credit_card"},
		{name: "pending to failure", from: TransactionStatusPending, target: TransactionStatusFailure, wantMutated: true, wantStatus: TransactionStatusFailure},
		{name: "success stays success", from: TransactionStatusSuccess, target: TransactionStatusFailure, wantMutated: false, wantStatus: TransactionStatusSuccess},
		{name: "failure stays failure", from: TransactionStatusFailure, target: TransactionStatusSuccess, method: "credit_card", wantMutated: false, wantStatus: TransactionStatusFailure},
		{name: "unknown target", from: TransactionStatusPending, target: "refunded", wantErr: true, wantStatus: TransactionStatusPending},
		{name: "no backward transition to pending", from: TransactionStatusSuccess, target: TransactionStatusPending, wantErr: true, wantStatus: TransactionStatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.from}
			mutated, err := tx.Transition(tt.target, tt.method)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for target %q", tt.target)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mutated != tt.wantMutated {
				t.Fatalf("mutated = %t, want %t", mutated, tt.wantMutated)
			}
			if tx.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", tx.Status, tt.wantStatus)
			}
			if tx.PaymentMethod != tt.wantMethod {
				t.Fatalf("payment method = %q, want %q", tx.PaymentMethod, tt.wantMethod)
			}
		})
	}
}

func TestTransition_TerminalIsIdempotent(t *testing.T) {
	tx := &Transaction{Status: TransactionStatusPending}

	mutated, err := tx.Transition(TransactionStatusSuccess, "credit_card")
	if err != nil || !mutated {
		t.Fatalf("first transition: mutated=%t err=%v", mutated, err)
	}
	firstUpdate := tx.UpdatedAt

	mutated, err = tx.Transition(TransactionStatusSuccess, "credit_card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mutated {
		t.Fatalf("expected replayed transition to be a no-op")
	}
	if !tx.UpdatedAt.Equal(firstUpdate) {
		t.Fatalf("expected updated_at untouched on replay")
	}
}

func TestValidTransactionStatus(t *testing.T) {
	for _, s := range []string{TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailure} {
		if !ValidTransactionStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "refunded", "PENDING"} {
		if ValidTransactionStatus(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
