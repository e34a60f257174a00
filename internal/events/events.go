// Package events defines the messages exchanged over the orders queue.
package events

import "time"

// TypeSessionCreated is published after a checkout session is opened.
const TypeSessionCreated = "checkout.session_created"

// SessionCreated is the payload sent from API -> SQS -> worker.
type SessionCreated struct {
	Type           string    `json:"type"`
	EventID        string    `json:"event_id"`
	OrderID        string    `json:"order_id"`
	SessionID      string    `json:"session_id"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	Currency       string    `json:"currency"`
	AmountMinor    int64     `json:"amount_minor"`
	Country        string    `json:"country"`
	CreatedAt      time.Time `json:"created_at"`
}

// Attributes returns the SQS message attributes for the event.
func (e SessionCreated) Attributes() map[string]string {
	return map[string]string{
		"type":            e.Type,
		"order_id":        e.OrderID,
		"idempotency_key": e.IdempotencyKey,
		"correlation_id":  e.CorrelationID,
	}
}
