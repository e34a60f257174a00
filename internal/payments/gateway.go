// Package payments is the boundary to the hosted checkout provider.
package payments

import (
	"context"
	"errors"
	"time"
)

// Metadata keys attached to every checkout session.
const (
	MetadataOrderID         = "custom_order_id"
	MetadataShippingAddress = "shipping_address"
	MetadataTotalPrice      = "total_price"
)

// Provider payment states.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// Session lifecycle states.
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"
)

// ErrSessionNotFound is returned when the provider does not know a session id.
var ErrSessionNotFound = errors.New("checkout session not found")

// UpstreamError wraps a provider failure. Error returns the provider's own
// message so it can be shown to the caller unchanged.
type UpstreamError struct {
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Op + " failed"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// LineItem is a priced line submitted to the provider. UnitAmount is in the
// minor units of Currency.
type LineItem struct {
	Name        string
	Description string
	Images      []string
	Currency    string
	UnitAmount  int64
	Quantity    int64
}

// CreateSessionParams describes a hosted checkout session.
type CreateSessionParams struct {
	LineItems        []LineItem
	SuccessURL       string
	CancelURL        string
	CustomerEmail    string
	AllowedCountries []string
	Metadata         map[string]string
	IdempotencyKey   string
}

// Address is a postal address as reported by the provider.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Shipping is the collected shipping contact.
type Shipping struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// SessionLineItem is a purchased line as reported by the provider.
type SessionLineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Amount      int64  `json:"amount"`
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
	Currency      string
	Created       time.Time
	Metadata      map[string]string
	Shipping      *Shipping
	LineItems     []SessionLineItem
}

// OrderID returns the human-readable order id stored in metadata, if any.
func (s *Session) OrderID() string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[MetadataOrderID]
}

// Paid reports whether the customer has paid.
func (s *Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid || s.PaymentStatus == PaymentStatusNoPaymentRequired
}

// Gateway is the hosted checkout provider.
type Gateway interface {
	CreateSession(ctx context.Context, p *CreateSessionParams) (*Session, error)
	// GetSession returns the session with its line items.
	GetSession(ctx context.Context, id string) (*Session, error)
	// ListRecentSessions returns up to limit sessions, newest first, without
	// line items.
	ListRecentSessions(ctx context.Context, limit int) ([]*Session, error)
}
