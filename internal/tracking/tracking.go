// Package tracking resolves a customer's order reference to its checkout
// session and exposes the order once the email matches.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/carpetpalace/storefront-api/internal/metrics"
	"github.com/carpetpalace/storefront-api/internal/orders"
	"github.com/carpetpalace/storefront-api/internal/payments"
)

// DefaultWindow is how many recent sessions are scanned when the order index
// has no entry for a human-readable id.
const DefaultWindow = 100

// MaxWindow is the largest page the provider's session list accepts.
const MaxWindow = 100

const sessionIDPrefix = "cs_"

var (
	ErrMissingCredentials = errors.New("order id and email are required")
	ErrNotFound           = errors.New("order not found")
	ErrInvalidSession     = errors.New("invalid order id") // provider-style id the provider does not know
	ErrEmailMismatch      = errors.New("email does not match order")
	ErrMissingSessionID   = errors.New("session id is required")
)

// OrderIndex looks up indexed orders. Get returns (nil, nil) on a miss.
type OrderIndex interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

type Service struct {
	gateway payments.Gateway
	index   OrderIndex
	metrics *metrics.Recorder
	window  int
}

// NewService returns a tracker. index and rec may be nil. window is clamped
// to MaxWindow.
func NewService(gateway payments.Gateway, index OrderIndex, rec *metrics.Recorder, window int) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	if window > MaxWindow {
		log.Printf("[tracking] window=%d exceeds provider limit, using %d", window, MaxWindow)
		window = MaxWindow
	}
	return &Service{gateway: gateway, index: index, metrics: rec, window: window}
}

// Address mirrors the provider's shipping address. Line2 is null when empty.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

type Shipping struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

type Item struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Amount      int64  `json:"amount"`
}

// OrderDetails is what a customer sees for a tracked order. Amounts are in
// the minor units of Currency.
type OrderDetails struct {
	ID        string    `json:"id"`
	SessionID string    `json:"stripeSessionId"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Created   int64     `json:"created"`
	Shipping  *Shipping `json:"shipping"`
	Items     []Item    `json:"items"`
}

// Track finds the session for orderID and checks that email matches the one
// used at checkout, ignoring case. A mismatch is ErrEmailMismatch, distinct
// from ErrNotFound.
func (s *Service) Track(ctx context.Context, orderID, email string) (*OrderDetails, error) {
	orderID = strings.TrimSpace(orderID)
	email = strings.TrimSpace(email)
	if orderID == "" || email == "" {
		return nil, ErrMissingCredentials
	}

	sess, err := s.findSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(sess.CustomerEmail, email) {
		log.Printf("[tracking] email mismatch order_id=%s session_id=%s", orderID, sess.ID)
		return nil, ErrEmailMismatch
	}
	return details(sess), nil
}

func (s *Service) findSession(ctx context.Context, orderID string) (*payments.Session, error) {
	if strings.HasPrefix(orderID, sessionIDPrefix) {
		sess, err := s.gateway.GetSession(ctx, orderID)
		if errors.Is(err, payments.ErrSessionNotFound) {
			s.metrics.OrderLookup("session", "miss")
			return nil, ErrInvalidSession
		}
		if err != nil {
			return nil, err
		}
		s.metrics.OrderLookup("session", "found")
		return sess, nil
	}

	if sessionID := s.indexedSession(ctx, orderID); sessionID != "" {
		sess, err := s.gateway.GetSession(ctx, sessionID)
		switch {
		case err == nil:
			s.metrics.OrderLookup("index", "found")
			return sess, nil
		case !errors.Is(err, payments.ErrSessionNotFound):
			return nil, err
		}
		log.Printf("[tracking] indexed session missing at provider order_id=%s session_id=%s", orderID, sessionID)
	}

	recent, err := s.gateway.ListRecentSessions(ctx, s.window)
	if err != nil {
		return nil, err
	}
	for _, cand := range recent {
		if cand.OrderID() != orderID {
			continue
		}
		sess, err := s.gateway.GetSession(ctx, cand.ID)
		if errors.Is(err, payments.ErrSessionNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		s.metrics.OrderLookup("scan", "found")
		return sess, nil
	}
	s.metrics.OrderLookup("scan", "miss")
	return nil, ErrNotFound
}

// indexedSession returns the session id recorded for orderID, or "" when the
// index is absent, misses, or errors. Errors fall through to the scan.
func (s *Service) indexedSession(ctx context.Context, orderID string) string {
	if s.index == nil {
		return ""
	}
	o, err := s.index.Get(ctx, orderID)
	if err != nil {
		log.Printf("[tracking] order index lookup failed order_id=%s err=%v", orderID, err)
		return ""
	}
	if o == nil {
		return ""
	}
	return o.SessionID
}

// OrderIDForSession returns the human-readable order id stored on a session,
// or nil when the session carries none.
func (s *Service) OrderIDForSession(ctx context.Context, sessionID string) (*string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	sess, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
		}
		return nil, err
	}
	if id := sess.OrderID(); id != "" {
		return &id, nil
	}
	return nil, nil
}

func details(sess *payments.Session) *OrderDetails {
	d := &OrderDetails{
		ID:        sess.ID,
		SessionID: sess.ID,
		Status:    sess.PaymentStatus,
		Amount:    sess.AmountTotal,
		Currency:  strings.ToUpper(sess.Currency),
		Items:     make([]Item, 0, len(sess.LineItems)),
	}
	if id := sess.OrderID(); id != "" {
		d.ID = id
	}
	if sess.PaymentStatus == payments.PaymentStatusPaid {
		d.Status = "Complete"
	}
	if d.Currency == "" {
		d.Currency = "INR"
	}
	if !sess.Created.IsZero() {
		d.Created = sess.Created.Truncate(time.Second).Unix()
	}
	if sh := sess.Shipping; sh != nil {
		d.Shipping = &Shipping{
			Name: sh.Name,
			Address: Address{
				Line1:      sh.Address.Line1,
				City:       sh.Address.City,
				State:      sh.Address.State,
				PostalCode: sh.Address.PostalCode,
				Country:    sh.Address.Country,
			},
		}
		if sh.Address.Line2 != "" {
			line2 := sh.Address.Line2
			d.Shipping.Address.Line2 = &line2
		}
	}
	for _, li := range sess.LineItems {
		it := Item{Description: li.Description, Quantity: li.Quantity, Amount: li.Amount}
		if it.Description == "" {
			it.Description = "Product"
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		d.Items = append(d.Items, it)
	}
	return d
}
