// Package checkout composes priced line items into a hosted checkout session.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carpetpalace/storefront-api/internal/events"
	"github.com/carpetpalace/storefront-api/internal/idempotency"
	"github.com/carpetpalace/storefront-api/internal/metrics"
	"github.com/carpetpalace/storefront-api/internal/orders"
	"github.com/carpetpalace/storefront-api/internal/payments"
	"github.com/carpetpalace/storefront-api/internal/pricing"
)

// ShippingLineName is the name of the synthetic shipping line.
const ShippingLineName = "Shipping Fee"

var (
	ErrEmptyCart          = errors.New("no items in cart")
	ErrShippingMismatch   = errors.New("shipping fee does not match the destination rate")
	ErrCheckoutInProgress = errors.New("a checkout with this idempotency key is already in progress")
)

// IdempotencyStore pins an Idempotency-Key to one order id and session.
type IdempotencyStore interface {
	CreateIfNotExists(ctx context.Context, key, orderID string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key, sessionID, sessionURL string) error
	MarkFailed(ctx context.Context, key, note string) error
	Reclaim(ctx context.Context, key string) error
}

// OrderIndex maps order ids to provider sessions.
type OrderIndex interface {
	Put(ctx context.Context, o *orders.Order) error
	PutCompletingIdempotency(ctx context.Context, key, sessionID, sessionURL string, o *orders.Order) error
}

// Publisher sends events to the orders queue.
type Publisher interface {
	PublishJSON(ctx context.Context, payload any, attributes map[string]string) error
}

// IDGenerator produces human-readable order ids.
type IDGenerator interface {
	New() string
}

// Deps groups the collaborators of Service. Idempotency, Orders, Publisher
// and Metrics are optional.
type Deps struct {
	Tables      *pricing.Tables
	Gateway     payments.Gateway
	IDs         IDGenerator
	Idempotency IdempotencyStore
	Orders      OrderIndex
	Publisher   Publisher
	Metrics     *metrics.Recorder
	BaseURL     string
}

type Service struct {
	tables      *pricing.Tables
	gateway     payments.Gateway
	ids         IDGenerator
	idempotency IdempotencyStore
	orders      OrderIndex
	publisher   Publisher
	metrics     *metrics.Recorder
	baseURL     string
	nowFunc     func() time.Time
}

func NewService(d Deps) *Service {
	return &Service{
		tables:      d.Tables,
		gateway:     d.Gateway,
		ids:         d.IDs,
		idempotency: d.Idempotency,
		orders:      d.Orders,
		publisher:   d.Publisher,
		metrics:     d.Metrics,
		baseURL:     strings.TrimRight(d.BaseURL, "/"),
		nowFunc:     time.Now,
	}
}

// Item is a cart line as submitted at checkout. Price is the unit price in
// the base currency.
type Item struct {
	ProductID int
	Name      string
	Price     decimal.Decimal
	Image     string
	Dimension string
	Material  string
	Quantity  int
}

// Address is the shipping contact entered on the checkout form.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
	Country   string `json:"country"`
}

type Request struct {
	Items           []Item
	ShippingAddress Address
	ShippingFee     decimal.Decimal // base currency
	TotalPrice      decimal.Decimal // base currency, subtotal + shipping
	IdempotencyKey  string
	CorrelationID   string
}

type Result struct {
	URL       string `json:"url"`
	OrderID   string `json:"orderId"`
	SessionID string `json:"sessionId"`
	Currency  string `json:"currency"`
	Replayed  bool   `json:"replayed,omitempty"`
}

// Subtotal returns sum(price * quantity) in the base currency.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// CreateSession opens a hosted checkout session for the request. With an
// idempotency key, a repeated request returns the first session instead of
// opening a new one.
func (s *Service) CreateSession(ctx context.Context, req Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := Subtotal(req.Items)
	want := s.tables.ShippingFee(req.ShippingAddress.Country, subtotal)
	if !req.ShippingFee.Equal(want) {
		return nil, fmt.Errorf("%w: got %s want %s", ErrShippingMismatch, req.ShippingFee, want)
	}

	res := s.tables.Resolve(req.ShippingAddress.Country)
	if res.Fallback {
		log.Printf("[checkout] currency fallback country=%q currency=%s rate=%s", res.Country, res.Currency, res.Rate)
		s.metrics.CurrencyFallback(res.Country)
	}
	lineItems := s.buildLineItems(req, res)

	key := req.IdempotencyKey
	orderID := s.ids.New()
	if key != "" && s.idempotency != nil {
		claimed, err := s.claim(ctx, key, orderID)
		if err != nil {
			return nil, err
		}
		if claimed.replay != nil {
			claimed.replay.Currency = res.Currency
			s.metrics.CheckoutSession(res.Currency, metrics.OutcomeReplayed)
			return claimed.replay, nil
		}
		orderID = claimed.orderID
	}

	params, err := s.sessionParams(req, lineItems, orderID)
	if err != nil {
		s.fail(ctx, key, err)
		return nil, err
	}

	sess, err := s.gateway.CreateSession(ctx, params)
	if err != nil {
		log.Printf("[checkout] create session failed order_id=%s err=%v", orderID, err)
		s.fail(ctx, key, err)
		s.metrics.CheckoutSession(res.Currency, metrics.OutcomeFailed)
		return nil, err
	}

	var amount int64
	for _, li := range lineItems {
		amount += li.UnitAmount * li.Quantity
	}
	s.record(ctx, key, sess, &orders.Order{
		OrderID:     orderID,
		SessionID:   sess.ID,
		Email:       req.ShippingAddress.Email,
		Currency:    res.Currency,
		AmountMinor: amount,
		Country:     res.Country,
		Status:      orders.StatusPending,
	})
	s.publish(ctx, events.SessionCreated{
		Type:           events.TypeSessionCreated,
		EventID:        uuid.NewString(),
		OrderID:        orderID,
		SessionID:      sess.ID,
		IdempotencyKey: key,
		CorrelationID:  req.CorrelationID,
		Currency:       res.Currency,
		AmountMinor:    amount,
		Country:        res.Country,
		CreatedAt:      s.nowFunc().UTC(),
	})

	log.Printf("[checkout] session created order_id=%s session_id=%s currency=%s amount_minor=%d", orderID, sess.ID, res.Currency, amount)
	s.metrics.CheckoutSession(res.Currency, metrics.OutcomeCreated)
	return &Result{URL: sess.URL, OrderID: orderID, SessionID: sess.ID, Currency: res.Currency}, nil
}

func (s *Service) buildLineItems(req Request, res pricing.Resolution) []payments.LineItem {
	items := make([]payments.LineItem, 0, len(req.Items)+1)
	for _, it := range req.Items {
		li := payments.LineItem{
			Name:        it.Name,
			Description: fmt.Sprintf("%s • %s", it.Dimension, it.Material),
			Currency:    res.Currency,
			UnitAmount:  s.tables.ToMinor(it.Price.Mul(res.Rate), res.Currency),
			Quantity:    int64(it.Quantity),
		}
		if it.Image != "" {
			li.Images = []string{it.Image}
		}
		items = append(items, li)
	}
	if req.ShippingFee.IsPositive() {
		items = append(items, payments.LineItem{
			Name:        ShippingLineName,
			Description: fmt.Sprintf("Shipping to %s, %s", req.ShippingAddress.City, req.ShippingAddress.Country),
			Currency:    res.Currency,
			UnitAmount:  s.tables.ToMinor(req.ShippingFee.Mul(res.Rate), res.Currency),
			Quantity:    1,
		})
	}
	return items
}

func (s *Service) sessionParams(req Request, lineItems []payments.LineItem, orderID string) (*payments.CreateSessionParams, error) {
	addr, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping address: %w", err)
	}
	return &payments.CreateSessionParams{
		LineItems:        lineItems,
		SuccessURL:       s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        s.baseURL + "/checkout",
		CustomerEmail:    req.ShippingAddress.Email,
		AllowedCountries: s.tables.AllowedCountries(),
		Metadata: map[string]string{
			payments.MetadataOrderID:         orderID,
			payments.MetadataShippingAddress: string(addr),
			payments.MetadataTotalPrice:      req.TotalPrice.String(),
		},
		IdempotencyKey: orderID,
	}, nil
}

type claimResult struct {
	orderID string
	replay  *Result
}

// claim reserves key for orderID. A live DONE record replays its session, a
// FAILED one is reclaimed and keeps its order id.
func (s *Service) claim(ctx context.Context, key, orderID string) (claimResult, error) {
	created, err := s.idempotency.CreateIfNotExists(ctx, key, orderID)
	if err != nil {
		return claimResult{}, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if created {
		return claimResult{orderID: orderID}, nil
	}

	rec, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return claimResult{}, fmt.Errorf("read idempotency key: %w", err)
	}
	if rec == nil || rec.Expired(s.nowFunc()) {
		// expired or removed between the put and the read
		created, err = s.idempotency.CreateIfNotExists(ctx, key, orderID)
		if err != nil {
			return claimResult{}, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if created {
			return claimResult{orderID: orderID}, nil
		}
		return claimResult{}, ErrCheckoutInProgress
	}

	switch rec.Status {
	case idempotency.StatusDone:
		log.Printf("[checkout] replaying session idempotency_key=%s order_id=%s session_id=%s", key, rec.OrderID, rec.SessionID)
		return claimResult{replay: &Result{
			URL:       rec.SessionURL,
			OrderID:   rec.OrderID,
			SessionID: rec.SessionID,
			Replayed:  true,
		}}, nil
	case idempotency.StatusFailed:
		if err := s.idempotency.Reclaim(ctx, key); err != nil {
			if errors.Is(err, idempotency.ErrConditionFailed) {
				return claimResult{}, ErrCheckoutInProgress
			}
			return claimResult{}, fmt.Errorf("reclaim idempotency key: %w", err)
		}
		log.Printf("[checkout] retrying failed checkout idempotency_key=%s order_id=%s", key, rec.OrderID)
		return claimResult{orderID: rec.OrderID}, nil
	default:
		return claimResult{}, ErrCheckoutInProgress
	}
}

func (s *Service) fail(ctx context.Context, key string, cause error) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.MarkFailed(ctx, key, cause.Error()); err != nil {
		log.Printf("[checkout] mark failed error idempotency_key=%s err=%v", key, err)
	}
}

// record writes the order index and completes the idempotency record. Neither
// failure is returned: the session exists and the customer must be sent to it.
func (s *Service) record(ctx context.Context, key string, sess *payments.Session, o *orders.Order) {
	if key != "" && s.idempotency != nil && s.orders != nil {
		err := s.orders.PutCompletingIdempotency(ctx, key, sess.ID, sess.URL, o)
		if err == nil {
			return
		}
		log.Printf("[checkout] transactional record failed order_id=%s err=%v", o.OrderID, err)
	}
	if s.orders != nil {
		if err := s.orders.Put(ctx, o); err != nil {
			log.Printf("[checkout] order index write failed order_id=%s err=%v", o.OrderID, err)
		}
	}
	if key != "" && s.idempotency != nil {
		if err := s.idempotency.MarkDone(ctx, key, sess.ID, sess.URL); err != nil {
			log.Printf("[checkout] mark done failed idempotency_key=%s err=%v", key, err)
		}
	}
}

func (s *Service) publish(ctx context.Context, evt events.SessionCreated) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(ctx, evt, evt.Attributes()); err != nil {
		log.Printf("[checkout] publish failed order_id=%s err=%v", evt.OrderID, err)
	}
}
