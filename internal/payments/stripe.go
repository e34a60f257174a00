package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe implements Gateway with Stripe Checkout.
type Stripe struct {
	create func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	get    func(string, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	list   func(*stripe.CheckoutSessionListParams) ([]*stripe.CheckoutSession, error)
}

// NewStripe returns a Gateway backed by the Stripe API.
func NewStripe(secretKey string) *Stripe {
	sc := client.New(secretKey, nil)
	return &Stripe{
		create: sc.CheckoutSessions.New,
		get:    sc.CheckoutSessions.Get,
		list: func(p *stripe.CheckoutSessionListParams) ([]*stripe.CheckoutSession, error) {
			it := sc.CheckoutSessions.List(p)
			var out []*stripe.CheckoutSession
			for it.Next() {
				out = append(out, it.CheckoutSession())
			}
			return out, it.Err()
		},
	}
}

func (s *Stripe) CreateSession(ctx context.Context, p *CreateSessionParams) (*Session, error) {
	cs, err := s.create(buildSessionParams(ctx, p))
	if err != nil {
		return nil, mapStripeError("create checkout session", err)
	}
	return sessionFromStripe(cs), nil
}

func (s *Stripe) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	params.AddExpand("customer")

	cs, err := s.get(id, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Type == stripe.ErrorTypeInvalidRequest {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, mapStripeError("retrieve checkout session", err)
	}
	return sessionFromStripe(cs), nil
}

func (s *Stripe) ListRecentSessions(ctx context.Context, limit int) ([]*Session, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))
	params.Single = true

	list, err := s.list(params)
	if err != nil {
		return nil, mapStripeError("list checkout sessions", err)
	}
	out := make([]*Session, 0, len(list))
	for _, cs := range list {
		out = append(out, sessionFromStripe(cs))
	}
	return out, nil
}

func buildSessionParams(ctx context.Context, p *CreateSessionParams) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
	}
	params.Context = ctx

	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	if len(p.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(p.AllowedCountries),
		}
	}
	for _, li := range p.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Description != "" {
			product.Description = stripe.String(li.Description)
		}
		if len(li.Images) > 0 {
			product.Images = stripe.StringSlice(li.Images)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(strings.ToLower(li.Currency)),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	return params
}

func sessionFromStripe(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		CustomerEmail: cs.CustomerEmail,
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
	if cs.Created > 0 {
		s.Created = time.Unix(cs.Created, 0).UTC()
	}
	if s.CustomerEmail == "" && cs.CustomerDetails != nil {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	if sd := cs.ShippingDetails; sd != nil {
		s.Shipping = &Shipping{Name: sd.Name}
		if a := sd.Address; a != nil {
			s.Shipping.Address = Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				City:       a.City,
				State:      a.State,
				PostalCode: a.PostalCode,
				Country:    a.Country,
			}
		}
	}
	if cs.LineItems != nil {
		for _, li := range cs.LineItems.Data {
			s.LineItems = append(s.LineItems, SessionLineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				Amount:      li.AmountTotal,
			})
		}
	}
	return s
}

func mapStripeError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		status := se.HTTPStatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		return &UpstreamError{Op: op, Message: se.Msg, Status: status, Err: err}
	}
	return &UpstreamError{Op: op, Err: err}
}
