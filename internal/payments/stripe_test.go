package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestBuildSessionParams(t *testing.T) {
	params := buildSessionParams(context.Background(), &CreateSessionParams{
		LineItems: []LineItem{
			{Name: "Royal Persian Masterpiece", Description: "8ft x 10ft • Premium Wool", Images: []string{"img"}, Currency: "USD", UnitAmount: 3011, Quantity: 2},
			{Name: "Shipping Fee", Description: "Shipping to Austin, US", Currency: "USD", UnitAmount: 60, Quantity: 1},
		},
		SuccessURL:       "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        "http://localhost:3000/checkout",
		CustomerEmail:    "jane@example.com",
		AllowedCountries: []string{"US", "IN"},
		Metadata:         map[string]string{MetadataOrderID: "10122025113023ABC123"},
		IdempotencyKey:   "10122025113023ABC123",
	})

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, []*string{stripe.String("card")}, params.PaymentMethodTypes)
	assert.Equal(t, "jane@example.com", *params.CustomerEmail)
	require.Len(t, params.LineItems, 2)
	first := params.LineItems[0]
	assert.Equal(t, "usd", *first.PriceData.Currency)
	assert.Equal(t, int64(3011), *first.PriceData.UnitAmount)
	assert.Equal(t, int64(2), *first.Quantity)
	assert.Equal(t, "8ft x 10ft • Premium Wool", *first.PriceData.ProductData.Description)
	assert.Len(t, first.PriceData.ProductData.Images, 1)
	assert.Nil(t, params.LineItems[1].PriceData.ProductData.Images)
	assert.Len(t, params.ShippingAddressCollection.AllowedCountries, 2)
	assert.Equal(t, "10122025113023ABC123", params.Metadata[MetadataOrderID])
	assert.Equal(t, "10122025113023ABC123", *params.IdempotencyKey)
}

func TestSessionFromStripe(t *testing.T) {
	cs := &stripe.CheckoutSession{
		ID:            "cs_test_1",
		URL:           "https://checkout.stripe.com/c/pay/cs_test_1",
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   6082,
		Currency:      "usd",
		Created:       1733830223,
		Metadata:      map[string]string{MetadataOrderID: "10122025113023ABC123"},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "Jane@Example.com",
		},
		ShippingDetails: &stripe.ShippingDetails{
			Name:    "Jane Doe",
			Address: &stripe.Address{Line1: "1 Main St", City: "Austin", State: "TX", PostalCode: "73301", Country: "US"},
		},
		LineItems: &stripe.LineItemList{Data: []*stripe.LineItem{
			{Description: "Royal Persian Masterpiece", Quantity: 2, AmountTotal: 6022},
			{Description: "Shipping Fee", Quantity: 1, AmountTotal: 60},
		}},
	}

	s := sessionFromStripe(cs)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "10122025113023ABC123", s.OrderID())
	assert.True(t, s.Paid())
	assert.Equal(t, "Jane@Example.com", s.CustomerEmail)
	assert.Equal(t, int64(1733830223), s.Created.Unix())
	require.NotNil(t, s.Shipping)
	assert.Equal(t, "Austin", s.Shipping.Address.City)
	require.Len(t, s.LineItems, 2)
	assert.Equal(t, int64(6022), s.LineItems[0].Amount)
}

func TestStripeGetSession_InvalidRequestIsNotFound(t *testing.T) {
	s := &Stripe{
		get: func(string, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return nil, &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Msg: "No such checkout.session", HTTPStatusCode: 404}
		},
	}
	_, err := s.GetSession(context.Background(), "cs_nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStripeGetSession_RequestsLineItems(t *testing.T) {
	var expand []*string
	s := &Stripe{
		get: func(id string, p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			expand = p.Expand
			return &stripe.CheckoutSession{ID: id}, nil
		},
	}
	_, err := s.GetSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Contains(t, expand, stripe.String("line_items"))
}

func TestStripeErrorsKeepProviderMessage(t *testing.T) {
	s := &Stripe{
		create: func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return nil, &stripe.Error{Type: stripe.ErrorTypeAPI, Msg: "Invalid API Key provided", HTTPStatusCode: 401}
		},
		list: func(*stripe.CheckoutSessionListParams) ([]*stripe.CheckoutSession, error) {
			return nil, errors.New("connection reset")
		},
	}

	_, err := s.CreateSession(context.Background(), &CreateSessionParams{})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "Invalid API Key provided", err.Error())
	assert.Equal(t, 401, upstream.Status)

	_, err = s.ListRecentSessions(context.Background(), 100)
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "connection reset", err.Error())
}

func TestStripeListRecentSessions(t *testing.T) {
	var limit int64
	s := &Stripe{
		list: func(p *stripe.CheckoutSessionListParams) ([]*stripe.CheckoutSession, error) {
			limit = *p.Limit
			return []*stripe.CheckoutSession{{ID: "cs_2"}, {ID: "cs_1"}}, nil
		},
	}
	got, err := s.ListRecentSessions(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), limit)
	require.Len(t, got, 2)
	assert.Equal(t, "cs_2", got[0].ID)
}
