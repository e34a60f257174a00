package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	orderevents "github.com/carpetpalace/storefront-api/internal/events"
	"github.com/carpetpalace/storefront-api/internal/orders"
	"github.com/carpetpalace/storefront-api/internal/payments"
)

// Metric names emitted per status transition.
const (
	MetricOrderPaid       = "OrderPaid"
	MetricOrderExpired    = "OrderExpired"
	MetricOrderUnresolved = "OrderUnresolved"
)

// ErrSessionOpen is returned while the checkout session is still awaiting
// payment, so SQS redelivers the message after its visibility timeout.
var ErrSessionOpen = errors.New("checkout session still open")

// OrderStore is the part of the orders index the worker updates.
type OrderStore interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error
	IncrementAttempts(ctx context.Context, orderID string) (int, error)
}

// MetricsSink records transition counts.
type MetricsSink interface {
	Count(ctx context.Context, name string, value float64, dimensions map[string]string) error
}

// Processor syncs order status from the payment provider.
type Processor struct {
	gateway     payments.Gateway
	orders      OrderStore
	metrics     MetricsSink
	maxAttempts int
}

// NewProcessor creates a worker processor. metrics may be nil.
func NewProcessor(gateway payments.Gateway, store OrderStore, metrics MetricsSink, maxAttempts int) *Processor {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Processor{gateway: gateway, orders: store, metrics: metrics, maxAttempts: maxAttempts}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Lambda retries the batch; after maxReceiveCount it lands in the DLQ.
			log.Printf("[worker] message_id=%s err=%v", rec.MessageId, err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg orderevents.SessionCreated
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.Type != orderevents.TypeSessionCreated {
		log.Printf("[worker] skipping type=%s order=%s", msg.Type, msg.OrderID)
		return nil
	}

	log.Printf("[worker] received order=%s session=%s corr=%s", msg.OrderID, msg.SessionID, msg.CorrelationID)

	order, err := p.orders.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		log.Printf("[worker] order not indexed order=%s", msg.OrderID)
		return nil
	}
	if order.Status != orders.StatusPending {
		log.Printf("[worker] already settled order=%s status=%s", msg.OrderID, order.Status)
		return nil
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = order.SessionID
	}
	sess, err := p.gateway.GetSession(ctx, sessionID)
	if errors.Is(err, payments.ErrSessionNotFound) {
		log.Printf("[worker] session gone order=%s session=%s", msg.OrderID, sessionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch session: %w", err)
	}

	switch {
	case sess.Paid():
		return p.transition(ctx, order, orders.StatusPaid, MetricOrderPaid)
	case sess.Status == payments.SessionStatusExpired:
		return p.transition(ctx, order, orders.StatusExpired, MetricOrderExpired)
	}

	attempts, err := p.orders.IncrementAttempts(ctx, order.OrderID)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	if attempts >= p.maxAttempts {
		log.Printf("[worker] giving up order=%s attempts=%d", order.OrderID, attempts)
		p.count(ctx, MetricOrderUnresolved, order)
		return nil
	}
	return fmt.Errorf("%w: order=%s attempts=%d", ErrSessionOpen, order.OrderID, attempts)
}

func (p *Processor) transition(ctx context.Context, order *orders.Order, status, metric string) error {
	err := p.orders.UpdateStatus(ctx, order.OrderID, orders.StatusPending, status)
	if errors.Is(err, orders.ErrStatusMismatch) {
		log.Printf("[worker] duplicate event for order=%s", order.OrderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update status to %s: %w", status, err)
	}
	log.Printf("[worker] order=%s status=%s", order.OrderID, status)
	p.count(ctx, metric, order)
	return nil
}

func (p *Processor) count(ctx context.Context, name string, order *orders.Order) {
	if p.metrics == nil {
		return
	}
	dims := map[string]string{"Currency": order.Currency}
	if err := p.metrics.Count(ctx, name, 1, dims); err != nil {
		log.Printf("[worker] metric %s failed: %v", name, err)
	}
}
