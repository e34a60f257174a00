package payments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sandbox is an in-memory Gateway for local development and tests. Sessions
// start open and unpaid; Complete and Expire move them along.
type Sandbox struct {
	mu         sync.RWMutex
	baseURL    string
	sessions   map[string]*Session
	order      []string
	byKey      map[string]string
	nowFunc    func() time.Time
	createHook func(*CreateSessionParams) error
	calls      int
}

// NewSandbox returns a Sandbox whose checkout URLs live under baseURL.
func NewSandbox(baseURL string) *Sandbox {
	return &Sandbox{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: map[string]*Session{},
		byKey:    map[string]string{},
		nowFunc:  time.Now,
	}
}

// CreateCalls reports how many times CreateSession was invoked.
func (s *Sandbox) CreateCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// FailNextCreate makes CreateSession return err on its next call.
func (s *Sandbox) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createHook = func(*CreateSessionParams) error {
		s.createHook = nil
		return err
	}
}

func (s *Sandbox) CreateSession(_ context.Context, p *CreateSessionParams) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.createHook != nil {
		if err := s.createHook(p); err != nil {
			return nil, &UpstreamError{Op: "create checkout session", Message: err.Error(), Err: err}
		}
	}
	if p.IdempotencyKey != "" {
		if id, ok := s.byKey[p.IdempotencyKey]; ok {
			return cloneSession(s.sessions[id]), nil
		}
	}

	id := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	sess := &Session{
		ID:            id,
		URL:           fmt.Sprintf("%s/pay/%s", s.baseURL, id),
		Status:        SessionStatusOpen,
		PaymentStatus: PaymentStatusUnpaid,
		CustomerEmail: p.CustomerEmail,
		Created:       s.nowFunc().UTC(),
		Metadata:      map[string]string{},
	}
	for k, v := range p.Metadata {
		sess.Metadata[k] = v
	}
	for _, li := range p.LineItems {
		amount := li.UnitAmount * li.Quantity
		sess.AmountTotal += amount
		sess.Currency = strings.ToLower(li.Currency)
		sess.LineItems = append(sess.LineItems, SessionLineItem{
			Description: li.Name,
			Quantity:    li.Quantity,
			Amount:      amount,
		})
	}

	s.sessions[id] = sess
	s.order = append(s.order, id)
	if p.IdempotencyKey != "" {
		s.byKey[p.IdempotencyKey] = id
	}
	return cloneSession(sess), nil
}

func (s *Sandbox) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return cloneSession(sess), nil
}

func (s *Sandbox) ListRecentSessions(_ context.Context, limit int) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*Session, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(all) == limit {
			break
		}
		c := cloneSession(s.sessions[s.order[i]])
		c.LineItems = nil
		all = append(all, c)
	}
	return all, nil
}

// Complete marks a session paid, recording the shipping contact the
// customer entered on the hosted page.
func (s *Sandbox) Complete(id string, shipping *Shipping) error {
	return s.update(id, func(sess *Session) {
		sess.Status = SessionStatusComplete
		sess.PaymentStatus = PaymentStatusPaid
		sess.Shipping = shipping
	})
}

// Expire marks a session expired.
func (s *Sandbox) Expire(id string) error {
	return s.update(id, func(sess *Session) {
		sess.Status = SessionStatusExpired
	})
}

func (s *Sandbox) update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	fn(sess)
	return nil
}

func cloneSession(in *Session) *Session {
	out := *in
	out.Metadata = make(map[string]string, len(in.Metadata))
	for k, v := range in.Metadata {
		out.Metadata[k] = v
	}
	out.LineItems = append([]SessionLineItem(nil), in.LineItems...)
	if in.Shipping != nil {
		sh := *in.Shipping
		out.Shipping = &sh
	}
	return &out
}
