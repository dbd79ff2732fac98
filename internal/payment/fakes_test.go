package payment_test

import (
	"context"
	"sync"

	"paystack-bridge/internal/models"
	"paystack-bridge/internal/payment"
	"paystack-bridge/internal/paystack"
	"paystack-bridge/internal/repository"
)

type fakeGateway struct {
	mu sync.Mutex

	authURL string
	initErr error
	trx     *paystack.Transaction
	verErr  error

	initCalls  []paystack.TransactionRequest
	fetchCalls []string
	keys       []string
}

func (g *fakeGateway) InitializeTransaction(_ context.Context, creds paystack.Credentials, req paystack.TransactionRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls = append(g.initCalls, req)
	g.keys = append(g.keys, creds.ActiveKey())
	if g.initErr != nil {
		return "", g.initErr
	}
	return g.authURL, nil
}

func (g *fakeGateway) FetchTransaction(_ context.Context, creds paystack.Credentials, ref string) (*paystack.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls = append(g.fetchCalls, ref)
	g.keys = append(g.keys, creds.ActiveKey())
	if g.verErr != nil {
		return nil, g.verErr
	}
	trx := *g.trx
	return &trx, nil
}

type statusCall struct {
	id     uint64
	status string
	flags  models.StatusFlags
}

type fakeStore struct {
	mu     sync.Mutex
	orders map[uint64]*models.Order
	calls  []statusCall
	getErr error
	setErr error
}

func newFakeStore(orders ...*models.Order) *fakeStore {
	s := &fakeStore{orders: make(map[uint64]*models.Order)}
	for _, o := range orders {
		cp := *o
		s.orders[o.ID] = &cp
	}
	return s
}

func (s *fakeStore) GetOrder(_ context.Context, id uint64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) SetOrderStatus(_ context.Context, id uint64, status string, flags models.StatusFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	o, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.calls = append(s.calls, statusCall{id: id, status: status, flags: flags})
	o.Status = status
	o.Succeeded = flags.Succeeded
	o.Completed = flags.Completed
	return nil
}

type outcome struct {
	ref    string
	status string
	amount int64
}

type fakeAttempts struct {
	mu       sync.Mutex
	recorded []models.PaymentAttempt
	outcomes []outcome
}

func (a *fakeAttempts) Record(_ context.Context, attempt *models.PaymentAttempt) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorded = append(a.recorded, *attempt)
	return nil
}

func (a *fakeAttempts) MarkOutcome(_ context.Context, ref, status string, amount int64, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes = append(a.outcomes, outcome{ref: ref, status: status, amount: amount})
	return nil
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []payment.Report
	err     error
}

func (r *fakeReporter) Report(_ context.Context, rep payment.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return r.err
}

type message struct {
	text  string
	level payment.Level
}

type recordingSink struct {
	redirects []string
	messages  []message
}

func (s *recordingSink) Redirect(url string) {
	s.redirects = append(s.redirects, url)
}

func (s *recordingSink) Notify(text string, level payment.Level) {
	s.messages = append(s.messages, message{text: text, level: level})
}
