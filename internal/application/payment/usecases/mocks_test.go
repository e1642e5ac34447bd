package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/domain/pricing"
)

// mockAdapter is a function-field Adapter. Unset functions behave like an
// adapter with no credentials.
type mockAdapter struct {
	paymentgateway.Capabilities
	desc     paymentgateway.Descriptor
	testMode bool

	CreateCheckoutFunc        func(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error)
	HandleWebhookFunc         func(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error)
	GetSubscriptionStatusFunc func(ctx context.Context, id string) (*paymentgateway.SubscriptionStatus, error)
	VerifyPaymentFunc         func(ctx context.Context, id string) *paymentgateway.PaymentVerification
}

func newMockAdapter(provider vo.Provider, currencies, regions []string, creds ...string) *mockAdapter {
	return &mockAdapter{
		Capabilities: paymentgateway.Capabilities{Currencies: currencies, Regions: regions},
		desc: paymentgateway.Descriptor{
			Provider:            provider,
			DisplayName:         string(provider),
			RequiredCredentials: creds,
			Currencies:          currencies,
			Regions:             regions,
		},
		testMode: true,
	}
}

func (m *mockAdapter) Descriptor() paymentgateway.Descriptor { return m.desc }
func (m *mockAdapter) SetTestMode(testMode bool)             { m.testMode = testMode }
func (m *mockAdapter) IsTestMode() bool                      { return m.testMode }

func (m *mockAdapter) CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, params)
	}
	return paymentgateway.DemoCheckout(m.desc.Provider, "demo_test"), nil
}

func (m *mockAdapter) HandleWebhook(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error) {
	if m.HandleWebhookFunc != nil {
		return m.HandleWebhookFunc(ctx, req)
	}
	return nil, payment.NewInvalidSignatureError(m.desc.Provider, "webhook secret not configured")
}

func (m *mockAdapter) GetSubscriptionStatus(ctx context.Context, id string) (*paymentgateway.SubscriptionStatus, error) {
	if m.GetSubscriptionStatusFunc != nil {
		return m.GetSubscriptionStatusFunc(ctx, id)
	}
	return nil, payment.NewSubscriptionNotFoundError(m.desc.Provider, id)
}

func (m *mockAdapter) VerifyPayment(ctx context.Context, id string) *paymentgateway.PaymentVerification {
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(ctx, id)
	}
	return &paymentgateway.PaymentVerification{PaymentID: id}
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// fakeGatewayRepo keeps gateways in memory, copying on the way in and out
// so tests observe only what was saved.
type fakeGatewayRepo struct {
	mu       sync.Mutex
	rows     map[uint]payment.GatewayReconstructParams
	nextID   uint
	UpdateFn func(ctx context.Context, g *payment.Gateway) error
}

func newFakeGatewayRepo() *fakeGatewayRepo {
	return &fakeGatewayRepo{rows: map[uint]payment.GatewayReconstructParams{}, nextID: 1}
}

func gatewayParams(g *payment.Gateway) payment.GatewayReconstructParams {
	return payment.GatewayReconstructParams{
		ID:                     g.ID(),
		Provider:               g.Provider(),
		DisplayName:            g.DisplayName(),
		IsEnabled:              g.IsEnabled(),
		IsTestMode:             g.IsTestMode(),
		IsPrimary:              g.IsPrimary(),
		SupportedCurrencies:    g.SupportedCurrencies(),
		SupportedCountries:     g.SupportedCountries(),
		ConfigStatus:           g.ConfigStatus(),
		StatusMessage:          g.StatusMessage(),
		LastStatusCheck:        g.LastStatusCheck(),
		TotalTransactions:      g.TotalTransactions(),
		SuccessfulTransactions: g.SuccessfulTransactions(),
		FailedTransactions:     g.FailedTransactions(),
		TotalRevenue:           g.TotalRevenue(),
		LastConfiguredBy:       g.LastConfiguredBy(),
		CreatedAt:              g.CreatedAt(),
		UpdatedAt:              g.UpdatedAt(),
	}
}

func (r *fakeGatewayRepo) seed(g *payment.Gateway) *payment.Gateway {
	_ = r.Create(context.Background(), g)
	return g
}

func (r *fakeGatewayRepo) Create(ctx context.Context, g *payment.Gateway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.SetID(r.nextID)
	r.nextID++
	r.rows[g.ID()] = gatewayParams(g)
	return nil
}

func (r *fakeGatewayRepo) Update(ctx context.Context, g *payment.Gateway) error {
	if r.UpdateFn != nil {
		return r.UpdateFn(ctx, g)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := gatewayParams(g)
	old := r.rows[g.ID()]
	p.TotalTransactions = old.TotalTransactions
	p.SuccessfulTransactions = old.SuccessfulTransactions
	p.FailedTransactions = old.FailedTransactions
	p.TotalRevenue = old.TotalRevenue
	r.rows[g.ID()] = p
	return nil
}

func (r *fakeGatewayRepo) GetByID(ctx context.Context, id uint) (*payment.Gateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return payment.ReconstructGateway(p), nil
}

func (r *fakeGatewayRepo) GetByProvider(ctx context.Context, provider vo.Provider) (*payment.Gateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Provider == provider {
			return payment.ReconstructGateway(p), nil
		}
	}
	return nil, nil
}

func (r *fakeGatewayRepo) List(ctx context.Context) ([]*payment.Gateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*payment.Gateway, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, payment.ReconstructGateway(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *fakeGatewayRepo) ClearPrimaryExcept(ctx context.Context, keepID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.rows {
		if id != keepID {
			p.IsPrimary = false
			r.rows[id] = p
		}
	}
	return nil
}

func (r *fakeGatewayRepo) IncrementCounters(ctx context.Context, gatewayID uint, status vo.TransactionStatus, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.rows[gatewayID]
	p.TotalTransactions++
	switch status {
	case vo.TransactionStatusSuccess:
		p.SuccessfulTransactions++
		p.TotalRevenue += amount
	case vo.TransactionStatusFailed:
		p.FailedTransactions++
	}
	r.rows[gatewayID] = p
	return nil
}

func (r *fakeGatewayRepo) get(provider vo.Provider) *payment.Gateway {
	g, _ := r.GetByProvider(context.Background(), provider)
	return g
}

type fakeTransactionRepo struct {
	mu   sync.Mutex
	rows []*payment.Transaction
}

func (r *fakeTransactionRepo) CreateIfAbsent(ctx context.Context, tx *payment.Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.GatewayID() == tx.GatewayID() && existing.TransactionID() == tx.TransactionID() {
			return false, nil
		}
	}
	tx.SetID(uint(len(r.rows) + 1))
	r.rows = append(r.rows, tx)
	return true, nil
}

func (r *fakeTransactionRepo) List(ctx context.Context, filter payment.TransactionFilter) ([]*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Transaction
	for i := len(r.rows) - 1; i >= 0; i-- {
		t := r.rows[i]
		if filter.GatewayID != nil && t.GatewayID() != *filter.GatewayID {
			continue
		}
		out = append(out, t)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeSubscriptionRepo struct {
	mu       sync.Mutex
	rows     map[uint]*payment.Subscription
	nextID   uint
	UpdateFn func(ctx context.Context, s *payment.Subscription) error
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{rows: map[uint]*payment.Subscription{}, nextID: 1}
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, s *payment.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.SetID(r.nextID)
	r.nextID++
	r.rows[s.ID()] = s
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, s *payment.Subscription) error {
	if r.UpdateFn != nil {
		return r.UpdateFn(ctx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.ID()] = s
	return nil
}

func (r *fakeSubscriptionRepo) GetByVendorID(ctx context.Context, gatewayID uint, vendorID string) (*payment.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.GatewayID() == gatewayID && s.VendorSubscriptionID() == vendorID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) ListActiveEndedBefore(ctx context.Context, t time.Time, limit int) ([]*payment.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Subscription
	for _, s := range r.rows {
		if s.IsPastPeriodEnd(t) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockPlanRepository struct {
	GetByIDFunc func(ctx context.Context, id uint) (*pricing.Plan, error)
}

func (m *mockPlanRepository) Create(ctx context.Context, p *pricing.Plan) error { return nil }
func (m *mockPlanRepository) Update(ctx context.Context, p *pricing.Plan) error { return nil }
func (m *mockPlanRepository) GetBySlug(ctx context.Context, slug string) (*pricing.Plan, error) {
	return nil, nil
}
func (m *mockPlanRepository) List(ctx context.Context, activeOnly bool) ([]*pricing.Plan, error) {
	return nil, nil
}

func (m *mockPlanRepository) GetByID(ctx context.Context, id uint) (*pricing.Plan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockDeduplicator struct {
	AcquireFunc func(ctx context.Context, provider vo.Provider, key string) (bool, error)
	released    []string
}

func (m *mockDeduplicator) Acquire(ctx context.Context, provider vo.Provider, key string) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, provider, key)
	}
	return true, nil
}

func (m *mockDeduplicator) Release(ctx context.Context, provider vo.Provider, key string) error {
	m.released = append(m.released, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.StatusChangedEvent
}

func (p *recordingPublisher) PublishStatusChanged(ctx context.Context, event dto.StatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type mockStatusCache struct {
	store map[string]*dto.SubscriptionStatusDTO
}

func newMockStatusCache() *mockStatusCache {
	return &mockStatusCache{store: map[string]*dto.SubscriptionStatusDTO{}}
}

func (c *mockStatusCache) Get(ctx context.Context, provider vo.Provider, id string) (*dto.SubscriptionStatusDTO, error) {
	if v, ok := c.store[string(provider)+":"+id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (c *mockStatusCache) Set(ctx context.Context, s *dto.SubscriptionStatusDTO, ttl time.Duration) error {
	cp := *s
	c.store[s.Provider+":"+s.SubscriptionID] = &cp
	return nil
}

func (c *mockStatusCache) Invalidate(ctx context.Context, provider vo.Provider, id string) error {
	delete(c.store, string(provider)+":"+id)
	return nil
}
