package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/interfaces/http/handlers/testutil"
	"github.com/floradex/billing/internal/shared/constants"
	apperrors "github.com/floradex/billing/internal/shared/errors"
)

type gatewayMocks struct {
	list   *mockListGatewaysUC
	update *mockUpdateGatewayUC
	config *mockProviderUC[*dto.ConfigurationDTO]
	status *mockProviderUC[*dto.GatewayDTO]
	test   *mockProviderUC[*dto.ConnectionTestDTO]
	stats  *mockProviderUC[*dto.GatewayStatsDTO]
	txs    *mockGetTransactionsUC
}

func newTestGatewayHandler() (*GatewayHandler, *gatewayMocks) {
	m := &gatewayMocks{
		list:   &mockListGatewaysUC{},
		update: &mockUpdateGatewayUC{},
		config: &mockProviderUC[*dto.ConfigurationDTO]{},
		status: &mockProviderUC[*dto.GatewayDTO]{},
		test:   &mockProviderUC[*dto.ConnectionTestDTO]{},
		stats:  &mockProviderUC[*dto.GatewayStatsDTO]{},
		txs:    &mockGetTransactionsUC{},
	}
	h := NewGatewayHandler(GatewayHandlerDeps{
		ListGateways:       m.list,
		UpdateGateway:      m.update,
		CheckConfiguration: m.config,
		RefreshStatus:      m.status,
		TestConnection:     m.test,
		GetStats:           m.stats,
		GetTransactions:    m.txs,
	}, testutil.NewMockLogger())
	return h, m
}

// =====================================================================
// Registry
// =====================================================================

func TestGatewayHandler_ListGateways(t *testing.T) {
	h, m := newTestGatewayHandler()
	m.list.result = []*dto.GatewayDTO{
		{ID: 1, Provider: "stripe", IsEnabled: true, IsPrimary: true},
		{ID: 2, Provider: "razorpay"},
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/pricing", nil)
	testutil.SetAdminContext(c, 1)
	h.ListGateways(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data []dto.GatewayDTO
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, "stripe", data[0].Provider)
}

func TestGatewayHandler_ListGateways_Error(t *testing.T) {
	h, m := newTestGatewayHandler()
	m.list.err = errors.New("connection refused")

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/pricing", nil)
	h.ListGateways(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGatewayHandler_UpdateGateway(t *testing.T) {
	h, m := newTestGatewayHandler()
	m.update.result = &dto.GatewayDTO{ID: 2, Provider: "razorpay", IsEnabled: true}

	c, w := testutil.NewTestContext(http.MethodPatch, "/api/admin/pricing/gateways/razorpay", map[string]any{
		"is_enabled":           true,
		"supported_currencies": []string{"INR", "USD"},
		"supported_countries":  []string{"IN"},
	})
	testutil.SetURLParam(c, "provider", "razorpay")
	testutil.SetAdminContext(c, 42)
	h.UpdateGateway(c)

	require.Equal(t, http.StatusOK, w.Code)
	got := m.update.got
	assert.Equal(t, "razorpay", got.Provider)
	assert.Equal(t, uint(42), got.ActorID)
	require.NotNil(t, got.IsEnabled)
	assert.True(t, *got.IsEnabled)
	assert.Nil(t, got.IsPrimary)
	assert.Equal(t, []string{"INR", "USD"}, got.SupportedCurrencies)
	assert.Equal(t, []string{"IN"}, got.SupportedCountries)
}

func TestGatewayHandler_UpdateGateway_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown currency", map[string]any{"supported_currencies": []string{"XYZ"}}},
		{"unknown country", map[string]any{"supported_countries": []string{"ZZ"}}},
		{"display name too long", map[string]any{"display_name": strings.Repeat("x", 65)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestGatewayHandler()

			c, w := testutil.NewTestContext(http.MethodPatch, "/api/admin/pricing/gateways/stripe", tt.body)
			testutil.SetURLParam(c, "provider", "stripe")
			testutil.SetAdminContext(c, 1)
			h.UpdateGateway(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, m.update.got.Provider)
		})
	}
}

func TestGatewayHandler_UpdateGateway_UseCaseError(t *testing.T) {
	h, m := newTestGatewayHandler()
	m.update.err = apperrors.NewNotFoundError("payment gateway not found", "acme")

	c, w := testutil.NewTestContext(http.MethodPatch, "/api/admin/pricing/gateways/acme", map[string]any{"is_primary": true})
	testutil.SetURLParam(c, "provider", "acme")
	h.UpdateGateway(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, m.update.got.ActorID)
}

// =====================================================================
// Per-provider operations
// =====================================================================

func TestGatewayHandler_ProviderOperations(t *testing.T) {
	h, m := newTestGatewayHandler()
	m.config.result = &dto.ConfigurationDTO{Provider: "paypal", IsConfigured: false, Missing: []string{"PAYPAL_WEBHOOK_ID"}}
	m.status.result = &dto.GatewayDTO{Provider: "paypal", ConfigStatus: "error"}
	m.test.result = &dto.ConnectionTestDTO{Provider: "paypal", Success: true}
	m.stats.result = &dto.GatewayStatsDTO{Provider: "paypal", TotalTransactions: 4, SuccessRate: 75}

	tests := []struct {
		name   string
		method string
		handle gin.HandlerFunc
		got    func() string
	}{
		{"configuration", http.MethodGet, h.CheckConfiguration, func() string { return m.config.gotProvider }},
		{"refresh", http.MethodPost, h.RefreshStatus, func() string { return m.status.gotProvider }},
		{"connection test", http.MethodPost, h.TestConnection, func() string { return m.test.gotProvider }},
		{"stats", http.MethodGet, h.GetStats, func() string { return m.stats.gotProvider }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testutil.NewTestContext(tt.method, "/api/admin/pricing/gateways/paypal", nil)
			testutil.SetURLParam(c, "provider", "paypal")
			tt.handle(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "paypal", tt.got())
		})
	}
}

func TestGatewayHandler_TestConnection_VendorError(t *testing.T) {
	h, m := newTestGatewayHandler()
	m.test.err = payment.NewProviderError(vo.ProviderCashfree, "ping", errors.New("401 unauthorized"))

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/pricing/gateways/cashfree/test", nil)
	testutil.SetURLParam(c, "provider", "cashfree")
	h.TestConnection(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// =====================================================================
// Transactions
// =====================================================================

func TestGatewayHandler_GetTransactions(t *testing.T) {
	tests := []struct {
		name      string
		query     map[string]string
		wantGW    *uint
		wantLimit int
	}{
		{"defaults", nil, nil, constants.DefaultTransactionLimit},
		{"filtered", map[string]string{"gateway_id": "3", "limit": "10"}, uintPtr(3), 10},
		{"limit capped", map[string]string{"limit": "100000"}, nil, constants.MaxTransactionLimit},
		{"bad limit ignored", map[string]string{"limit": "-4"}, nil, constants.DefaultTransactionLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestGatewayHandler()
			m.txs.result = []*dto.TransactionDTO{{ID: 1, TransactionID: "pay_1", Status: "success"}}

			c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/transactions", nil)
			if tt.query != nil {
				testutil.SetQueryParams(c, tt.query)
			}
			h.GetTransactions(c)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantGW, m.txs.got.GatewayID)
			assert.Equal(t, tt.wantLimit, m.txs.got.Limit)
		})
	}
}

func TestGatewayHandler_GetTransactions_InvalidGatewayID(t *testing.T) {
	h, m := newTestGatewayHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/transactions", nil)
	testutil.SetQueryParams(c, map[string]string{"gateway_id": "abc"})
	h.GetTransactions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, m.txs.got.Limit)
}

func uintPtr(v uint) *uint { return &v }
