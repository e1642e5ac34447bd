package vendorapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

func TestClient_DoDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/plans", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "monthly", in["period"])

		_, _ = w.Write([]byte(`{"id":"plan_1"}`))
	}))
	defer srv.Close()

	c := NewClient(vo.ProviderRazorpay, time.Second)
	var out struct {
		ID string `json:"id"`
	}
	err := c.Do(context.Background(), srv.URL+"/", Request{
		Method:  http.MethodPost,
		Path:    "/v1/plans",
		Header:  http.Header{"X-Test": []string{"yes"}},
		Body:    map[string]string{"period": "monthly"},
		Out:     &out,
		Context: "create plan",
	})
	require.NoError(t, err)
	assert.Equal(t, "plan_1", out.ID)
}

func TestClient_DoFormBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(vo.ProviderPayPal, 0)
	err := c.Do(context.Background(), srv.URL, Request{
		Method: http.MethodPost, Path: "/v1/oauth2/token", Form: "grant_type=client_credentials", Context: "token",
	})
	require.NoError(t, err)
}

func TestClient_DoNon2xxIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"description":"no such subscription"}}`))
	}))
	defer srv.Close()

	c := NewClient(vo.ProviderCashfree, time.Second)
	err := c.Do(context.Background(), srv.URL, Request{Method: http.MethodGet, Path: "/subscriptions/x", Context: "fetch subscription"})
	require.Error(t, err)

	assert.ErrorIs(t, err, payment.ErrProvider)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	pe, ok := payment.AsPaymentError(err)
	require.True(t, ok)
	assert.Equal(t, vo.ProviderCashfree, pe.Provider)
	assert.Contains(t, err.Error(), "no such subscription")
}

func TestClient_DoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(vo.ProviderRazorpay, time.Second)
	err := c.Do(context.Background(), srv.URL, Request{Method: http.MethodGet, Path: "/", Context: "ping"})
	assert.ErrorIs(t, err, payment.ErrProvider)
	assert.False(t, IsNotFound(err))
}
