package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/shared/errors"
)

func newQueryContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return c
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=10", 10},
		{"limit=0", 50},
		{"limit=-3", 50},
		{"limit=abc", 50},
		{"limit=9999", 500},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLimit(newQueryContext(tt.query), 50, 500))
		})
	}
}

type checkoutForm struct {
	Email    string `json:"customer_email" validate:"required,email"`
	Currency string `json:"currency" validate:"required,iso4217"`
	Region   string `json:"region" validate:"required,iso3166_1_alpha2"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(checkoutForm{Email: "a@b.co", Currency: "USD", Region: "US"}))

	err := ValidateStruct(checkoutForm{Email: "nope", Currency: "XXZ", Region: "USA"})
	require.Error(t, err)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Contains(t, appErr.Details, "customer_email must be a valid email address")
	assert.Contains(t, appErr.Details, "currency must be an ISO 4217 currency code")
	assert.Contains(t, appErr.Details, "region must be an ISO 3166-1 alpha-2 country code")
}

func TestValidationError_BindErrors(t *testing.T) {
	assert.Nil(t, ValidationError(nil))

	var form checkoutForm
	c := newQueryContext("")
	c.Request = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	c.Request.Header.Set("Content-Type", "application/json")
	err := ValidationError(c.ShouldBindJSON(&form))
	require.True(t, errors.IsValidationError(err))
	assert.Equal(t, "Request body is required", errors.GetAppError(err).Message)
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"customer@shop.in": "c***r@shop.in",
		"ab@shop.in":       "a***@shop.in",
		"@shop.in":         "***@shop.in",
		"not-an-email":     "***",
		"trailing@":        "***",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
