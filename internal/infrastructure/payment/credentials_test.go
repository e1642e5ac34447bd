package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvCredentials(t *testing.T) {
	creds := NewEnvCredentials(map[string]string{
		"razorpay_key_id":     "from-config",
		"RAZORPAY_KEY_SECRET": "config-secret",
	})

	assert.Equal(t, "from-config", creds.Get("RAZORPAY_KEY_ID"))

	t.Setenv("RAZORPAY_KEY_ID", "from-env")
	assert.Equal(t, "from-env", creds.Get("RAZORPAY_KEY_ID"))
	assert.Equal(t, "config-secret", creds.Get("RAZORPAY_KEY_SECRET"))

	t.Setenv("STRIPE_SECRET_KEY", "  sk_test_123 ")
	assert.Equal(t, "sk_test_123", creds.Get("STRIPE_SECRET_KEY"))
	assert.Empty(t, creds.Get("PAYPAL_CLIENT_ID"))
}
