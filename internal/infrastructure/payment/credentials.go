package payment

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
)

// EnvCredentials resolves vendor secrets from the process environment on
// every call, falling back to payment.credentials from the config file.
type EnvCredentials struct {
	v *viper.Viper
}

func NewEnvCredentials(fromConfig map[string]string) *EnvCredentials {
	v := viper.New()
	for name, value := range fromConfig {
		v.SetDefault(strings.ToUpper(name), value)
	}
	v.AutomaticEnv()
	return &EnvCredentials{v: v}
}

func (c *EnvCredentials) Get(name string) string {
	return strings.TrimSpace(c.v.GetString(name))
}

var _ paymentgateway.CredentialSource = (*EnvCredentials)(nil)
