package valueobjects

import (
	"fmt"
	"strings"
)

// Provider identifies a payment vendor. It is the unique key of a gateway.
type Provider string

const (
	ProviderRazorpay Provider = "razorpay"
	ProviderCashfree Provider = "cashfree"
	ProviderPayPal   Provider = "paypal"
	ProviderStripe   Provider = "stripe"
	ProviderMidtrans Provider = "midtrans"
)

var knownProviders = []Provider{
	ProviderRazorpay,
	ProviderCashfree,
	ProviderPayPal,
	ProviderStripe,
	ProviderMidtrans,
}

// AllProviders lists every vendor this service can integrate with.
func AllProviders() []Provider {
	out := make([]Provider, len(knownProviders))
	copy(out, knownProviders)
	return out
}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown payment provider %q", s)
	}
	return p, nil
}

func (p Provider) IsValid() bool {
	for _, k := range knownProviders {
		if p == k {
			return true
		}
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}
