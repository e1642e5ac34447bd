package paymentgateway

import (
	"strings"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

// CredentialSource resolves vendor credentials by environment name at call
// time, so rotating a secret does not need a restart.
type CredentialSource interface {
	Get(name string) string
}

// MissingCredentials lists the required credentials src cannot resolve.
func MissingCredentials(src CredentialSource, d Descriptor) []string {
	var missing []string
	for _, name := range d.RequiredCredentials {
		if strings.TrimSpace(src.Get(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Set is the fixed collection of adapters the service was built with,
// in registration order.
type Set struct {
	byProvider map[vo.Provider]Adapter
	order      []vo.Provider
}

func NewSet(adapters ...Adapter) *Set {
	s := &Set{byProvider: make(map[vo.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		p := a.Descriptor().Provider
		if _, dup := s.byProvider[p]; !dup {
			s.order = append(s.order, p)
		}
		s.byProvider[p] = a
	}
	return s
}

func (s *Set) Get(provider vo.Provider) (Adapter, bool) {
	a, ok := s.byProvider[provider]
	return a, ok
}

func (s *Set) All() []Adapter {
	out := make([]Adapter, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.byProvider[p])
	}
	return out
}

// MapCredentials is a CredentialSource over a fixed map.
type MapCredentials map[string]string

func (m MapCredentials) Get(name string) string {
	return m[name]
}
