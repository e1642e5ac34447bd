package payment

import (
	"fmt"
	"slices"
	"strings"
	"time"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
)

// Gateway is the persisted configuration and running totals of one vendor.
// Counters are only ever changed by the ledger through atomic SQL
// increments, so the entity exposes them read-only.
type Gateway struct {
	id          uint
	provider    vo.Provider
	displayName string

	isEnabled  bool
	isTestMode bool
	isPrimary  bool

	supportedCurrencies []string
	supportedCountries  []string

	configStatus    vo.ConfigStatus
	statusMessage   string
	lastStatusCheck *time.Time

	totalTransactions      int64
	successfulTransactions int64
	failedTransactions     int64
	totalRevenue           int64

	lastConfiguredBy *uint

	createdAt time.Time
	updatedAt time.Time
}

// NewGateway builds the initial row for a vendor. A gateway starts enabled
// only when its credentials are present, and never starts as primary.
func NewGateway(
	provider vo.Provider,
	displayName string,
	currencies, countries []string,
	configured bool,
	statusMessage string,
	testMode bool,
) (*Gateway, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("invalid provider %q", provider)
	}
	if displayName == "" {
		displayName = string(provider)
	}

	now := biztime.NowUTC()
	return &Gateway{
		provider:            provider,
		displayName:         displayName,
		isEnabled:           configured,
		isTestMode:          testMode,
		supportedCurrencies: normalizeCodes(currencies),
		supportedCountries:  normalizeCodes(countries),
		configStatus:        vo.ConfigStatusFrom(configured),
		statusMessage:       statusMessage,
		lastStatusCheck:     &now,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// GatewayReconstructParams carries persisted state back into a Gateway.
type GatewayReconstructParams struct {
	ID                     uint
	Provider               vo.Provider
	DisplayName            string
	IsEnabled              bool
	IsTestMode             bool
	IsPrimary              bool
	SupportedCurrencies    []string
	SupportedCountries     []string
	ConfigStatus           vo.ConfigStatus
	StatusMessage          string
	LastStatusCheck        *time.Time
	TotalTransactions      int64
	SuccessfulTransactions int64
	FailedTransactions     int64
	TotalRevenue           int64
	LastConfiguredBy       *uint
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func ReconstructGateway(p GatewayReconstructParams) *Gateway {
	return &Gateway{
		id:                     p.ID,
		provider:               p.Provider,
		displayName:            p.DisplayName,
		isEnabled:              p.IsEnabled,
		isTestMode:             p.IsTestMode,
		isPrimary:              p.IsPrimary,
		supportedCurrencies:    p.SupportedCurrencies,
		supportedCountries:     p.SupportedCountries,
		configStatus:           p.ConfigStatus,
		statusMessage:          p.StatusMessage,
		lastStatusCheck:        p.LastStatusCheck,
		totalTransactions:      p.TotalTransactions,
		successfulTransactions: p.SuccessfulTransactions,
		failedTransactions:     p.FailedTransactions,
		totalRevenue:           p.TotalRevenue,
		lastConfiguredBy:       p.LastConfiguredBy,
		createdAt:              p.CreatedAt,
		updatedAt:              p.UpdatedAt,
	}
}

func (g *Gateway) ID() uint                      { return g.id }
func (g *Gateway) Provider() vo.Provider         { return g.provider }
func (g *Gateway) DisplayName() string           { return g.displayName }
func (g *Gateway) IsEnabled() bool               { return g.isEnabled }
func (g *Gateway) IsTestMode() bool              { return g.isTestMode }
func (g *Gateway) IsPrimary() bool               { return g.isPrimary }
func (g *Gateway) SupportedCurrencies() []string { return slices.Clone(g.supportedCurrencies) }
func (g *Gateway) SupportedCountries() []string  { return slices.Clone(g.supportedCountries) }
func (g *Gateway) ConfigStatus() vo.ConfigStatus { return g.configStatus }
func (g *Gateway) StatusMessage() string         { return g.statusMessage }
func (g *Gateway) LastStatusCheck() *time.Time   { return g.lastStatusCheck }
func (g *Gateway) TotalTransactions() int64      { return g.totalTransactions }
func (g *Gateway) SuccessfulTransactions() int64 { return g.successfulTransactions }
func (g *Gateway) FailedTransactions() int64     { return g.failedTransactions }
func (g *Gateway) TotalRevenue() int64           { return g.totalRevenue }
func (g *Gateway) LastConfiguredBy() *uint       { return g.lastConfiguredBy }
func (g *Gateway) CreatedAt() time.Time          { return g.createdAt }
func (g *Gateway) UpdatedAt() time.Time          { return g.updatedAt }
func (g *Gateway) IsConfigured() bool            { return g.configStatus.IsConfigured() }

// SetID is called by the repository after insert.
func (g *Gateway) SetID(id uint) {
	g.id = id
}

func (g *Gateway) SetEnabled(enabled bool) {
	g.isEnabled = enabled
	g.touch()
}

func (g *Gateway) SetTestMode(testMode bool) {
	g.isTestMode = testMode
	g.touch()
}

// SetPrimary flags this gateway. Clearing the flag on every other gateway
// is the registry's job and happens in the same transaction.
func (g *Gateway) SetPrimary(primary bool) {
	g.isPrimary = primary
	g.touch()
}

func (g *Gateway) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	g.displayName = name
	g.touch()
	return nil
}

// SetSupportedCurrencies replaces the currency set. allowed is the vendor
// allow-list; the new set must be a non-empty subset of it.
func (g *Gateway) SetSupportedCurrencies(codes []string, allowed func(string) bool) error {
	normalized, err := restrictCodes(codes, allowed, "currency")
	if err != nil {
		return err
	}
	g.supportedCurrencies = normalized
	g.touch()
	return nil
}

// SetSupportedCountries replaces the country set under the same rule as
// SetSupportedCurrencies.
func (g *Gateway) SetSupportedCountries(codes []string, allowed func(string) bool) error {
	normalized, err := restrictCodes(codes, allowed, "country")
	if err != nil {
		return err
	}
	g.supportedCountries = normalized
	g.touch()
	return nil
}

// RecordConfigCheck stores the outcome of a credential presence check.
func (g *Gateway) RecordConfigCheck(configured bool, message string) {
	now := biztime.NowUTC()
	g.configStatus = vo.ConfigStatusFrom(configured)
	g.statusMessage = message
	g.lastStatusCheck = &now
	g.touch()
}

// MarkConfiguredBy attributes the latest change to actorID. Zero is the
// system actor and is never recorded.
func (g *Gateway) MarkConfiguredBy(actorID uint) {
	if actorID == 0 {
		return
	}
	id := actorID
	g.lastConfiguredBy = &id
}

func (g *Gateway) SupportsCurrency(code string) bool {
	return slices.Contains(g.supportedCurrencies, strings.ToUpper(code))
}

func (g *Gateway) SupportsCountry(code string) bool {
	return slices.Contains(g.supportedCountries, strings.ToUpper(code))
}

// SuccessRate is successful/total*100, or 0 before the first transaction.
func (g *Gateway) SuccessRate() float64 {
	if g.totalTransactions == 0 {
		return 0
	}
	return float64(g.successfulTransactions) / float64(g.totalTransactions) * 100
}

func (g *Gateway) touch() {
	g.updatedAt = biztime.NowUTC()
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func restrictCodes(codes []string, allowed func(string) bool, kind string) ([]string, error) {
	normalized := normalizeCodes(codes)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("at least one %s is required", kind)
	}
	for _, c := range normalized {
		if allowed != nil && !allowed(c) {
			return nil, fmt.Errorf("%s %s is not supported by this provider", kind, c)
		}
	}
	return normalized, nil
}
