// Package pricing holds the catalogue of plans customers can check out.
package pricing

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
)

type Interval string

const (
	IntervalOneTime Interval = "one_time"
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

func (i Interval) IsValid() bool {
	return i == IntervalOneTime || i == IntervalMonthly || i == IntervalYearly
}

// CheckoutType is the vendor checkout flavour this interval needs.
func (i Interval) CheckoutType() vo.CheckoutType {
	if i == IntervalOneTime {
		return vo.CheckoutTypeOneTime
	}
	return vo.CheckoutTypeSubscription
}

// BillingInterval is empty for one-time plans.
func (i Interval) BillingInterval() vo.BillingInterval {
	switch i {
	case IntervalMonthly:
		return vo.BillingIntervalMonthly
	case IntervalYearly:
		return vo.BillingIntervalYearly
	default:
		return ""
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Plan is a sellable product with one price per currency, in minor units.
type Plan struct {
	id          uint
	slug        string
	name        string
	description string
	interval    Interval
	prices      map[string]int64
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

func NewPlan(slug, name, description string, interval Interval, prices map[string]int64) (*Plan, error) {
	slug = strings.TrimSpace(slug)
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("invalid slug %q", slug)
	}
	p := &Plan{
		slug:        slug,
		description: description,
		isActive:    true,
	}
	if err := p.SetName(name); err != nil {
		return nil, err
	}
	if err := p.SetInterval(interval); err != nil {
		return nil, err
	}
	if err := p.SetPrices(prices); err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	p.createdAt = now
	p.updatedAt = now
	return p, nil
}

type PlanReconstructParams struct {
	ID          uint
	Slug        string
	Name        string
	Description string
	Interval    Interval
	Prices      map[string]int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func ReconstructPlan(p PlanReconstructParams) *Plan {
	return &Plan{
		id:          p.ID,
		slug:        p.Slug,
		name:        p.Name,
		description: p.Description,
		interval:    p.Interval,
		prices:      p.Prices,
		isActive:    p.IsActive,
		createdAt:   p.CreatedAt,
		updatedAt:   p.UpdatedAt,
	}
}

func (p *Plan) ID() uint                 { return p.id }
func (p *Plan) Slug() string             { return p.slug }
func (p *Plan) Name() string             { return p.name }
func (p *Plan) Description() string      { return p.description }
func (p *Plan) Interval() Interval       { return p.interval }
func (p *Plan) Prices() map[string]int64 { return maps.Clone(p.prices) }
func (p *Plan) IsActive() bool           { return p.isActive }
func (p *Plan) CreatedAt() time.Time     { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time     { return p.updatedAt }

func (p *Plan) SetID(id uint) {
	p.id = id
}

func (p *Plan) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	p.name = name
	p.touch()
	return nil
}

func (p *Plan) SetDescription(description string) {
	p.description = description
	p.touch()
}

func (p *Plan) SetInterval(interval Interval) error {
	if !interval.IsValid() {
		return fmt.Errorf("invalid plan interval %q", interval)
	}
	p.interval = interval
	p.touch()
	return nil
}

// SetPrices replaces the price table. Currency codes are upper-cased and
// every price must be positive.
func (p *Plan) SetPrices(prices map[string]int64) error {
	if len(prices) == 0 {
		return fmt.Errorf("at least one price is required")
	}
	normalized := make(map[string]int64, len(prices))
	for code, amount := range prices {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 3 {
			return fmt.Errorf("invalid currency code %q", code)
		}
		if amount <= 0 {
			return fmt.Errorf("price for %s must be positive", code)
		}
		normalized[code] = amount
	}
	p.prices = normalized
	p.touch()
	return nil
}

func (p *Plan) Activate() {
	p.isActive = true
	p.touch()
}

func (p *Plan) Deactivate() {
	p.isActive = false
	p.touch()
}

// PriceFor returns the plan price in currency.
func (p *Plan) PriceFor(currency string) (int64, bool) {
	amount, ok := p.prices[strings.ToUpper(currency)]
	return amount, ok
}

func (p *Plan) touch() {
	p.updatedAt = biztime.NowUTC()
}
