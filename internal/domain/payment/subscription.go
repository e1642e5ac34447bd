package payment

import (
	"fmt"
	"time"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
)

// Subscription is the local cache of a vendor-side subscription. The vendor
// is the source of truth; this copy only moves through verified webhook
// events or explicit status polls.
type Subscription struct {
	id                   uint
	gatewayID            uint
	provider             vo.Provider
	vendorSubscriptionID string
	planID               *uint
	customerID           string
	customerEmail        string
	status               vo.SubscriptionStatus
	currentPeriodStart   *time.Time
	currentPeriodEnd     *time.Time
	cancelAtPeriodEnd    bool
	version              int
	createdAt            time.Time
	updatedAt            time.Time
}

func NewSubscription(
	gatewayID uint,
	provider vo.Provider,
	vendorSubscriptionID string,
	planID *uint,
	customerID, customerEmail string,
) (*Subscription, error) {
	if gatewayID == 0 {
		return nil, fmt.Errorf("gateway ID is required")
	}
	if vendorSubscriptionID == "" {
		return nil, fmt.Errorf("vendor subscription ID is required")
	}

	now := biztime.NowUTC()
	return &Subscription{
		gatewayID:            gatewayID,
		provider:             provider,
		vendorSubscriptionID: vendorSubscriptionID,
		planID:               planID,
		customerID:           customerID,
		customerEmail:        customerEmail,
		status:               vo.SubscriptionStatusPending,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

type SubscriptionReconstructParams struct {
	ID                   uint
	GatewayID            uint
	Provider             vo.Provider
	VendorSubscriptionID string
	PlanID               *uint
	CustomerID           string
	CustomerEmail        string
	Status               vo.SubscriptionStatus
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func ReconstructSubscription(p SubscriptionReconstructParams) *Subscription {
	return &Subscription{
		id:                   p.ID,
		gatewayID:            p.GatewayID,
		provider:             p.Provider,
		vendorSubscriptionID: p.VendorSubscriptionID,
		planID:               p.PlanID,
		customerID:           p.CustomerID,
		customerEmail:        p.CustomerEmail,
		status:               p.Status,
		currentPeriodStart:   p.CurrentPeriodStart,
		currentPeriodEnd:     p.CurrentPeriodEnd,
		cancelAtPeriodEnd:    p.CancelAtPeriodEnd,
		version:              p.Version,
		createdAt:            p.CreatedAt,
		updatedAt:            p.UpdatedAt,
	}
}

func (s *Subscription) ID() uint                       { return s.id }
func (s *Subscription) GatewayID() uint                { return s.gatewayID }
func (s *Subscription) Provider() vo.Provider          { return s.provider }
func (s *Subscription) VendorSubscriptionID() string   { return s.vendorSubscriptionID }
func (s *Subscription) PlanID() *uint                  { return s.planID }
func (s *Subscription) CustomerID() string             { return s.customerID }
func (s *Subscription) CustomerEmail() string          { return s.customerEmail }
func (s *Subscription) Status() vo.SubscriptionStatus  { return s.status }
func (s *Subscription) CurrentPeriodStart() *time.Time { return s.currentPeriodStart }
func (s *Subscription) CurrentPeriodEnd() *time.Time   { return s.currentPeriodEnd }
func (s *Subscription) CancelAtPeriodEnd() bool        { return s.cancelAtPeriodEnd }
func (s *Subscription) Version() int                   { return s.version }
func (s *Subscription) CreatedAt() time.Time           { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time           { return s.updatedAt }

func (s *Subscription) SetID(id uint) {
	s.id = id
}

// StatusUpdate is what a webhook or poll reports about a subscription.
// Nil and empty fields are left untouched.
type StatusUpdate struct {
	Status             vo.SubscriptionStatus
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  *bool
	CustomerID         string
}

// Transition reports what Apply did.
type Transition struct {
	From vo.SubscriptionStatus
	To   vo.SubscriptionStatus
	// StatusChanged is set when the status moved.
	StatusChanged bool
	// Modified is set when anything was written, including a renewal that
	// only extends the period.
	Modified bool
	// Ignored is set when the update was dropped because the subscription
	// is terminal or the move is not allowed.
	Ignored bool
}

// Apply moves the subscription according to the canonical state machine.
// Terminal subscriptions never change, so a late or replayed event cannot
// resurrect them. An active subscription reported active again is a
// renewal and only updates its period.
func (s *Subscription) Apply(u StatusUpdate) Transition {
	t := Transition{From: s.status, To: s.status}

	if s.status.IsTerminal() {
		t.Ignored = true
		return t
	}

	switch {
	case u.Status == "" || u.Status == s.status:
	case s.status.CanTransitionTo(u.Status):
		s.status = u.Status
		t.To = u.Status
		t.StatusChanged = true
	default:
		t.Ignored = true
		return t
	}

	if u.CurrentPeriodStart != nil && !timeEqual(s.currentPeriodStart, u.CurrentPeriodStart) {
		v := u.CurrentPeriodStart.UTC()
		s.currentPeriodStart = &v
		t.Modified = true
	}
	if u.CurrentPeriodEnd != nil && !timeEqual(s.currentPeriodEnd, u.CurrentPeriodEnd) {
		v := u.CurrentPeriodEnd.UTC()
		s.currentPeriodEnd = &v
		t.Modified = true
	}
	if u.CancelAtPeriodEnd != nil && *u.CancelAtPeriodEnd != s.cancelAtPeriodEnd {
		s.cancelAtPeriodEnd = *u.CancelAtPeriodEnd
		t.Modified = true
	}
	if u.CustomerID != "" && s.customerID == "" {
		s.customerID = u.CustomerID
		t.Modified = true
	}

	if t.StatusChanged {
		t.Modified = true
	}
	if t.Modified {
		s.version++
		s.updatedAt = biztime.NowUTC()
	}
	return t
}

// IsPastPeriodEnd reports whether an active subscription's paid period has
// ended at now.
func (s *Subscription) IsPastPeriodEnd(now time.Time) bool {
	return s.status == vo.SubscriptionStatusActive &&
		s.currentPeriodEnd != nil &&
		!s.currentPeriodEnd.After(now)
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
