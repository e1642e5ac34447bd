package valueobjects

// CheckoutType distinguishes a single charge from a recurring plan.
type CheckoutType string

const (
	CheckoutTypeOneTime      CheckoutType = "one_time"
	CheckoutTypeSubscription CheckoutType = "subscription"
)

// BillingInterval is the renewal period of a subscription.
type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

// Months returns the length of one billing period.
func (i BillingInterval) Months() int {
	if i == BillingIntervalYearly {
		return 12
	}
	return 1
}
