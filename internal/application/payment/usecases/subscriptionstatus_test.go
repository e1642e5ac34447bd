package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

func TestGetSubscriptionStatusUseCase_PollsAndCaches(t *testing.T) {
	f := newFixture()
	rzp := razorpayAdapter()
	gw := f.addGateway(t, rzp, false)
	sub, err := payment.NewSubscription(gw.ID(), vo.ProviderRazorpay, "sub_1", nil, "", "")
	require.NoError(t, err)
	require.NoError(t, f.subscriptions.Create(context.Background(), sub))

	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	polls := 0
	rzp.GetSubscriptionStatusFunc = func(ctx context.Context, id string) (*paymentgateway.SubscriptionStatus, error) {
		polls++
		return &paymentgateway.SubscriptionStatus{
			SubscriptionID:   id,
			Status:           vo.SubscriptionStatusActive,
			VendorStatus:     "active",
			CurrentPeriodEnd: &end,
		}, nil
	}

	uc := NewGetSubscriptionStatusUseCase(f.gateways, f.subscriptions, adapterSet(rzp), f.log)
	cache := newMockStatusCache()
	uc.SetCache(cache, 5*time.Minute)
	pub := &recordingPublisher{}
	uc.SetPublisher(pub)

	first, err := uc.Execute(context.Background(), GetSubscriptionStatusQuery{Provider: "razorpay", SubscriptionID: "sub_1"})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), GetSubscriptionStatusQuery{Provider: "razorpay", SubscriptionID: "sub_1"})
	require.NoError(t, err)

	assert.Equal(t, 1, polls)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, "active", second.Status)

	local, _ := f.subscriptions.GetByVendorID(context.Background(), gw.ID(), "sub_1")
	assert.Equal(t, vo.SubscriptionStatusActive, local.Status())
	assert.Len(t, pub.events, 1)
}

func TestGetSubscriptionStatusUseCase_NotFound(t *testing.T) {
	f := newFixture()
	rzp := razorpayAdapter()
	f.addGateway(t, rzp, false)
	uc := NewGetSubscriptionStatusUseCase(f.gateways, f.subscriptions, adapterSet(rzp), f.log)

	_, err := uc.Execute(context.Background(), GetSubscriptionStatusQuery{Provider: "razorpay", SubscriptionID: "sub_missing"})

	assert.True(t, errors.Is(err, payment.ErrSubscriptionNotFound))
}

func TestVerifyPaymentUseCase_NeverFailsOnVendorError(t *testing.T) {
	rzp := razorpayAdapter()
	rzp.VerifyPaymentFunc = func(ctx context.Context, id string) *paymentgateway.PaymentVerification {
		return &paymentgateway.PaymentVerification{PaymentID: id, Message: "vendor unreachable"}
	}
	uc := NewVerifyPaymentUseCase(adapterSet(rzp), newFixture().log)

	out, err := uc.Execute(context.Background(), VerifyPaymentQuery{Provider: "razorpay", PaymentID: "pay_1"})

	require.NoError(t, err)
	assert.False(t, out.IsValid)
	assert.Equal(t, "vendor unreachable", out.Message)
}

func TestExpireSubscriptionsUseCase(t *testing.T) {
	f := newFixture()
	rzp := razorpayAdapter()
	gw := f.addGateway(t, rzp, false)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.AddDate(0, 1, 0)

	seed := func(id string) {
		sub, err := payment.NewSubscription(gw.ID(), vo.ProviderRazorpay, id, nil, "", "")
		require.NoError(t, err)
		sub.Apply(payment.StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &past})
		require.NoError(t, f.subscriptions.Create(context.Background(), sub))
	}
	seed("sub_renew")
	seed("sub_cancel")
	seed("sub_gone")

	rzp.GetSubscriptionStatusFunc = func(ctx context.Context, id string) (*paymentgateway.SubscriptionStatus, error) {
		switch id {
		case "sub_renew":
			return &paymentgateway.SubscriptionStatus{SubscriptionID: id, Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &future}, nil
		case "sub_cancel":
			return &paymentgateway.SubscriptionStatus{SubscriptionID: id, Status: vo.SubscriptionStatusCancelled}, nil
		default:
			return nil, payment.NewSubscriptionNotFoundError(vo.ProviderRazorpay, id)
		}
	}

	uc := NewExpireSubscriptionsUseCase(f.subscriptions, adapterSet(rzp), f.log)
	uc.now = func() time.Time { return now }
	res, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, 1, res.Renewed)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, 1, res.Expired)

	status := func(id string) vo.SubscriptionStatus {
		s, _ := f.subscriptions.GetByVendorID(context.Background(), gw.ID(), id)
		return s.Status()
	}
	assert.Equal(t, vo.SubscriptionStatusActive, status("sub_renew"))
	assert.Equal(t, vo.SubscriptionStatusCancelled, status("sub_cancel"))
	assert.Equal(t, vo.SubscriptionStatusExpired, status("sub_gone"))
}
