package mappers

import (
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *payment.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                   s.ID(),
		GatewayID:            s.GatewayID(),
		Provider:             s.Provider().String(),
		VendorSubscriptionID: s.VendorSubscriptionID(),
		PlanID:               s.PlanID(),
		CustomerID:           s.CustomerID(),
		CustomerEmail:        s.CustomerEmail(),
		Status:               s.Status().String(),
		CurrentPeriodStart:   s.CurrentPeriodStart(),
		CurrentPeriodEnd:     s.CurrentPeriodEnd(),
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd(),
		Version:              s.Version(),
		CreatedAt:            s.CreatedAt(),
		UpdatedAt:            s.UpdatedAt(),
	}
}

func SubscriptionToDomain(m *models.SubscriptionModel) *payment.Subscription {
	return payment.ReconstructSubscription(payment.SubscriptionReconstructParams{
		ID:                   m.ID,
		GatewayID:            m.GatewayID,
		Provider:             vo.Provider(m.Provider),
		VendorSubscriptionID: m.VendorSubscriptionID,
		PlanID:               m.PlanID,
		CustomerID:           m.CustomerID,
		CustomerEmail:        m.CustomerEmail,
		Status:               vo.SubscriptionStatus(m.Status),
		CurrentPeriodStart:   m.CurrentPeriodStart,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		Version:              m.Version,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	})
}
