package mappers

import (
	"gorm.io/datatypes"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
	"github.com/floradex/billing/internal/shared/mapper"
)

func PaymentGatewayToModel(g *payment.Gateway) *models.PaymentGatewayModel {
	return &models.PaymentGatewayModel{
		ID:                     g.ID(),
		Provider:               g.Provider().String(),
		DisplayName:            g.DisplayName(),
		IsEnabled:              g.IsEnabled(),
		IsTestMode:             g.IsTestMode(),
		IsPrimary:              g.IsPrimary(),
		SupportedCurrencies:    datatypes.NewJSONType(g.SupportedCurrencies()),
		SupportedCountries:     datatypes.NewJSONType(g.SupportedCountries()),
		ConfigStatus:           g.ConfigStatus().String(),
		StatusMessage:          g.StatusMessage(),
		LastStatusCheck:        g.LastStatusCheck(),
		TotalTransactions:      g.TotalTransactions(),
		SuccessfulTransactions: g.SuccessfulTransactions(),
		FailedTransactions:     g.FailedTransactions(),
		TotalRevenue:           g.TotalRevenue(),
		LastConfiguredBy:       g.LastConfiguredBy(),
		CreatedAt:              g.CreatedAt(),
		UpdatedAt:              g.UpdatedAt(),
	}
}

func PaymentGatewayToDomain(m *models.PaymentGatewayModel) *payment.Gateway {
	return payment.ReconstructGateway(payment.GatewayReconstructParams{
		ID:                     m.ID,
		Provider:               vo.Provider(m.Provider),
		DisplayName:            m.DisplayName,
		IsEnabled:              m.IsEnabled,
		IsTestMode:             m.IsTestMode,
		IsPrimary:              m.IsPrimary,
		SupportedCurrencies:    m.SupportedCurrencies.Data(),
		SupportedCountries:     m.SupportedCountries.Data(),
		ConfigStatus:           vo.ConfigStatus(m.ConfigStatus),
		StatusMessage:          m.StatusMessage,
		LastStatusCheck:        m.LastStatusCheck,
		TotalTransactions:      m.TotalTransactions,
		SuccessfulTransactions: m.SuccessfulTransactions,
		FailedTransactions:     m.FailedTransactions,
		TotalRevenue:           m.TotalRevenue,
		LastConfiguredBy:       m.LastConfiguredBy,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	})
}

func PaymentGatewaysToDomain(ms []models.PaymentGatewayModel) []*payment.Gateway {
	return mapper.MapSliceRef(ms, PaymentGatewayToDomain)
}
