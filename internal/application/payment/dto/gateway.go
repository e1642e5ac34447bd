package dto

import (
	"time"

	"github.com/floradex/billing/internal/domain/payment"
)

type GatewayDTO struct {
	ID                     uint       `json:"id"`
	Provider               string     `json:"provider"`
	DisplayName            string     `json:"display_name"`
	IsEnabled              bool       `json:"is_enabled"`
	IsTestMode             bool       `json:"is_test_mode"`
	IsPrimary              bool       `json:"is_primary"`
	SupportedCurrencies    []string   `json:"supported_currencies"`
	SupportedCountries     []string   `json:"supported_countries"`
	ConfigStatus           string     `json:"config_status"`
	StatusMessage          string     `json:"status_message,omitempty"`
	LastStatusCheck        *time.Time `json:"last_status_check,omitempty"`
	TotalTransactions      int64      `json:"total_transactions"`
	SuccessfulTransactions int64      `json:"successful_transactions"`
	FailedTransactions     int64      `json:"failed_transactions"`
	TotalRevenue           int64      `json:"total_revenue"`
	SuccessRate            float64    `json:"success_rate"`
	LastConfiguredBy       *uint      `json:"last_configured_by,omitempty"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func ToGatewayDTO(g *payment.Gateway) *GatewayDTO {
	if g == nil {
		return nil
	}
	return &GatewayDTO{
		ID:                     g.ID(),
		Provider:               g.Provider().String(),
		DisplayName:            g.DisplayName(),
		IsEnabled:              g.IsEnabled(),
		IsTestMode:             g.IsTestMode(),
		IsPrimary:              g.IsPrimary(),
		SupportedCurrencies:    g.SupportedCurrencies(),
		SupportedCountries:     g.SupportedCountries(),
		ConfigStatus:           g.ConfigStatus().String(),
		StatusMessage:          g.StatusMessage(),
		LastStatusCheck:        g.LastStatusCheck(),
		TotalTransactions:      g.TotalTransactions(),
		SuccessfulTransactions: g.SuccessfulTransactions(),
		FailedTransactions:     g.FailedTransactions(),
		TotalRevenue:           g.TotalRevenue(),
		SuccessRate:            g.SuccessRate(),
		LastConfiguredBy:       g.LastConfiguredBy(),
		UpdatedAt:              g.UpdatedAt(),
	}
}

func ToGatewayDTOs(gateways []*payment.Gateway) []*GatewayDTO {
	out := make([]*GatewayDTO, 0, len(gateways))
	for _, g := range gateways {
		out = append(out, ToGatewayDTO(g))
	}
	return out
}

type ConfigurationDTO struct {
	Provider     string   `json:"provider"`
	IsConfigured bool     `json:"is_configured"`
	Message      string   `json:"message"`
	Missing      []string `json:"missing"`
}

type ConnectionTestDTO struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

// GatewayStatsDTO reports the ledger counters. TotalRevenue sums minor
// units across currencies, and TotalTransactions includes pending
// checkout attempts.
type GatewayStatsDTO struct {
	Provider               string  `json:"provider"`
	TotalTransactions      int64   `json:"total_transactions"`
	SuccessfulTransactions int64   `json:"successful_transactions"`
	FailedTransactions     int64   `json:"failed_transactions"`
	TotalRevenue           int64   `json:"total_revenue"`
	SuccessRate            float64 `json:"success_rate"`
}

func ToGatewayStatsDTO(g *payment.Gateway) *GatewayStatsDTO {
	return &GatewayStatsDTO{
		Provider:               g.Provider().String(),
		TotalTransactions:      g.TotalTransactions(),
		SuccessfulTransactions: g.SuccessfulTransactions(),
		FailedTransactions:     g.FailedTransactions(),
		TotalRevenue:           g.TotalRevenue(),
		SuccessRate:            g.SuccessRate(),
	}
}
