package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/usecases"
	"github.com/floradex/billing/internal/shared/constants"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/utils"
)

// GatewayHandler serves the admin gateway registry and ledger endpoints.
type GatewayHandler struct {
	listGatewaysUC       listGatewaysUseCase
	updateGatewayUC      updateGatewayUseCase
	checkConfigurationUC providerUseCase[*dto.ConfigurationDTO]
	refreshStatusUC      providerUseCase[*dto.GatewayDTO]
	testConnectionUC     providerUseCase[*dto.ConnectionTestDTO]
	getStatsUC           providerUseCase[*dto.GatewayStatsDTO]
	getTransactionsUC    getTransactionsUseCase
	logger               logger.Interface
}

// GatewayHandlerDeps groups the use cases behind the admin gateway routes.
type GatewayHandlerDeps struct {
	ListGateways       listGatewaysUseCase
	UpdateGateway      updateGatewayUseCase
	CheckConfiguration providerUseCase[*dto.ConfigurationDTO]
	RefreshStatus      providerUseCase[*dto.GatewayDTO]
	TestConnection     providerUseCase[*dto.ConnectionTestDTO]
	GetStats           providerUseCase[*dto.GatewayStatsDTO]
	GetTransactions    getTransactionsUseCase
}

func NewGatewayHandler(deps GatewayHandlerDeps, logger logger.Interface) *GatewayHandler {
	return &GatewayHandler{
		listGatewaysUC:       deps.ListGateways,
		updateGatewayUC:      deps.UpdateGateway,
		checkConfigurationUC: deps.CheckConfiguration,
		refreshStatusUC:      deps.RefreshStatus,
		testConnectionUC:     deps.TestConnection,
		getStatsUC:           deps.GetStats,
		getTransactionsUC:    deps.GetTransactions,
		logger:               logger,
	}
}

type UpdateGatewayRequest struct {
	DisplayName         *string  `json:"display_name" binding:"omitempty,min=1,max=64"`
	IsEnabled           *bool    `json:"is_enabled"`
	IsTestMode          *bool    `json:"is_test_mode"`
	IsPrimary           *bool    `json:"is_primary"`
	SupportedCurrencies []string `json:"supported_currencies" binding:"omitempty,min=1,dive,iso4217"`
	SupportedCountries  []string `json:"supported_countries" binding:"omitempty,min=1,dive,iso3166_1_alpha2"`
}

// ListGateways handles GET /api/admin/pricing
func (h *GatewayHandler) ListGateways(c *gin.Context) {
	result, err := h.listGatewaysUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdateGateway handles PATCH /api/admin/pricing/gateways/:provider
func (h *GatewayHandler) UpdateGateway(c *gin.Context) {
	var req UpdateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update gateway", "provider", c.Param("provider"), "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.updateGatewayUC.Execute(c.Request.Context(), usecases.UpdateGatewayCommand{
		Provider:            c.Param("provider"),
		DisplayName:         req.DisplayName,
		IsEnabled:           req.IsEnabled,
		IsTestMode:          req.IsTestMode,
		IsPrimary:           req.IsPrimary,
		SupportedCurrencies: req.SupportedCurrencies,
		SupportedCountries:  req.SupportedCountries,
		ActorID:             c.GetUint(constants.ContextKeyActorID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Gateway updated", result)
}

// CheckConfiguration handles GET /api/admin/pricing/gateways/:provider/configuration
func (h *GatewayHandler) CheckConfiguration(c *gin.Context) {
	runProviderUseCase(c, h.checkConfigurationUC, "")
}

// RefreshStatus handles POST /api/admin/pricing/gateways/:provider/refresh
func (h *GatewayHandler) RefreshStatus(c *gin.Context) {
	runProviderUseCase(c, h.refreshStatusUC, "Gateway status refreshed")
}

// TestConnection handles POST /api/admin/pricing/gateways/:provider/test
func (h *GatewayHandler) TestConnection(c *gin.Context) {
	runProviderUseCase(c, h.testConnectionUC, "")
}

// GetStats handles GET /api/admin/pricing/gateways/:provider/stats
func (h *GatewayHandler) GetStats(c *gin.Context) {
	runProviderUseCase(c, h.getStatsUC, "")
}

// GetTransactions handles GET /api/admin/transactions?gateway_id=&limit=
func (h *GatewayHandler) GetTransactions(c *gin.Context) {
	gatewayID, err := utils.ParseOptionalUintQuery(c, "gateway_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getTransactionsUC.Execute(c.Request.Context(), usecases.GetTransactionsQuery{
		GatewayID: gatewayID,
		Limit:     utils.ParseLimit(c, constants.DefaultTransactionLimit, constants.MaxTransactionLimit),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func runProviderUseCase[T any](c *gin.Context, uc providerUseCase[T], message string) {
	result, err := uc.Execute(c.Request.Context(), c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}
