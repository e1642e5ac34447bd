package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pricingusecases "github.com/floradex/billing/internal/application/pricing/usecases"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/utils"
)

type PlanHandler struct {
	createPlanUC     createPlanUseCase
	updatePlanUC     updatePlanUseCase
	getPlanUC        getPlanUseCase
	listPlansUC      listPlansUseCase
	deactivatePlanUC deactivatePlanUseCase
	logger           logger.Interface
}

func NewPlanHandler(
	createPlanUC createPlanUseCase,
	updatePlanUC updatePlanUseCase,
	getPlanUC getPlanUseCase,
	listPlansUC listPlansUseCase,
	deactivatePlanUC deactivatePlanUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		createPlanUC:     createPlanUC,
		updatePlanUC:     updatePlanUC,
		getPlanUC:        getPlanUC,
		listPlansUC:      listPlansUC,
		deactivatePlanUC: deactivatePlanUC,
		logger:           logger,
	}
}

// Prices are minor units keyed by ISO 4217 code.
type CreatePlanRequest struct {
	Slug        string           `json:"slug" binding:"required,max=64"`
	Name        string           `json:"name" binding:"required,max=128"`
	Description string           `json:"description" binding:"max=1024"`
	Interval    string           `json:"interval" binding:"required,oneof=one_time monthly yearly"`
	Prices      map[string]int64 `json:"prices" binding:"required,min=1,dive,keys,len=3,endkeys,gt=0"`
}

type UpdatePlanRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string          `json:"description" binding:"omitempty,max=1024"`
	Interval    *string          `json:"interval" binding:"omitempty,oneof=one_time monthly yearly"`
	Prices      map[string]int64 `json:"prices" binding:"omitempty,min=1,dive,keys,len=3,endkeys,gt=0"`
	IsActive    *bool            `json:"is_active"`
}

// ListActivePlans handles GET /api/plans
func (h *PlanHandler) ListActivePlans(c *gin.Context) {
	h.listPlans(c, true)
}

// ListPlans handles GET /api/admin/pricing-plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	h.listPlans(c, c.Query("active") == "true")
}

func (h *PlanHandler) listPlans(c *gin.Context, activeOnly bool) {
	result, err := h.listPlansUC.Execute(c.Request.Context(), activeOnly)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CreatePlan handles POST /api/admin/pricing-plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.createPlanUC.Execute(c.Request.Context(), pricingusecases.CreatePlanCommand{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Interval:    req.Interval,
		Prices:      req.Prices,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Plan created successfully")
}

// GetPlan handles GET /api/admin/pricing-plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPlanUC.Execute(c.Request.Context(), planID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdatePlan handles PATCH /api/admin/pricing-plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan",
			"plan_id", planID,
			"error", err)
		utils.ErrorResponseWithError(c, utils.ValidationError(err))
		return
	}

	result, err := h.updatePlanUC.Execute(c.Request.Context(), pricingusecases.UpdatePlanCommand{
		ID:          planID,
		Name:        req.Name,
		Description: req.Description,
		Interval:    req.Interval,
		Prices:      req.Prices,
		IsActive:    req.IsActive,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Plan updated successfully", result)
}

// DeactivatePlan handles DELETE /api/admin/pricing-plans/:id. Plans are
// deactivated, never removed.
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deactivatePlanUC.Execute(c.Request.Context(), planID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Plan deactivated", nil)
}
