package usecases

import (
	"context"
	"fmt"

	"github.com/floradex/billing/internal/application/pricing/dto"
	"github.com/floradex/billing/internal/domain/pricing"
	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
)

type CreatePlanCommand struct {
	Slug        string
	Name        string
	Description string
	Interval    string
	Prices      map[string]int64
}

type CreatePlanUseCase struct {
	planRepo pricing.PlanRepository
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo pricing.PlanRepository, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*dto.PlanDTO, error) {
	plan, err := pricing.NewPlan(cmd.Slug, cmd.Name, cmd.Description, pricing.Interval(cmd.Interval), cmd.Prices)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, err := uc.planRepo.GetBySlug(ctx, plan.Slug())
	if err != nil {
		return nil, fmt.Errorf("failed to check plan slug: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("plan slug already exists", plan.Slug())
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("plan slug already exists", plan.Slug())
		}
		uc.logger.Errorw("failed to create plan", "slug", plan.Slug(), "error", err)
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	uc.logger.Infow("plan created", "plan_id", plan.ID(), "slug", plan.Slug())
	return dto.ToPlanDTO(plan), nil
}

// UpdatePlanCommand is a partial update. The slug is immutable.
type UpdatePlanCommand struct {
	ID          uint
	Name        *string
	Description *string
	Interval    *string
	Prices      map[string]int64
	IsActive    *bool
}

type UpdatePlanUseCase struct {
	planRepo pricing.PlanRepository
	logger   logger.Interface
}

func NewUpdatePlanUseCase(planRepo pricing.PlanRepository, logger logger.Interface) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, cmd UpdatePlanCommand) (*dto.PlanDTO, error) {
	plan, err := getPlan(ctx, uc.planRepo, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if err := plan.SetName(*cmd.Name); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Description != nil {
		plan.SetDescription(*cmd.Description)
	}
	if cmd.Interval != nil {
		if err := plan.SetInterval(pricing.Interval(*cmd.Interval)); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Prices != nil {
		if err := plan.SetPrices(cmd.Prices); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.IsActive != nil {
		if *cmd.IsActive {
			plan.Activate()
		} else {
			plan.Deactivate()
		}
	}

	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to update plan", "plan_id", cmd.ID, "error", err)
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return dto.ToPlanDTO(plan), nil
}

type GetPlanUseCase struct {
	planRepo pricing.PlanRepository
}

func NewGetPlanUseCase(planRepo pricing.PlanRepository) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, id uint) (*dto.PlanDTO, error) {
	plan, err := getPlan(ctx, uc.planRepo, id)
	if err != nil {
		return nil, err
	}
	return dto.ToPlanDTO(plan), nil
}

type ListPlansUseCase struct {
	planRepo pricing.PlanRepository
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo pricing.PlanRepository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, logger: logger}
}

// Execute lists plans; the public catalogue passes activeOnly.
func (uc *ListPlansUseCase) Execute(ctx context.Context, activeOnly bool) ([]*dto.PlanDTO, error) {
	plans, err := uc.planRepo.List(ctx, activeOnly)
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return dto.ToPlanDTOs(plans), nil
}

// DeactivatePlanUseCase hides a plan from the catalogue and from checkout.
// Plans are never deleted; subscriptions keep referencing them.
type DeactivatePlanUseCase struct {
	planRepo pricing.PlanRepository
	logger   logger.Interface
}

func NewDeactivatePlanUseCase(planRepo pricing.PlanRepository, logger logger.Interface) *DeactivatePlanUseCase {
	return &DeactivatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *DeactivatePlanUseCase) Execute(ctx context.Context, id uint) error {
	plan, err := getPlan(ctx, uc.planRepo, id)
	if err != nil {
		return err
	}
	if !plan.IsActive() {
		return nil
	}
	plan.Deactivate()
	if err := uc.planRepo.Update(ctx, plan); err != nil {
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}
	uc.logger.Infow("plan deactivated", "plan_id", id)
	return nil
}

func getPlan(ctx context.Context, repo pricing.PlanRepository, id uint) (*pricing.Plan, error) {
	plan, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	return plan, nil
}
