package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// PlanService handles study plan and resource-attachment business logic
type PlanService interface {
	CreatePlan(ctx context.Context, plan models.StudyPlan) (*models.StudyPlan, error)
	GetPlan(ctx context.Context, id, userID int64) (*models.StudyPlan, error)
	ListPlans(ctx context.Context, userID int64, status string) ([]models.StudyPlan, error)
	AttachResource(ctx context.Context, planID, userID int64, resource models.Resource, orderIndex int) (*models.StudyPlanResource, error)
	ListResources(ctx context.Context, planID, userID int64) ([]models.PlanResourceView, error)
}

type planService struct {
	planRepo     repository.PlanRepository
	resourceRepo repository.ResourceRepository
	achievements AchievementService
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo repository.PlanRepository, resourceRepo repository.ResourceRepository, achievements AchievementService) PlanService {
	return &planService{
		planRepo:     planRepo,
		resourceRepo: resourceRepo,
		achievements: achievements,
	}
}

func (s *planService) CreatePlan(ctx context.Context, plan models.StudyPlan) (*models.StudyPlan, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating plan: user_id=%d, title=%s", plan.UserID, plan.Title)

	if plan.Title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	if plan.StartDate.IsZero() {
		plan.StartDate = time.Now().UTC()
	}
	if !plan.EndDate.IsZero() && plan.EndDate.Before(plan.StartDate) {
		return nil, errors.NewValidationError("end_date", "must not be before start_date")
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusActive
	}

	created, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		log.Error("failed to create plan: %v", err)
		return nil, errors.NewInternalError(err)
	}

	// First plan unlocks a badge; an award failure must not fail the
	// create itself.
	if _, err := s.achievements.CheckAndAward(ctx, plan.UserID); err != nil {
		log.Warn("achievement check failed after plan create: %v", err)
	}

	log.Info("plan created: id=%d, user_id=%d", created.ID, created.UserID)
	return created, nil
}

func (s *planService) GetPlan(ctx context.Context, id, userID int64) (*models.StudyPlan, error) {
	log := logger.FromContext(ctx)

	plan, err := s.planRepo.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get plan: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("plan", id)
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, userID int64, status string) ([]models.StudyPlan, error) {
	log := logger.FromContext(ctx)

	plans, err := s.planRepo.List(ctx, userID, status)
	if err != nil {
		log.Error("failed to list plans: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return plans, nil
}

func (s *planService) AttachResource(ctx context.Context, planID, userID int64, resource models.Resource, orderIndex int) (*models.StudyPlanResource, error) {
	log := logger.FromContext(ctx)
	log.Debug("attaching resource: plan_id=%d, url=%s", planID, resource.URL)

	if resource.URL == "" {
		return nil, errors.NewValidationError("url", "must not be empty")
	}
	if resource.Title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}

	plan, err := s.planRepo.Get(ctx, planID, userID)
	if err != nil {
		log.Error("failed to get plan: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("plan", planID)
	}

	res, err := s.resourceRepo.Upsert(ctx, resource)
	if err != nil {
		log.Error("failed to upsert resource: %v", err)
		return nil, errors.NewInternalError(err)
	}

	spr, err := s.resourceRepo.AttachToPlan(ctx, planID, res.ID, orderIndex)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicateAttach) {
			return nil, errors.NewValidationError("resource", "already attached to plan")
		}
		log.Error("failed to attach resource: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("resource attached: plan_id=%d, resource_id=%d", planID, res.ID)
	return spr, nil
}

func (s *planService) ListResources(ctx context.Context, planID, userID int64) ([]models.PlanResourceView, error) {
	log := logger.FromContext(ctx)

	plan, err := s.planRepo.Get(ctx, planID, userID)
	if err != nil {
		log.Error("failed to get plan: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("plan", planID)
	}

	views, err := s.resourceRepo.ListForPlan(ctx, planID, userID)
	if err != nil {
		log.Error("failed to list plan resources: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return views, nil
}
