package services

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
	"github.com/lbraga/studytrack/internal/suggest"
)

// IngestService pulls catalog suggestions for a plan topic and
// attaches them as plan resources. It runs on the worker pool; the
// core progress path never waits on the provider.
type IngestService interface {
	IngestSuggestions(ctx context.Context, planID, userID int64, topic string, limit int) (int, error)
}

type ingestService struct {
	provider     suggest.Provider
	planRepo     repository.PlanRepository
	resourceRepo repository.ResourceRepository
}

// NewIngestService creates a new IngestService
func NewIngestService(provider suggest.Provider, planRepo repository.PlanRepository, resourceRepo repository.ResourceRepository) IngestService {
	return &ingestService{
		provider:     provider,
		planRepo:     planRepo,
		resourceRepo: resourceRepo,
	}
}

// IngestSuggestions returns the number of resources newly attached.
// Suggestions already attached to the plan are skipped; a bad entry
// from the provider is logged and skipped, never fatal.
func (s *ingestService) IngestSuggestions(ctx context.Context, planID, userID int64, topic string, limit int) (int, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"plan_id": planID,
		"topic":   topic,
	})
	log.Info("starting suggestion ingest")

	plan, err := s.planRepo.Get(ctx, planID, userID)
	if err != nil {
		log.Error("failed to get plan: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if plan == nil {
		return 0, errors.NewNotFoundError("plan", planID)
	}

	if limit <= 0 {
		limit = 10
	}
	suggestions, err := s.provider.Suggestions(ctx, topic, limit)
	if err != nil {
		log.Error("failed to fetch suggestions: %v", err)
		return 0, errors.NewInternalError(err)
	}

	existing, err := s.resourceRepo.ListForPlan(ctx, planID, userID)
	if err != nil {
		log.Error("failed to list plan resources: %v", err)
		return 0, errors.NewInternalError(err)
	}
	nextOrder := len(existing)

	var attached int
	for _, sg := range suggestions {
		if ctx.Err() != nil {
			log.Warn("ingest cancelled: %v", ctx.Err())
			return attached, ctx.Err()
		}
		if sg.URL == "" || sg.Title == "" {
			log.Warn("skipping suggestion without url or title")
			continue
		}

		res, err := s.resourceRepo.Upsert(ctx, models.Resource{
			Title:         sg.Title,
			URL:           sg.URL,
			Description:   sg.Description,
			ResourceType:  sg.Type,
			Platform:      sg.Platform,
			Difficulty:    sg.Difficulty,
			EstimatedTime: formatHours(sg.EstimatedTime),
			IsFree:        sg.IsFree,
		})
		if err != nil {
			log.Error("failed to upsert suggestion %s: %v", sg.URL, err)
			continue
		}

		if _, err := s.resourceRepo.AttachToPlan(ctx, planID, res.ID, nextOrder); err != nil {
			if stderrors.Is(err, repository.ErrDuplicateAttach) {
				log.Debug("suggestion already attached: %s", sg.URL)
				continue
			}
			log.Error("failed to attach suggestion %s: %v", sg.URL, err)
			continue
		}
		nextOrder++
		attached++
	}

	log.Info("suggestion ingest finished: attached=%d of %d", attached, len(suggestions))
	return attached, nil
}

func formatHours(h float64) string {
	if h <= 0 {
		return ""
	}
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}
