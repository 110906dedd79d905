package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

type resourceRepository struct {
	db *sql.DB
}

// NewResourceRepository creates a new ResourceRepository implementation
func NewResourceRepository(db *sql.DB) repository.ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Upsert(ctx context.Context, res models.Resource) (*models.Resource, error) {
	log := logger.FromContext(ctx).WithPrefix("resource_repo")
	log.Debug("upserting resource: url=%s", res.URL)

	var out models.Resource
	err := r.db.QueryRowContext(ctx, `
INSERT INTO resources (title, url, description, resource_type, platform, difficulty, estimated_time, is_free)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET title = excluded.title
RETURNING id, title, url, description, resource_type, platform, difficulty, estimated_time, is_free, created_at
`, res.Title, res.URL, res.Description, res.ResourceType, res.Platform, res.Difficulty, res.EstimatedTime, res.IsFree).
		Scan(&out.ID, &out.Title, &out.URL, &out.Description, &out.ResourceType, &out.Platform, &out.Difficulty, &out.EstimatedTime, &out.IsFree, &out.CreatedAt)
	if err != nil {
		log.Error("failed to upsert resource: %v", err)
		return nil, err
	}
	log.Debug("resource upserted: id=%d", out.ID)
	return &out, nil
}

func (r *resourceRepository) AttachToPlan(ctx context.Context, planID, resourceID int64, orderIndex int) (*models.StudyPlanResource, error) {
	log := logger.FromContext(ctx).WithPrefix("resource_repo")
	log.Debug("attaching resource to plan: plan_id=%d, resource_id=%d", planID, resourceID)

	// The recompute must see the new row immediately so the plan's
	// total_resources stays honest; insert and recompute share a tx.
	var spr models.StudyPlanResource
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
INSERT INTO study_plan_resources (study_plan_id, resource_id, order_index)
VALUES (?, ?, ?)
RETURNING id, study_plan_id, resource_id, order_index, is_completed, completion_date
`, planID, resourceID, orderIndex).
			Scan(&spr.ID, &spr.StudyPlanID, &spr.ResourceID, &spr.OrderIndex, &spr.IsCompleted, &spr.CompletionDate)
		if err != nil {
			return err
		}
		return recomputePlanProgress(ctx, tx, planID)
	})
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("resource already attached: plan_id=%d, resource_id=%d", planID, resourceID)
			return nil, repository.ErrDuplicateAttach
		}
		log.Error("failed to attach resource: %v", err)
		return nil, err
	}
	log.Debug("resource attached: plan_resource_id=%d", spr.ID)
	return &spr, nil
}

func (r *resourceRepository) ListForPlan(ctx context.Context, planID, userID int64) ([]models.PlanResourceView, error) {
	log := logger.FromContext(ctx).WithPrefix("resource_repo")
	log.Debug("listing plan resources: plan_id=%d", planID)

	rows, err := r.db.QueryContext(ctx, `
SELECT spr.id, spr.study_plan_id, spr.resource_id, spr.order_index, spr.is_completed, spr.completion_date,
       res.id, res.title, res.url, res.description, res.resource_type, res.platform, res.difficulty, res.estimated_time, res.is_free, res.created_at,
       rp.id, rp.user_id, rp.study_plan_resource_id, rp.is_completed, rp.progress_percentage, rp.time_spent, rp.started_at, rp.completed_at, rp.notes
FROM study_plan_resources spr
JOIN resources res ON res.id = spr.resource_id
LEFT JOIN resource_progress rp ON rp.study_plan_resource_id = spr.id AND rp.user_id = ?
WHERE spr.study_plan_id = ?
ORDER BY spr.order_index, spr.id
`, userID, planID)
	if err != nil {
		log.Error("failed to list plan resources: %v", err)
		return nil, err
	}
	defer rows.Close()

	var views []models.PlanResourceView
	for rows.Next() {
		var v models.PlanResourceView
		var rpID, rpUserID, rpSprID sql.NullInt64
		var rpCompleted sql.NullBool
		var rpPct, rpTime sql.NullFloat64
		var rpStarted, rpDone sql.NullTime
		var rpNotes sql.NullString
		if err := rows.Scan(
			&v.ID, &v.StudyPlanID, &v.ResourceID, &v.OrderIndex, &v.IsCompleted, &v.CompletionDate,
			&v.Resource.ID, &v.Resource.Title, &v.Resource.URL, &v.Resource.Description, &v.Resource.ResourceType,
			&v.Resource.Platform, &v.Resource.Difficulty, &v.Resource.EstimatedTime, &v.Resource.IsFree, &v.Resource.CreatedAt,
			&rpID, &rpUserID, &rpSprID, &rpCompleted, &rpPct, &rpTime, &rpStarted, &rpDone, &rpNotes,
		); err != nil {
			log.Error("failed to scan plan resource row: %v", err)
			return nil, err
		}
		if rpID.Valid {
			rp := models.ResourceProgress{
				ID:                  rpID.Int64,
				UserID:              rpUserID.Int64,
				StudyPlanResourceID: rpSprID.Int64,
				IsCompleted:         rpCompleted.Bool,
				ProgressPercentage:  rpPct.Float64,
				TimeSpent:           rpTime.Float64,
				Notes:               rpNotes.String,
			}
			if rpStarted.Valid {
				rp.StartedAt = &rpStarted.Time
			}
			if rpDone.Valid {
				rp.CompletedAt = &rpDone.Time
			}
			v.Progress = &rp
		}
		views = append(views, v)
	}
	log.Debug("found %d plan resources", len(views))
	return views, rows.Err()
}

// IsUniqueViolation reports whether err is a sqlite unique-constraint
// failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
