package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

const progressColumns = `id, user_id, study_plan_id, total_resources, completed_resources, completion_percentage, total_hours_spent, started_at, completed_at, last_activity`

func scanProgress(scan func(...any) error) (*models.Progress, error) {
	var p models.Progress
	var started, completed sql.NullTime
	err := scan(&p.ID, &p.UserID, &p.StudyPlanID, &p.TotalResources, &p.CompletedResources, &p.CompletionPercentage, &p.TotalHoursSpent, &started, &completed, &p.LastActivity)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		p.StartedAt = &started.Time
	}
	if completed.Valid {
		p.CompletedAt = &completed.Time
	}
	return &p, nil
}

// recomputePlanProgress rederives the cached plan aggregate from its
// StudyPlanResource rows. Must run inside the same transaction as the
// resource mutation that triggered it, or concurrent toggles on the
// same plan can persist a stale count.
//
// Plan completion is one-way: completed_at and the plan status flip
// exactly once, guarded by the unset check, and un-marking a resource
// later does not revert them.
func recomputePlanProgress(ctx context.Context, tx *sql.Tx, planID int64) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO progress (user_id, study_plan_id)
SELECT user_id, id FROM study_plans WHERE id = ?
ON CONFLICT(study_plan_id) DO NOTHING
`, planID); err != nil {
		return err
	}

	var total, done int
	if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(is_completed), 0)
FROM study_plan_resources
WHERE study_plan_id = ?
`, planID).Scan(&total, &done); err != nil {
		return err
	}

	pct := 0.0
	if total > 0 {
		pct = round2(float64(done) / float64(total) * 100)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE progress
SET total_resources = ?, completed_resources = ?, completion_percentage = ?, last_activity = CURRENT_TIMESTAMP
WHERE study_plan_id = ?
`, total, done, pct, planID); err != nil {
		return err
	}

	if done > 0 {
		if _, err := tx.ExecContext(ctx, `
UPDATE progress SET started_at = CURRENT_TIMESTAMP
WHERE study_plan_id = ? AND started_at IS NULL
`, planID); err != nil {
			return err
		}
	}

	if total > 0 && done == total {
		res, err := tx.ExecContext(ctx, `
UPDATE progress SET completed_at = CURRENT_TIMESTAMP
WHERE study_plan_id = ? AND completed_at IS NULL
`, planID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			if _, err := tx.ExecContext(ctx, `
UPDATE study_plans SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`, models.PlanStatusCompleted, planID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *progressRepository) EnsureForPlan(ctx context.Context, userID, planID int64) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		return recomputePlanProgress(ctx, tx, planID)
	})
	if err != nil {
		log.Error("failed to ensure progress: %v", err)
		return nil, err
	}
	return r.GetForPlan(ctx, userID, planID)
}

func (r *progressRepository) GetForPlan(ctx context.Context, userID, planID int64) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+progressColumns+` FROM progress WHERE study_plan_id = ? AND user_id = ?
`, planID, userID)
	p, err := scanProgress(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("progress not found: plan_id=%d, user_id=%d", planID, userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	return p, nil
}

const resourceProgressColumns = `id, user_id, study_plan_resource_id, is_completed, progress_percentage, time_spent, started_at, completed_at, notes`

func scanResourceProgress(scan func(...any) error) (*models.ResourceProgress, error) {
	var rp models.ResourceProgress
	var started, completed sql.NullTime
	err := scan(&rp.ID, &rp.UserID, &rp.StudyPlanResourceID, &rp.IsCompleted, &rp.ProgressPercentage, &rp.TimeSpent, &started, &completed, &rp.Notes)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		rp.StartedAt = &started.Time
	}
	if completed.Valid {
		rp.CompletedAt = &completed.Time
	}
	return &rp, nil
}

func (r *progressRepository) EnsureResourceProgress(ctx context.Context, userID, planResourceID int64) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	// Only for plan resources the acting user owns; otherwise the row
	// must not exist, and must not reveal that the link does.
	var planOwner int64
	err := r.db.QueryRowContext(ctx, `
SELECT sp.user_id
FROM study_plan_resources spr
JOIN study_plans sp ON sp.id = spr.study_plan_id
WHERE spr.id = ?
`, planResourceID).Scan(&planOwner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && planOwner != userID) {
		log.Debug("plan resource not found or not owned: id=%d, user_id=%d", planResourceID, userID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO resource_progress (user_id, study_plan_resource_id)
VALUES (?, ?)
ON CONFLICT(user_id, study_plan_resource_id) DO NOTHING
`, userID, planResourceID); err != nil {
		log.Error("failed to ensure resource progress: %v", err)
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
SELECT `+resourceProgressColumns+` FROM resource_progress
WHERE user_id = ? AND study_plan_resource_id = ?
`, userID, planResourceID)
	return scanResourceProgress(row.Scan)
}

func (r *progressRepository) GetResourceProgress(ctx context.Context, id, userID int64) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+resourceProgressColumns+` FROM resource_progress WHERE id = ? AND user_id = ?
`, id, userID)
	rp, err := scanResourceProgress(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("resource progress not found: id=%d, user_id=%d", id, userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get resource progress: %v", err)
		return nil, err
	}
	return rp, nil
}

// SetResourceCompletion flips a resource's completion state. The
// resource_progress write, the StudyPlanResource mirror, and the plan
// aggregate recompute are one atomic unit.
func (r *progressRepository) SetResourceCompletion(ctx context.Context, id, userID int64, completed bool, now time.Time) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("setting resource completion: id=%d, completed=%v", id, completed)

	var out *models.ResourceProgress
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var planResourceID, planID int64
		err := tx.QueryRowContext(ctx, `
SELECT rp.study_plan_resource_id, spr.study_plan_id
FROM resource_progress rp
JOIN study_plan_resources spr ON spr.id = rp.study_plan_resource_id
JOIN study_plans sp ON sp.id = spr.study_plan_id
WHERE rp.id = ? AND rp.user_id = ? AND sp.user_id = ?
`, id, userID, userID).Scan(&planResourceID, &planID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil // out stays nil: not found
		}
		if err != nil {
			return err
		}

		if completed {
			if _, err := tx.ExecContext(ctx, `
UPDATE resource_progress
SET is_completed = 1, progress_percentage = 100, completed_at = ?
WHERE id = ?
`, now, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
UPDATE study_plan_resources SET is_completed = 1, completion_date = ? WHERE id = ?
`, now.Format("2006-01-02"), planResourceID); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
UPDATE resource_progress SET is_completed = 0, completed_at = NULL WHERE id = ?
`, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
UPDATE study_plan_resources SET is_completed = 0, completion_date = NULL WHERE id = ?
`, planResourceID); err != nil {
				return err
			}
		}

		if err := recomputePlanProgress(ctx, tx, planID); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
SELECT `+resourceProgressColumns+` FROM resource_progress WHERE id = ?
`, id)
		rp, err := scanResourceProgress(row.Scan)
		if err != nil {
			return err
		}
		out = rp
		return nil
	})
	if err != nil {
		log.Error("failed to set resource completion: %v", err)
		return nil, err
	}
	return out, nil
}

// UpdateResourceProgress applies a partial update and recomputes the
// plan aggregate in the same transaction. The first non-nil percentage
// stamps started_at.
func (r *progressRepository) UpdateResourceProgress(ctx context.Context, id, userID int64, upd models.ResourceProgressUpdate, now time.Time) (*models.ResourceProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("updating resource progress: id=%d", id)

	var out *models.ResourceProgress
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var planID int64
		var started sql.NullTime
		err := tx.QueryRowContext(ctx, `
SELECT spr.study_plan_id, rp.started_at
FROM resource_progress rp
JOIN study_plan_resources spr ON spr.id = rp.study_plan_resource_id
JOIN study_plans sp ON sp.id = spr.study_plan_id
WHERE rp.id = ? AND rp.user_id = ? AND sp.user_id = ?
`, id, userID, userID).Scan(&planID, &started)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		update := sqlBuilder.Update("resource_progress").Where(squirrel.Eq{"id": id})
		changed := false
		if upd.Percentage != nil {
			update = update.Set("progress_percentage", round2(*upd.Percentage))
			if !started.Valid {
				update = update.Set("started_at", now)
			}
			changed = true
		}
		if upd.Notes != nil {
			update = update.Set("notes", *upd.Notes)
			changed = true
		}
		if upd.TimeSpent != nil {
			update = update.Set("time_spent", round2(*upd.TimeSpent))
			changed = true
		}
		if changed {
			sqlStr, args, err := update.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				return err
			}
		}

		if err := recomputePlanProgress(ctx, tx, planID); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
SELECT `+resourceProgressColumns+` FROM resource_progress WHERE id = ?
`, id)
		rp, err := scanResourceProgress(row.Scan)
		if err != nil {
			return err
		}
		out = rp
		return nil
	})
	if err != nil {
		log.Error("failed to update resource progress: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *progressRepository) UserStats(ctx context.Context, userID int64) (*models.UserStudyStats, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	var stats models.UserStudyStats
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(status = ?), 0)
FROM study_plans WHERE user_id = ?
`, models.PlanStatusCompleted, userID).Scan(&stats.Plans, &stats.CompletedPlans)
	if err != nil {
		log.Error("failed to count plans: %v", err)
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(completed_resources), 0), COALESCE(SUM(total_hours_spent), 0)
FROM progress WHERE user_id = ?
`, userID).Scan(&stats.CompletedResources, &stats.HoursSpent)
	if err != nil {
		log.Error("failed to sum progress: %v", err)
		return nil, err
	}
	return &stats, nil
}
