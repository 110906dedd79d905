package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

type planRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository implementation
func NewPlanRepository(db *sql.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `id, user_id, title, description, learning_objective, start_date, end_date, estimated_hours_per_week, status, created_at, updated_at`

func scanPlan(scan func(...any) error) (*models.StudyPlan, error) {
	var p models.StudyPlan
	err := scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.LearningObjective, &p.StartDate, &p.EndDate, &p.EstimatedHoursPerWeek, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepository) Create(ctx context.Context, plan models.StudyPlan) (*models.StudyPlan, error) {
	log := logger.FromContext(ctx).WithPrefix("plan_repo")
	log.Debug("creating study plan: user_id=%d, title=%s", plan.UserID, plan.Title)

	// A plan always carries its aggregate row; creating both together
	// keeps later recomputes from having to get-or-create.
	var created *models.StudyPlan
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
INSERT INTO study_plans (user_id, title, description, learning_objective, start_date, end_date, estimated_hours_per_week, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING `+planColumns+`
`, plan.UserID, plan.Title, plan.Description, plan.LearningObjective, plan.StartDate, plan.EndDate, plan.EstimatedHoursPerWeek, models.PlanStatusActive)
		p, err := scanPlan(row.Scan)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO progress (user_id, study_plan_id) VALUES (?, ?)
`, p.UserID, p.ID); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		log.Error("failed to create study plan: %v", err)
		return nil, err
	}
	log.Debug("study plan created: id=%d", created.ID)
	return created, nil
}

func (r *planRepository) Get(ctx context.Context, id, userID int64) (*models.StudyPlan, error) {
	log := logger.FromContext(ctx).WithPrefix("plan_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+planColumns+` FROM study_plans WHERE id = ? AND user_id = ?
`, id, userID)
	p, err := scanPlan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("study plan not found: id=%d, user_id=%d", id, userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get study plan: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *planRepository) List(ctx context.Context, userID int64, status string) ([]models.StudyPlan, error) {
	log := logger.FromContext(ctx).WithPrefix("plan_repo")
	log.Debug("listing study plans: user_id=%d, status=%q", userID, status)

	query := sqlBuilder.
		Select("id", "user_id", "title", "description", "learning_objective", "start_date", "end_date", "estimated_hours_per_week", "status", "created_at", "updated_at").
		From("study_plans").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if status != "" {
		query = query.Where(squirrel.Eq{"status": status})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list study plans: %v", err)
		return nil, err
	}
	defer rows.Close()

	var plans []models.StudyPlan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			log.Error("failed to scan study plan row: %v", err)
			return nil, err
		}
		plans = append(plans, *p)
	}
	log.Debug("found %d study plans", len(plans))
	return plans, rows.Err()
}
