package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, study_plan_id, resource_id, started_at, ended_at, duration, notes`

func scanSession(scan func(...any) error) (*models.StudySession, error) {
	var s models.StudySession
	var resourceID sql.NullInt64
	var ended sql.NullTime
	err := scan(&s.ID, &s.UserID, &s.StudyPlanID, &resourceID, &s.StartedAt, &ended, &s.Duration, &s.Notes)
	if err != nil {
		return nil, err
	}
	if resourceID.Valid {
		s.ResourceID = &resourceID.Int64
	}
	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return &s, nil
}

func (r *sessionRepository) Insert(ctx context.Context, session models.StudySession) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("starting study session: user_id=%d, plan_id=%d", session.UserID, session.StudyPlanID)

	row := r.db.QueryRowContext(ctx, `
INSERT INTO study_sessions (user_id, study_plan_id, resource_id, started_at, notes)
VALUES (?, ?, ?, ?, ?)
RETURNING `+sessionColumns+`
`, session.UserID, session.StudyPlanID, session.ResourceID, session.StartedAt, session.Notes)
	s, err := scanSession(row.Scan)
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, err
	}
	log.Debug("session started: id=%d", s.ID)
	return s, nil
}

func (r *sessionRepository) Get(ctx context.Context, id, userID int64) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT `+sessionColumns+` FROM study_sessions WHERE id = ? AND user_id = ?
`, id, userID)
	s, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%d, user_id=%d", id, userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return s, nil
}

// End closes a running session and credits its duration to the plan's
// hour total, both in one transaction. Ending an already-ended session
// is a no-op; the second return reports whether this call closed it.
//
// Hours accumulate additively and never pass through the completion
// recompute; duration does not affect completed_resources, so the
// percentage invariant is untouched.
func (r *sessionRepository) End(ctx context.Context, id, userID int64, now time.Time, notes string) (*models.StudySession, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("ending study session: id=%d", id)

	var out *models.StudySession
	var closedNow bool
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
SELECT `+sessionColumns+` FROM study_sessions WHERE id = ? AND user_id = ?
`, id, userID)
		s, err := scanSession(row.Scan)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.EndedAt != nil {
			out = s
			return nil
		}

		// Clamp against clock skew; a session can never subtract hours.
		duration := round2(now.Sub(s.StartedAt).Hours())
		if duration < 0 {
			duration = 0
		}

		if notes == "" {
			notes = s.Notes
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE study_sessions SET ended_at = ?, duration = ?, notes = ? WHERE id = ?
`, now, duration, notes, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO progress (user_id, study_plan_id)
SELECT user_id, id FROM study_plans WHERE id = ?
ON CONFLICT(study_plan_id) DO NOTHING
`, s.StudyPlanID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE progress
SET total_hours_spent = ROUND(total_hours_spent + ?, 2), last_activity = CURRENT_TIMESTAMP
WHERE study_plan_id = ?
`, duration, s.StudyPlanID); err != nil {
			return err
		}

		row = tx.QueryRowContext(ctx, `
SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?
`, id)
		ended, err := scanSession(row.Scan)
		if err != nil {
			return err
		}
		out = ended
		closedNow = true
		return nil
	})
	if err != nil {
		log.Error("failed to end session: %v", err)
		return nil, false, err
	}
	return out, closedNow, nil
}

func (r *sessionRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing recent sessions: user_id=%d, limit=%d", userID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+sessionColumns+` FROM study_sessions
WHERE user_id = ?
ORDER BY started_at DESC
LIMIT ?
`, userID, limit)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
