package sqlite

import (
	"context"
	"database/sql"

	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

type achievementRepository struct {
	db *sql.DB
}

// NewAchievementRepository creates a new AchievementRepository implementation
func NewAchievementRepository(db *sql.DB) repository.AchievementRepository {
	return &achievementRepository{db: db}
}

// GetOrCreate unlocks a badge at most once per (user, type); the
// unique constraint makes repeated calls converge on the same row.
func (r *achievementRepository) GetOrCreate(ctx context.Context, userID int64, achievementType, title, description string) (*models.Achievement, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("achievement_repo")

	res, err := r.db.ExecContext(ctx, `
INSERT INTO achievements (user_id, achievement_type, title, description)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, achievement_type) DO NOTHING
`, userID, achievementType, title, description)
	if err != nil {
		log.Error("failed to insert achievement: %v", err)
		return nil, false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	var a models.Achievement
	err = r.db.QueryRowContext(ctx, `
SELECT id, user_id, achievement_type, title, description, earned_at
FROM achievements
WHERE user_id = ? AND achievement_type = ?
`, userID, achievementType).Scan(&a.ID, &a.UserID, &a.AchievementType, &a.Title, &a.Description, &a.EarnedAt)
	if err != nil {
		log.Error("failed to load achievement: %v", err)
		return nil, false, err
	}

	if inserted > 0 {
		log.Info("achievement unlocked: user_id=%d, type=%s", userID, achievementType)
	}
	return &a, inserted > 0, nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID int64) ([]models.Achievement, error) {
	log := logger.FromContext(ctx).WithPrefix("achievement_repo")
	log.Debug("listing achievements: user_id=%d", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, achievement_type, title, description, earned_at
FROM achievements
WHERE user_id = ?
ORDER BY earned_at DESC, id DESC
`, userID)
	if err != nil {
		log.Error("failed to list achievements: %v", err)
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementType, &a.Title, &a.Description, &a.EarnedAt); err != nil {
			log.Error("failed to scan achievement row: %v", err)
			return nil, err
		}
		achievements = append(achievements, a)
	}
	log.Debug("found %d achievements", len(achievements))
	return achievements, rows.Err()
}
