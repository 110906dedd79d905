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

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, goals, total_points, current_rank, login_streak, last_login_date, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Goals, &u.TotalPoints, &u.CurrentRank, &u.LoginStreak, &u.LastLoginDate, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: email=%s", user.Email)

	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (name, email, goals)
VALUES (?, ?, ?)
RETURNING `+userColumns+`
`, user.Name, user.Email, user.Goals)
	u, err := scanUser(row)
	if err != nil {
		log.Error("failed to create user: %v", err)
		return nil, err
	}
	log.Debug("user created: id=%d", u.ID)
	return u, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return u, nil
}

// RecomputeRanks reassigns every user's ordinal rank from lifetime
// points, ties broken by ascending id. Full-table pass, one
// transaction, so concurrent readers never observe a half-assigned
// ordering.
func (r *userRepository) RecomputeRanks(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("recomputing all user ranks")

	var ranked int
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM users ORDER BY total_points DESC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `UPDATE users SET current_rank = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, i+1, id); err != nil {
				return err
			}
		}
		ranked = len(ids)
		return nil
	})
	if err != nil {
		log.Error("failed to recompute ranks: %v", err)
		return 0, err
	}
	log.Debug("ranks recomputed for %d users", ranked)
	return ranked, nil
}

func (r *userRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("fetching leaderboard: limit=%d", limit)

	query := sqlBuilder.
		Select("id", "name", "total_points", "current_rank").
		From("users").
		OrderBy("total_points DESC", "id ASC").
		Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query leaderboard: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalPoints, &e.Rank); err != nil {
			log.Error("failed to scan leaderboard row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	log.Debug("leaderboard has %d entries", len(entries))
	return entries, rows.Err()
}

func (r *userRepository) CountWithMorePoints(ctx context.Context, points int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE total_points > ?`, points).Scan(&n)
	return n, err
}
