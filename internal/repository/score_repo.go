package repository

import (
	"context"
	"errors"

	"telegram_arcade/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoreRepository persists per-chat point totals.
//
// Schema:
//
//	CREATE TABLE chat_scores (
//	    chat_id    BIGINT NOT NULL,
//	    user_id    BIGINT NOT NULL,
//	    points     INT    NOT NULL DEFAULT 0,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (chat_id, user_id)
//	);
type ScoreRepository struct {
	db *pgxpool.Pool
}

func NewScoreRepository(db *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// AddPoints applies delta atomically and returns the new total. Totals are
// floored at zero, so a deduction can never push a player negative. The
// single upsert keeps concurrent sessions from losing updates.
func (r *ScoreRepository) AddPoints(ctx context.Context, chatID, userID int64, delta int) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_scores (chat_id, user_id, points)
		 VALUES ($1, $2, GREATEST($3, 0))
		 ON CONFLICT (chat_id, user_id)
		 DO UPDATE SET points = GREATEST(chat_scores.points + $3, 0), updated_at = now()
		 RETURNING points`,
		chatID, userID, delta,
	).Scan(&total)
	return total, err
}

// GetPoints returns the user's total, zero when unknown.
func (r *ScoreRepository) GetPoints(ctx context.Context, chatID, userID int64) (int, error) {
	var points int
	err := r.db.QueryRow(ctx,
		`SELECT points FROM chat_scores WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID,
	).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return points, nil
}

// TopPoints returns up to limit entries ordered by points descending.
func (r *ScoreRepository) TopPoints(ctx context.Context, chatID int64, limit int) ([]domain.ScoreEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, points
		 FROM chat_scores
		 WHERE chat_id = $1
		 ORDER BY points DESC, user_id
		 LIMIT $2`,
		chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScoreEntry
	for rows.Next() {
		var e domain.ScoreEntry
		if err := rows.Scan(&e.UserID, &e.Points); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
