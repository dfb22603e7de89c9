package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/walltowall/internal/models"
)

// PostgresRepository stores scores in the best_scores and runs tables.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Best(ctx context.Context, playerID int) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	var best models.BestScore
	err := r.db.GetContext(ctx, &best, `SELECT player_id, score, updated_at FROM best_scores WHERE player_id=$1`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load best score: %w", err)
	}
	return best.Score, nil
}

func (r *PostgresRepository) SaveBest(ctx context.Context, playerID, score int) error {
	if r.db == nil {
		return fmt.Errorf("db is nil")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO best_scores (player_id, score, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (player_id) DO UPDATE
		SET score = GREATEST(best_scores.score, EXCLUDED.score),
		    updated_at = CASE WHEN EXCLUDED.score > best_scores.score THEN NOW() ELSE best_scores.updated_at END`,
		playerID, score)
	if err != nil {
		return fmt.Errorf("save best score: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ResetBest(ctx context.Context, playerID int) error {
	if r.db == nil {
		return fmt.Errorf("db is nil")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM best_scores WHERE player_id=$1`, playerID)
	if err != nil {
		return fmt.Errorf("reset best score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayerNotFound
	}
	log.Printf("[DB] Best score reset for player %d", playerID)
	return nil
}

func (r *PostgresRepository) RecordRun(ctx context.Context, run models.Run) error {
	if r.db == nil {
		return fmt.Errorf("db is nil")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (player_id, score, launched, duration_seconds, ended_at) VALUES ($1,$2,$3,$4,$5)`,
		run.PlayerID, run.Score, run.Launched, run.DurationSeconds, run.EndedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE players SET last_active=NOW() WHERE id=$1`, run.PlayerID); err != nil {
		return fmt.Errorf("touch player: %w", err)
	}
	return tx.Commit()
}

func (r *PostgresRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	entries := []models.LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT b.player_id, p.display_name, b.score
		FROM best_scores b
		JOIN players p ON p.id = b.player_id
		WHERE b.score > 0
		ORDER BY b.score DESC, b.updated_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return rankEntries(entries), nil
}

// AllBests lists every positive best score, highest first.
func (r *PostgresRepository) AllBests(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	entries := []models.LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT b.player_id, p.display_name, b.score
		FROM best_scores b
		JOIN players p ON p.id = b.player_id
		WHERE b.score > 0
		ORDER BY b.score DESC`)
	if err != nil {
		return nil, fmt.Errorf("load all best scores: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) Rank(ctx context.Context, playerID int) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	best, err := r.Best(ctx, playerID)
	if err != nil || best == 0 {
		return 0, err
	}

	var above int
	if err := r.db.GetContext(ctx, &above, `SELECT COUNT(*) FROM best_scores WHERE score > $1`, best); err != nil {
		return 0, fmt.Errorf("rank player: %w", err)
	}
	return above + 1, nil
}

// DisplayNames returns display names for the given player IDs.
func (r *PostgresRepository) DisplayNames(ctx context.Context, ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if r.db == nil || len(ids) == 0 {
		return names, nil
	}

	query, args, err := sqlx.In(`SELECT id, display_name FROM players WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []models.Player
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load display names: %w", err)
	}
	for _, p := range rows {
		names[p.ID] = p.DisplayName
	}
	return names, nil
}
