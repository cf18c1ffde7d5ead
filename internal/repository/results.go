package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PlayerScore is one player's final standing in a finished game.
type PlayerScore struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// GameResult is the record persisted when a game ends.
type GameResult struct {
	GameID     string
	RoomID     string
	Turns      int
	Scores     []PlayerScore
	FinishedAt time.Time
}

// GameResultRepository persists finished game results.
type GameResultRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGameResultRepository creates a result repository.
func NewGameResultRepository(db *DB, logger *zap.Logger) *GameResultRepository {
	return &GameResultRepository{db: db, logger: logger}
}

// EnsureSchema creates the results table if it does not exist.
func (r *GameResultRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_results (
			game_id     TEXT PRIMARY KEY,
			room_id     TEXT NOT NULL,
			turns       INTEGER NOT NULL,
			scores      JSONB NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create game_results table: %w", err)
	}
	return nil
}

// Save stores one finished game. Saving the same game twice keeps the first
// record.
func (r *GameResultRepository) Save(ctx context.Context, result GameResult) error {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO game_results (game_id, room_id, turns, scores, finished_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO NOTHING
	`,
		result.GameID,
		result.RoomID,
		result.Turns,
		scores,
		result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}

	r.logger.Info("game result saved",
		zap.String("game_id", result.GameID),
		zap.String("room_id", result.RoomID),
		zap.Int("players", len(result.Scores)),
	)
	return nil
}

// Recent returns up to limit finished games, newest first.
func (r *GameResultRepository) Recent(ctx context.Context, limit int) ([]GameResult, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT game_id, room_id, turns, scores, finished_at
		FROM game_results
		ORDER BY finished_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game results: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var result GameResult
		var scores []byte
		if err := rows.Scan(&result.GameID, &result.RoomID, &result.Turns, &scores, &result.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		if err := json.Unmarshal(scores, &result.Scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
