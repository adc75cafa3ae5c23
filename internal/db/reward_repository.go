package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmire/mobai/internal/model"
)

// RewardRepository persists reward items for offline players.
type RewardRepository struct {
	db *pgxpool.Pool
}

// NewRewardRepository creates a new RewardRepository.
func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// SaveRewardItems appends reward items for a player.
func (r *RewardRepository) SaveRewardItems(ctx context.Context, playerID uint32, items []model.RewardItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{int64(playerID), item.ItemID, item.Count, int64(item.SourceID)})
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"player_reward_items"},
		[]string{"player_id", "item_id", "count", "source_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("saving reward items for player %d: %w", playerID, err)
	}
	return nil
}

// LoadRewardItems claims all pending reward items for a player: rows are
// read and deleted in one transaction, so a reward is delivered exactly
// once even if the player relogs mid-load.
func (r *RewardRepository) LoadRewardItems(ctx context.Context, playerID uint32) ([]model.RewardItem, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting reward load for player %d: %w", playerID, err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT item_id, count, source_id
		FROM player_reward_items
		WHERE player_id = $1
		ORDER BY id
	`

	rows, err := tx.Query(ctx, query, int64(playerID))
	if err != nil {
		return nil, fmt.Errorf("querying reward items for player %d: %w", playerID, err)
	}

	result := make([]model.RewardItem, 0, 8)
	for rows.Next() {
		var item model.RewardItem
		var sourceID int64
		if err := rows.Scan(&item.ItemID, &item.Count, &sourceID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning reward item row: %w", err)
		}
		item.SourceID = uint32(sourceID)
		result = append(result, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reward item rows: %w", err)
	}

	if len(result) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM player_reward_items WHERE player_id = $1`, int64(playerID),
		); err != nil {
			return nil, fmt.Errorf("claiming reward items for player %d: %w", playerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing reward load for player %d: %w", playerID, err)
	}
	return result, nil
}
