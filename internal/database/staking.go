package database

import (
	"context"
	"fmt"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// CreateStakingEntry inserts a manual staking entry.
func (s *ClickHouseStore) CreateStakingEntry(ctx context.Context, entry models.StakingEntry) error {
	batch, err := s.Conn.PrepareBatch(ctx, "INSERT INTO staking_entries (id, staked_amount, apr_daily, lock_date, max_unlock_date, rewards_now, rewards_mud, created_at)")
	if err != nil {
		return fmt.Errorf("error preparing ClickHouse batch: %w", err)
	}

	if err := batch.AppendStruct(&entry); err != nil {
		return fmt.Errorf("error appending to ClickHouse batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("error sending batch to ClickHouse: %w", err)
	}
	return nil
}

// FindAllStakingEntries returns the manual staking entries, oldest first.
func (s *ClickHouseStore) FindAllStakingEntries(ctx context.Context) ([]models.StakingEntry, error) {
	query := `
	SELECT id, staked_amount, apr_daily, lock_date, max_unlock_date, rewards_now, rewards_mud, created_at
	FROM staking_entries
	ORDER BY created_at, id
	`

	var entries []models.StakingEntry
	if err := s.Conn.Select(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("error executing query '%s': %w", query, err)
	}
	return entries, nil
}
