package database

import (
	"context"
	"fmt"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// FetchCategoryTotals sums reward and staking amounts of persisted wallets per category.
func (s *ClickHouseStore) FetchCategoryTotals(ctx context.Context) ([]models.CategoryTotal, error) {
	var totals []models.CategoryTotal
	query := `
	SELECT
		category,
		count() AS wallets,
		sum(reward_amount) AS reward_amount,
		sum(staking_amount) AS staking_amount
	FROM wallets FINAL
	GROUP BY category
	ORDER BY category
	`

	if err := s.Conn.Select(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("error executing query '%s': %w", query, err)
	}

	return totals, nil
}
