package ledger

import (
	"github.com/runesbridge/staking-pipeline/internal/models"
)

// Merge computes the next persisted state of a wallet from one batch aggregate.
// existing is nil when the wallet has never been stored.
//
// A new wallet starts with an empty staking list and records the batch's
// staking total, rounded to two decimals. An existing wallet gets the batch
// transactions appended, its reward increased and its category replaced; its
// staking amount is left as it was at creation. Nothing is deduplicated, so
// merging the same batch twice appends its transactions twice.
func Merge(agg *models.WalletAggregate, existing *models.Wallet) (models.Wallet, models.WalletSummary) {
	summary := agg.Summary()

	if existing == nil {
		return models.Wallet{
			WalletAddress: agg.WalletAddress,
			Category:      agg.Category,
			Staking:       []models.StakingItem{},
			RewardAmount:  agg.TotalRewardAmount,
			StakingAmount: agg.TotalStakingAmount.Round(2),
		}, summary
	}

	next := existing.Clone()
	if next.Staking == nil {
		next.Staking = make([]models.StakingItem, 0, len(agg.Transactions))
	}
	for _, tx := range agg.Transactions {
		next.Staking = append(next.Staking, models.DerivedItem(tx))
	}
	next.RewardAmount = next.RewardAmount.Add(agg.TotalRewardAmount)
	next.Category = agg.Category

	return next, summary
}
