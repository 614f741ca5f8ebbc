package exporter

import (
	"github.com/runesbridge/staking-pipeline/internal/models"
)

// Header is the first row of every export table.
var Header = []string{"Wallet Address", "Total Staking Amount", "Total Reward Amount", "Category"}

// FormatTable builds the export table: the header followed by one row per
// wallet, in the order given.
func FormatTable(summaries []models.WalletSummary) [][]string {
	table := make([][]string, 0, len(summaries)+1)
	table = append(table, append([]string(nil), Header...))
	for _, s := range summaries {
		table = append(table, []string{
			s.WalletAddress,
			s.TotalStakingAmount,
			s.TotalRewardAmount,
			string(s.Category),
		})
	}
	return table
}
