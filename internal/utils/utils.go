package utils

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// DisplayTable prints an export table. The first row is the header.
func DisplayTable(w io.Writer, rows [][]string) {
	if len(rows) < 2 {
		fmt.Fprintln(w, "No wallets to display.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(toRow(rows[0]))
	for _, r := range rows[1:] {
		t.AppendRow(toRow(r))
	}
	t.AppendFooter(table.Row{"", "", "Wallets", len(rows) - 1})

	t.Render()
}

// DisplayCategoryTotals prints the per-category sums of the stored wallets.
func DisplayCategoryTotals(w io.Writer, totals []models.CategoryTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No category totals to display.")
		return
	}

	fmt.Fprintln(w, "Staking ledger by category:")
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Wallets", "Total Staking Amount", "Total Reward Amount"})

	for _, total := range totals {
		category := total.Category
		if category == "" {
			category = "-"
		}
		t.AppendRow(table.Row{
			category,
			total.Wallets,
			total.StakingAmount.StringFixed(2),
			total.RewardAmount.StringFixed(2),
		})
	}

	t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
