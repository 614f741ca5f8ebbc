package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

func TestMemoryStoreWallets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.FindOne(ctx, "wallet-a")
	require.ErrorIs(t, err, ErrNotFound)

	w := models.Wallet{
		WalletAddress: "wallet-a",
		Category:      models.CategorySoldBeforeJune17,
		Staking:       []models.StakingItem{models.ManualItem(models.ManualStaking{StakedAmount: "1"})},
		RewardAmount:  decimal.NewFromInt(10),
	}
	require.NoError(t, store.Save(ctx, w))

	got, err := store.FindOne(ctx, "wallet-a")
	require.NoError(t, err)
	assert.Equal(t, w.Category, got.Category)
	require.Len(t, got.Staking, 1)

	got.Staking = append(got.Staking, models.ManualItem(models.ManualStaking{}))
	again, err := store.FindOne(ctx, "wallet-a")
	require.NoError(t, err)
	assert.Len(t, again.Staking, 1, "store must not share slices with callers")

	w.RewardAmount = decimal.NewFromInt(20)
	require.NoError(t, store.Save(ctx, w))
	require.NoError(t, store.Save(ctx, models.Wallet{WalletAddress: "wallet-0"}))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "wallet-0", all[0].WalletAddress)
	assert.True(t, decimal.NewFromInt(20).Equal(all[1].RewardAmount))

	require.Error(t, store.Save(ctx, models.Wallet{}))
}

func TestMemoryStoreCategoryTotals(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, models.Wallet{WalletAddress: "a", Category: models.CategorySoldBeforeJune17, RewardAmount: decimal.NewFromInt(10), StakingAmount: decimal.NewFromInt(5)}))
	require.NoError(t, store.Save(ctx, models.Wallet{WalletAddress: "b", Category: models.CategorySoldBeforeJune17, RewardAmount: decimal.NewFromInt(4), StakingAmount: decimal.NewFromInt(2)}))
	require.NoError(t, store.Save(ctx, models.Wallet{WalletAddress: "c", Category: models.CategoryPurchasedAfterJuly22, RewardAmount: decimal.NewFromInt(1)}))

	totals, err := store.FetchCategoryTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "purchasedAfterJuly22", totals[0].Category)
	assert.Equal(t, uint64(1), totals[0].Wallets)
	assert.Equal(t, "soldBeforeJune17", totals[1].Category)
	assert.Equal(t, uint64(2), totals[1].Wallets)
	assert.True(t, decimal.NewFromInt(14).Equal(totals[1].RewardAmount))
	assert.True(t, decimal.NewFromInt(7).Equal(totals[1].StakingAmount))
}

func TestMemoryStoreStakingEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateStakingEntry(ctx, models.StakingEntry{ID: "1", StakedAmount: "100"}))
	require.NoError(t, store.CreateStakingEntry(ctx, models.StakingEntry{ID: "2", StakedAmount: "200"}))

	entries, err := store.FindAllStakingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "200", entries[1].StakedAmount)
}

func TestWalletRowToModel(t *testing.T) {
	row := walletRow{
		WalletAddress: "wallet-a",
		Category:      "soldBeforeJune17",
		Staking:       `[{"kind":"manual","stakedAmount":"5"}]`,
		RewardAmount:  decimal.NewFromInt(3),
	}

	w, err := row.toModel()
	require.NoError(t, err)
	assert.Equal(t, models.CategorySoldBeforeJune17, w.Category)
	require.Len(t, w.Staking, 1)
	assert.Equal(t, models.Text("5"), w.Staking[0].Manual.StakedAmount)

	empty, err := walletRow{WalletAddress: "wallet-b"}.toModel()
	require.NoError(t, err)
	assert.NotNil(t, empty.Staking)

	_, err = walletRow{WalletAddress: "wallet-c", Staking: "{"}.toModel()
	require.Error(t, err)
}
