package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one line of an ingested table. Cells are string, float64, int, bool or nil
// depending on what the reader could tell about the source cell.
type Row []any

// Column positions inside a transaction Row.
const (
	ColumnWallet = 2
	ColumnDate   = 5
	ColumnAmount = 6
)

// Category is the tag of the rule that was applied to a transaction.
type Category string

const (
	CategoryNone                                     Category = ""
	CategorySoldBeforeJune17                         Category = "soldBeforeJune17"
	CategoryPurchasedBeforeAugust1AndSoldAfterJune17 Category = "purchasedBeforeAugust1AndSoldAfterJune17"
	CategoryPurchasedAfterJuly22                     Category = "purchasedAfterJuly22"
)

// Transaction is a single classified row of a batch.
type Transaction struct {
	TxHash        string          `json:"txHash"`
	DateTime      time.Time       `json:"dateTime"`
	Amount        decimal.Decimal `json:"amount"`
	StakingAmount decimal.Decimal `json:"stakingAmount"`
	RewardAmount  decimal.Decimal `json:"rewardAmount"`
	Rule          int             `json:"rule"`
	RuleApplied   Category        `json:"ruleApplied"`
	RuleLabel     string          `json:"ruleLabel"`
}

// WalletAggregate folds every transaction of one wallet within a batch.
type WalletAggregate struct {
	WalletAddress      string
	TotalStakingAmount decimal.Decimal
	TotalRewardAmount  decimal.Decimal
	Category           Category
	Transactions       []Transaction
}

// WalletSummary is the flattened export tuple of a WalletAggregate.
// Amounts are already rounded to two decimals.
type WalletSummary struct {
	WalletAddress      string
	TotalStakingAmount string
	TotalRewardAmount  string
	Category           Category
}

// Wallet is the persisted per-wallet ledger state.
type Wallet struct {
	WalletAddress string          `json:"walletAddress"`
	Category      Category        `json:"category"`
	Staking       []StakingItem   `json:"staking"`
	RewardAmount  decimal.Decimal `json:"rewardAmount"`
	StakingAmount decimal.Decimal `json:"stakingAmount"`

	// Version is the store revision the wallet was read at; 0 when never stored.
	Version uint64 `json:"-"`
}

// Clone returns a copy of w that shares no slices with it.
func (w Wallet) Clone() Wallet {
	out := w
	if w.Staking != nil {
		out.Staking = make([]StakingItem, len(w.Staking))
		for i, item := range w.Staking {
			out.Staking[i] = item.clone()
		}
	}
	return out
}

// ManualStaking is a staking submission as it arrives from a client.
// All values are kept as submitted text.
type ManualStaking struct {
	StakedAmount  Text `json:"stakedAmount"`
	APR           Text `json:"APR"`
	LockDate      Text `json:"LockDate"`
	MaxUnlockDate Text `json:"MaxUnlockDate"`
	RewardsNow    Text `json:"RewardsNow"`
	RewardsMUD    Text `json:"RewardsMUD"`
}

// StakingEntry is the stand-alone record kept for every manual staking submission.
type StakingEntry struct {
	ID            string    `json:"id" ch:"id"`
	StakedAmount  string    `json:"stakedAmount" ch:"staked_amount"`
	AprDaily      string    `json:"aprDaily" ch:"apr_daily"`
	LockDate      string    `json:"lockDate" ch:"lock_date"`
	MaxUnlockDate string    `json:"maxUnlockDate" ch:"max_unlock_date"`
	RewardsNow    string    `json:"rewardsNow" ch:"rewards_now"`
	RewardsMud    string    `json:"rewardsMud" ch:"rewards_mud"`
	CreatedAt     time.Time `json:"createdAt" ch:"created_at"`
}

// CategoryTotal sums persisted wallets sharing a category.
type CategoryTotal struct {
	Category      string          `json:"category" ch:"category"`
	Wallets       uint64          `json:"wallets" ch:"wallets"`
	RewardAmount  decimal.Decimal `json:"rewardAmount" ch:"reward_amount"`
	StakingAmount decimal.Decimal `json:"stakingAmount" ch:"staking_amount"`
}

// Summary rounds the aggregate totals to two decimals for export.
func (a WalletAggregate) Summary() WalletSummary {
	return WalletSummary{
		WalletAddress:      a.WalletAddress,
		TotalStakingAmount: a.TotalStakingAmount.StringFixed(2),
		TotalRewardAmount:  a.TotalRewardAmount.StringFixed(2),
		Category:           a.Category,
	}
}
