package aggregator

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runesbridge/staking-pipeline/internal/models"
	"github.com/runesbridge/staking-pipeline/internal/parser"
	"github.com/runesbridge/staking-pipeline/internal/rules"
)

type Aggregator interface {
	Aggregate(rows []models.Row) *Batch
}

// Batch holds the wallet aggregates of one pass over a table, in the order
// wallets were first seen.
type Batch struct {
	order   []string
	wallets map[string]*models.WalletAggregate

	// Skipped counts data rows dropped for a missing wallet, date or amount.
	Skipped int
}

func newBatch() *Batch {
	return &Batch{wallets: make(map[string]*models.WalletAggregate)}
}

// Wallets returns the aggregates in first-seen order.
func (b *Batch) Wallets() []*models.WalletAggregate {
	out := make([]*models.WalletAggregate, 0, len(b.order))
	for _, addr := range b.order {
		out = append(out, b.wallets[addr])
	}
	return out
}

// Len is the number of distinct wallets in the batch.
func (b *Batch) Len() int {
	return len(b.order)
}

type SimpleAggregator struct {
	classifier *rules.Classifier
}

func NewAggregator() *SimpleAggregator {
	return &SimpleAggregator{classifier: rules.NewClassifier()}
}

// Aggregate folds the rows into per-wallet aggregates. The first row is the
// header and is always skipped.
func (a *SimpleAggregator) Aggregate(rows []models.Row) *Batch {
	batch := newBatch()

	for i, row := range rows {
		if i == 0 {
			continue // Skip header
		}

		rec, ok := parser.ParseRecord(row)
		if !ok {
			batch.Skipped++
			continue
		}

		rule, ok := a.classifier.Classify(rec.DateTime)
		if !ok {
			batch.Skipped++
			continue
		}

		staking, reward := rule.Apply(rec.Amount)
		a.updateAggregate(batch, rec.WalletAddress, models.Transaction{
			TxHash:        txHash(rec.WalletAddress, rec.DateTime, rec.Amount),
			DateTime:      rec.DateTime,
			Amount:        rec.Amount,
			StakingAmount: staking,
			RewardAmount:  reward,
			Rule:          rule.Number,
			RuleApplied:   rule.Category,
			RuleLabel:     rule.Label(),
		})
	}

	return batch
}

func (a *SimpleAggregator) updateAggregate(batch *Batch, walletAddress string, tx models.Transaction) {
	agg, exists := batch.wallets[walletAddress]
	if !exists {
		agg = &models.WalletAggregate{
			WalletAddress:      walletAddress,
			TotalStakingAmount: decimal.Zero,
			TotalRewardAmount:  decimal.Zero,
		}
		batch.wallets[walletAddress] = agg
		batch.order = append(batch.order, walletAddress)
	}

	agg.TotalStakingAmount = agg.TotalStakingAmount.Add(tx.StakingAmount)
	agg.TotalRewardAmount = agg.TotalRewardAmount.Add(tx.RewardAmount)
	agg.Category = tx.RuleApplied
	agg.Transactions = append(agg.Transactions, tx)
}

// txHash identifies a transaction by its content.
func txHash(walletAddress string, dateTime time.Time, amount decimal.Decimal) string {
	sum := sha256.Sum256([]byte(walletAddress + "|" + dateTime.UTC().Format(time.RFC3339Nano) + "|" + amount.String()))
	return hex.EncodeToString(sum[:])
}
