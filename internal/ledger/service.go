package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/runesbridge/staking-pipeline/internal/aggregator"
	"github.com/runesbridge/staking-pipeline/internal/database"
	"github.com/runesbridge/staking-pipeline/internal/exporter"
	"github.com/runesbridge/staking-pipeline/internal/locker"
	"github.com/runesbridge/staking-pipeline/internal/models"
)

var ErrWalletNotFound = errors.New("wallet not found")

type WalletStore interface {
	FindOne(ctx context.Context, walletAddress string) (models.Wallet, error)
	Save(ctx context.Context, wallet models.Wallet) error
	FindAll(ctx context.Context) ([]models.Wallet, error)
}

type StakingStore interface {
	CreateStakingEntry(ctx context.Context, entry models.StakingEntry) error
	FindAllStakingEntries(ctx context.Context) ([]models.StakingEntry, error)
}

type TotalsStore interface {
	FetchCategoryTotals(ctx context.Context) ([]models.CategoryTotal, error)
}

// Store is everything the Service persists to.
type Store interface {
	WalletStore
	StakingStore
	TotalsStore
}

// BatchResult describes one processed batch.
type BatchResult struct {
	Wallets      []models.WalletSummary
	Table        [][]string
	Transactions int
	Skipped      int
	Created      int
	Updated      int
}

// WalletView is what callers get when looking a wallet up.
type WalletView struct {
	Category     models.Category      `json:"category"`
	Staking      []models.StakingItem `json:"staking"`
	RewardAmount decimal.Decimal      `json:"rewardAmount"`
}

// Service applies batches and manual staking submissions to the store. Every
// read-modify-write of a wallet happens while holding that wallet's lock.
type Service struct {
	store      Store
	locker     locker.Locker
	aggregator aggregator.Aggregator
	logger     *zap.Logger
	workers    int
	newID      func() string
	now        func() time.Time
}

func NewService(store Store, lk locker.Locker, logger *zap.Logger, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:      store,
		locker:     lk,
		aggregator: aggregator.NewAggregator(),
		logger:     logger,
		workers:    workers,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// ProcessBatch aggregates rows and merges every wallet into the store. Wallets
// are merged in parallel; a failure stops the batch but merges already saved
// stay saved. Cancelling ctx does not stop a batch that has started.
func (s *Service) ProcessBatch(ctx context.Context, rows []models.Row) (*BatchResult, error) {
	ctx = context.WithoutCancel(ctx)

	batch := s.aggregator.Aggregate(rows)
	aggregates := batch.Wallets()

	s.logger.Debug("aggregated batch",
		zap.Int("rows", len(rows)),
		zap.Int("wallets", batch.Len()),
		zap.Int("skipped", batch.Skipped))

	summaries := make([]models.WalletSummary, len(aggregates))
	var created, updated atomic.Int64

	pool := pond.NewPool(s.workers)
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i, agg := range aggregates {
		group.SubmitErr(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			isNew, summary, err := s.mergeWallet(groupCtx, agg)
			if err != nil {
				return err
			}
			summaries[i] = summary
			if isNew {
				created.Add(1)
			} else {
				updated.Add(1)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("merging batch: %w", err)
	}

	txCount := 0
	for _, agg := range aggregates {
		txCount += len(agg.Transactions)
	}

	s.logger.Info("batch merged",
		zap.Int("wallets", len(aggregates)),
		zap.Int("transactions", txCount),
		zap.Int64("created", created.Load()),
		zap.Int64("updated", updated.Load()))

	return &BatchResult{
		Wallets:      summaries,
		Table:        exporter.FormatTable(summaries),
		Transactions: txCount,
		Skipped:      batch.Skipped,
		Created:      int(created.Load()),
		Updated:      int(updated.Load()),
	}, nil
}

func (s *Service) mergeWallet(ctx context.Context, agg *models.WalletAggregate) (bool, models.WalletSummary, error) {
	unlock, err := s.locker.Lock(ctx, agg.WalletAddress)
	if err != nil {
		return false, models.WalletSummary{}, fmt.Errorf("locking wallet %s: %w", agg.WalletAddress, err)
	}
	defer unlock()

	var prior *models.Wallet
	existing, err := s.store.FindOne(ctx, agg.WalletAddress)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return false, models.WalletSummary{}, fmt.Errorf("loading wallet %s: %w", agg.WalletAddress, err)
	default:
		prior = &existing
	}

	next, summary := Merge(agg, prior)
	if err := s.store.Save(ctx, next); err != nil {
		return false, models.WalletSummary{}, fmt.Errorf("saving wallet %s: %w", agg.WalletAddress, err)
	}
	return prior == nil, summary, nil
}

// AddStaking records a manual staking submission for an existing wallet, both
// as its own entry and appended to the wallet's staking list.
func (s *Service) AddStaking(ctx context.Context, walletAddress string, submission models.ManualStaking) (models.Wallet, error) {
	unlock, err := s.locker.Lock(ctx, walletAddress)
	if err != nil {
		return models.Wallet{}, fmt.Errorf("locking wallet %s: %w", walletAddress, err)
	}
	defer unlock()

	wallet, err := s.findWallet(ctx, walletAddress)
	if err != nil {
		return models.Wallet{}, err
	}

	entry := models.StakingEntry{
		ID:            s.newID(),
		StakedAmount:  string(submission.StakedAmount),
		AprDaily:      string(submission.APR),
		LockDate:      string(submission.LockDate),
		MaxUnlockDate: string(submission.MaxUnlockDate),
		RewardsNow:    string(submission.RewardsNow),
		RewardsMud:    string(submission.RewardsMUD),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateStakingEntry(ctx, entry); err != nil {
		return models.Wallet{}, fmt.Errorf("saving staking entry: %w", err)
	}

	wallet.Staking = append(wallet.Staking, models.ManualItem(submission))
	if err := s.store.Save(ctx, wallet); err != nil {
		return models.Wallet{}, fmt.Errorf("saving wallet %s: %w", walletAddress, err)
	}

	s.logger.Info("manual staking added",
		zap.String("wallet", walletAddress),
		zap.String("entry_id", entry.ID))
	return wallet, nil
}

// WalletCategory returns the category, staking list and reward of a wallet.
func (s *Service) WalletCategory(ctx context.Context, walletAddress string) (WalletView, error) {
	wallet, err := s.findWallet(ctx, walletAddress)
	if err != nil {
		return WalletView{}, err
	}
	return WalletView{
		Category:     wallet.Category,
		Staking:      wallet.Staking,
		RewardAmount: wallet.RewardAmount,
	}, nil
}

func (s *Service) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	return s.store.FindAll(ctx)
}

func (s *Service) ListStakingEntries(ctx context.Context) ([]models.StakingEntry, error) {
	return s.store.FindAllStakingEntries(ctx)
}

func (s *Service) CategoryTotals(ctx context.Context) ([]models.CategoryTotal, error) {
	return s.store.FetchCategoryTotals(ctx)
}

func (s *Service) findWallet(ctx context.Context, walletAddress string) (models.Wallet, error) {
	wallet, err := s.store.FindOne(ctx, walletAddress)
	if errors.Is(err, database.ErrNotFound) {
		return models.Wallet{}, fmt.Errorf("%w: %s", ErrWalletNotFound, walletAddress)
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("loading wallet %s: %w", walletAddress, err)
	}
	return wallet, nil
}
