package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// MemoryStore is an in-memory wallet and staking store, safe for concurrent
// use. Data is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	wallets map[string]models.Wallet
	entries []models.StakingEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets: make(map[string]models.Wallet),
	}
}

func (s *MemoryStore) FindOne(ctx context.Context, walletAddress string) (models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[walletAddress]
	if !ok {
		return models.Wallet{}, ErrNotFound
	}
	// Return a copy to avoid external modifications
	return w.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, wallet models.Wallet) error {
	if wallet.WalletAddress == "" {
		return fmt.Errorf("wallet address is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := wallet.Clone()
	if prior, ok := s.wallets[wallet.WalletAddress]; ok && prior.Version > stored.Version {
		stored.Version = prior.Version
	}
	stored.Version++
	s.wallets[wallet.WalletAddress] = stored
	return nil
}

// FindAll returns every wallet sorted by address.
func (s *MemoryStore) FindAll(ctx context.Context) ([]models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletAddress < out[j].WalletAddress })
	return out, nil
}

func (s *MemoryStore) CreateStakingEntry(ctx context.Context, entry models.StakingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) FindAllStakingEntries(ctx context.Context) ([]models.StakingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.StakingEntry{}, s.entries...), nil
}

func (s *MemoryStore) FetchCategoryTotals(ctx context.Context) ([]models.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCategory := make(map[string]*models.CategoryTotal)
	for _, w := range s.wallets {
		key := string(w.Category)
		total, ok := byCategory[key]
		if !ok {
			total = &models.CategoryTotal{Category: key, RewardAmount: decimal.Zero, StakingAmount: decimal.Zero}
			byCategory[key] = total
		}
		total.Wallets++
		total.RewardAmount = total.RewardAmount.Add(w.RewardAmount)
		total.StakingAmount = total.StakingAmount.Add(w.StakingAmount)
	}

	out := make([]models.CategoryTotal, 0, len(byCategory))
	for _, total := range byCategory {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
