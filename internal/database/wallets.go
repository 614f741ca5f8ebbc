package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/shopspring/decimal"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// ClickHouseStore keeps wallets in a ReplacingMergeTree keyed by address, so
// every Save is an upsert; reads use FINAL to see the latest version only.
type ClickHouseStore struct {
	Conn clickhouse.Conn
	now  func() time.Time
}

func NewClickHouseStore(conn clickhouse.Conn) *ClickHouseStore {
	return &ClickHouseStore{Conn: conn, now: time.Now}
}

type walletRow struct {
	WalletAddress string          `ch:"wallet_address"`
	Category      string          `ch:"category"`
	Staking       string          `ch:"staking"`
	RewardAmount  decimal.Decimal `ch:"reward_amount"`
	StakingAmount decimal.Decimal `ch:"staking_amount"`
	Version       uint64          `ch:"version"`
}

func (r walletRow) toModel() (models.Wallet, error) {
	w := models.Wallet{
		WalletAddress: r.WalletAddress,
		Category:      models.Category(r.Category),
		RewardAmount:  r.RewardAmount,
		StakingAmount: r.StakingAmount,
		Version:       r.Version,
		Staking:       []models.StakingItem{},
	}
	if r.Staking != "" {
		if err := json.Unmarshal([]byte(r.Staking), &w.Staking); err != nil {
			return models.Wallet{}, fmt.Errorf("decoding staking of %s: %w", r.WalletAddress, err)
		}
	}
	return w, nil
}

// FindOne returns the wallet with the given address or ErrNotFound.
func (s *ClickHouseStore) FindOne(ctx context.Context, walletAddress string) (models.Wallet, error) {
	query := `
	SELECT wallet_address, category, staking, reward_amount, staking_amount, version
	FROM wallets FINAL
	WHERE wallet_address = ?
	LIMIT 1
	`

	var row walletRow
	err := s.Conn.QueryRow(ctx, query, walletAddress).Scan(
		&row.WalletAddress, &row.Category, &row.Staking, &row.RewardAmount, &row.StakingAmount, &row.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, ErrNotFound
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("error querying wallet %s: %w", walletAddress, err)
	}

	return row.toModel()
}

// Save writes a new version of the wallet. The version is always above the one
// the wallet was read at, whatever the local clock says.
func (s *ClickHouseStore) Save(ctx context.Context, wallet models.Wallet) error {
	staking := wallet.Staking
	if staking == nil {
		staking = []models.StakingItem{}
	}
	encoded, err := json.Marshal(staking)
	if err != nil {
		return fmt.Errorf("encoding staking of %s: %w", wallet.WalletAddress, err)
	}

	batch, err := s.Conn.PrepareBatch(ctx, "INSERT INTO wallets (wallet_address, category, staking, reward_amount, staking_amount, version)")
	if err != nil {
		return fmt.Errorf("error preparing ClickHouse batch: %w", err)
	}

	err = batch.Append(
		wallet.WalletAddress,
		string(wallet.Category),
		string(encoded),
		wallet.RewardAmount,
		wallet.StakingAmount,
		nextVersion(wallet.Version, s.now()),
	)
	if err != nil {
		return fmt.Errorf("error appending to ClickHouse batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("error sending batch to ClickHouse: %w", err)
	}
	return nil
}

// FindAll returns every wallet, in no particular order.
func (s *ClickHouseStore) FindAll(ctx context.Context) ([]models.Wallet, error) {
	query := `
	SELECT wallet_address, category, staking, reward_amount, staking_amount, version
	FROM wallets FINAL
	`

	var rows []walletRow
	if err := s.Conn.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error executing query '%s': %w", query, err)
	}

	wallets := make([]models.Wallet, 0, len(rows))
	for _, row := range rows {
		w, err := row.toModel()
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

// nextVersion orders writes of one wallet: the wall clock when it is ahead of
// the prior version, otherwise prior+1.
func nextVersion(prior uint64, now time.Time) uint64 {
	version := uint64(now.UnixNano())
	if version <= prior {
		return prior + 1
	}
	return version
}
