package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/runesbridge/staking-pipeline/internal/config"
)

// ErrNotFound is returned by stores when a wallet address has no record.
var ErrNotFound = errors.New("record not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS wallets (
		wallet_address String,
		category LowCardinality(String),
		staking String,
		reward_amount Decimal(38, 18),
		staking_amount Decimal(38, 18),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	ORDER BY wallet_address`,
	`CREATE TABLE IF NOT EXISTS staking_entries (
		id String,
		staked_amount String,
		apr_daily String,
		lock_date String,
		max_unlock_date String,
		rewards_now String,
		rewards_mud String,
		created_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	ORDER BY (created_at, id)`,
}

// NewClickHouseConnection opens and pings a ClickHouse connection.
func NewClickHouseConnection(ctx context.Context, cfg config.ClickHouseConfig, logger *zap.Logger) (clickhouse.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ClickHouse ping failed: %w", err)
	}

	logger.Info("Successfully connected to ClickHouse.", zap.String("addr", cfg.Addr))
	return conn, nil
}

// Migrate creates the tables used by the stores.
func Migrate(ctx context.Context, conn clickhouse.Conn) error {
	for _, ddl := range schema {
		if err := conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
