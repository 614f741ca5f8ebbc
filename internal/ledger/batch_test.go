package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runesbridge/staking-pipeline/internal/database"
	"github.com/runesbridge/staking-pipeline/internal/parser"
)

type memoryStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
	err          error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryStorage) UploadFile(ctx context.Context, objectName string, reader io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[objectName] = data
	m.contentTypes[objectName] = contentType
	return nil
}

const ingestCSV = `id,type,wallet,token,note,date,amount
1,sell,wallet-a,RUNE,,2024-05-01 10:00:00,100
2,sell,wallet-b,RUNE,,2024-07-01 10:00:00,40
3,sell,wallet-a,RUNE,,2024-08-02 10:00:00,20
4,sell,,RUNE,,2024-08-02 10:00:00,20
`

func writeIngest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(ingestCSV), 0o644))
	return path
}

func TestBatchJobRun(t *testing.T) {
	dir := t.TempDir()
	ingest := writeIngest(t, dir)
	export := filepath.Join(dir, "out.csv")

	store := database.NewMemoryStore()
	uploads := newMemoryStorage()
	job := NewBatchJob(newTestService(store), uploads, ingest, export, "Wallet Staking & Rewards", zap.NewNop())

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, export, result.ExportPath)
	assert.Len(t, result.Wallets, 2)
	assert.Equal(t, 1, result.Skipped)

	f, err := os.Open(export)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Wallet Address", "Total Staking Amount", "Total Reward Amount", "Category"},
		{"wallet-a", "60.00", "120.00", "purchasedAfterJuly22"},
		{"wallet-b", "10.00", "40.00", "purchasedBeforeAugust1AndSoldAfterJune17"},
	}, records)

	uploaded, ok := uploads.objects["out.csv"]
	require.True(t, ok)
	onDisk, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Equal(t, onDisk, uploaded)
	assert.Equal(t, "text/csv", uploads.contentTypes["out.csv"])

	wallet, err := store.FindOne(context.Background(), "wallet-a")
	require.NoError(t, err)
	assert.Equal(t, "120", wallet.RewardAmount.String())
}

func TestBatchJobRunXLSXExport(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "wallets_staking_rewards.xlsx")

	job := NewBatchJob(newTestService(database.NewMemoryStore()), nil, writeIngest(t, dir), export, "Wallet Staking & Rewards", zap.NewNop())

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	rows, err := parser.ParseFile(export)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "wallet-a", rows[1][0])
}

func TestBatchJobRunMissingIngest(t *testing.T) {
	dir := t.TempDir()
	store := database.NewMemoryStore()
	job := NewBatchJob(newTestService(store), nil, filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"), "", zap.NewNop())

	_, err := job.Run(context.Background())
	require.Error(t, err)

	wallets, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, wallets)
	assert.NoFileExists(t, filepath.Join(dir, "out.csv"))
}

func TestBatchJobRunUploadFailure(t *testing.T) {
	dir := t.TempDir()
	uploads := newMemoryStorage()
	uploads.err = errors.New("bucket unavailable")
	job := NewBatchJob(newTestService(database.NewMemoryStore()), uploads, writeIngest(t, dir), filepath.Join(dir, "out.csv"), "", zap.NewNop())

	_, err := job.Run(context.Background())
	require.ErrorIs(t, err, uploads.err)
}
