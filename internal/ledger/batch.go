package ledger

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/runesbridge/staking-pipeline/internal/exporter"
	"github.com/runesbridge/staking-pipeline/internal/parser"
	"github.com/runesbridge/staking-pipeline/internal/storage"
)

// BatchJob runs one batch end to end: ingest the transaction file, merge it
// into the store and write the export artifact.
type BatchJob struct {
	Service    *Service
	Storage    storage.Storage
	IngestPath string
	ExportPath string
	SheetName  string
	Logger     *zap.Logger
}

// RunResult is a BatchResult plus where its export was written.
type RunResult struct {
	*BatchResult
	ExportPath string
}

// NewBatchJob creates a new BatchJob. store may be nil to skip the upload.
func NewBatchJob(service *Service, store storage.Storage, ingestPath, exportPath, sheetName string, logger *zap.Logger) *BatchJob {
	return &BatchJob{
		Service:    service,
		Storage:    store,
		IngestPath: ingestPath,
		ExportPath: exportPath,
		SheetName:  sheetName,
		Logger:     logger,
	}
}

// Run ingests, merges and exports. An unreadable ingest file aborts before any
// wallet is touched.
func (b *BatchJob) Run(ctx context.Context) (*RunResult, error) {
	rows, err := parser.ParseFile(b.IngestPath)
	if err != nil {
		return nil, fmt.Errorf("error reading transactions: %w", err)
	}

	result, err := b.Service.ProcessBatch(ctx, rows)
	if err != nil {
		return nil, err
	}

	exportPath, err := filepath.Abs(b.ExportPath)
	if err != nil {
		return nil, fmt.Errorf("error resolving export path: %w", err)
	}

	writer, err := exporter.ForFile(exportPath, b.SheetName)
	if err != nil {
		return nil, err
	}
	if err := writer.Write(exportPath, result.Table); err != nil {
		return nil, fmt.Errorf("error writing export: %w", err)
	}

	if b.Storage != nil {
		if err := b.storeExport(ctx, exportPath); err != nil {
			return nil, err
		}
	}

	b.Logger.Info("batch job completed",
		zap.String("ingest", b.IngestPath),
		zap.String("export", exportPath),
		zap.Int("wallets", len(result.Wallets)),
		zap.Int("skipped", result.Skipped))

	return &RunResult{BatchResult: result, ExportPath: exportPath}, nil
}

// storeExport uploads the export artifact under its base name.
func (b *BatchJob) storeExport(ctx context.Context, exportPath string) error {
	data, err := os.ReadFile(exportPath)
	if err != nil {
		return fmt.Errorf("error reading export for upload: %w", err)
	}

	objectName := filepath.Base(exportPath)
	if err := b.Storage.UploadFile(ctx, objectName, bytes.NewReader(data), exporter.ContentType(exportPath)); err != nil {
		return fmt.Errorf("error uploading export: %w", err)
	}
	return nil
}
