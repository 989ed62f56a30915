package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"contract-gas-exporter/internal/domain/entity"
	"contract-gas-exporter/internal/domain/repository"
	"contract-gas-exporter/internal/infrastructure/config"
	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// ErrEmptyDataset is returned when there is nothing to export. It is
// signalled before any file is created.
var ErrEmptyDataset = errors.New("transaction set is empty, nothing to export")

// nullCell replaces numeric fields that are missing or unparseable.
const nullCell = "NULL"

// fixedColumns is the schema prefix shared by every export; the
// data-dependent feature columns follow it.
var fixedColumns = []string{
	"address", "blockNumber", "gasUsed", "gasPrice", "gas", "from",
	"input", "method", "types", "inputs", "names", "hash", "timeStamp",
	"properties",
}

// numericColumns are coerced at export, defaulting to NULL.
var numericColumns = map[string]bool{
	"blockNumber": true,
	"gasUsed":     true,
	"gasPrice":    true,
	"gas":         true,
	"timeStamp":   true,
}

// CSVExporter writes the transaction dataset as fixed-size CSV chunks,
// one file per chunk.
type CSVExporter struct {
	config *config.ExportConfig
	logger *logger.Logger
}

// NewCSVExporter creates a new CSV dataset exporter.
func NewCSVExporter(cfg *config.ExportConfig, logger *logger.Logger) repository.DatasetRepository {
	return &CSVExporter{
		config: cfg,
		logger: logger.WithComponent("csv-exporter"),
	}
}

// ExportTransactions serializes the dataset into chunk files named
// <address>_<chunkIndex>.csv under the configured output directory.
// Chunks are written concurrently to distinct paths and joined once at
// the end; the first failure is returned with its file path, without
// cleaning up files already written.
func (e *CSVExporter) ExportTransactions(ctx context.Context, address string, txs []*entity.Transaction) ([]string, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyDataset
	}

	chunkSize := e.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1000
	}

	features := featureUnion(txs)
	header := make([]string, 0, len(fixedColumns)+len(features))
	header = append(header, fixedColumns...)
	header = append(header, features...)

	if err := os.MkdirAll(e.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", e.config.OutputDir, err)
	}

	numChunks := (len(txs) + chunkSize - 1) / chunkSize
	paths := make([]string, numChunks)
	errCh := make(chan error, numChunks)

	var wg sync.WaitGroup
	for i := 0; i < numChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(txs) {
			end = len(txs)
		}

		path := filepath.Join(e.config.OutputDir, fmt.Sprintf("%s_%d.csv", address, i))
		paths[i] = path

		wg.Add(1)
		go func(path string, chunk []*entity.Transaction) {
			defer wg.Done()
			if err := e.writeChunk(path, header, features, chunk); err != nil {
				errCh <- err
			}
		}(path, txs[start:end])
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, err
	}

	e.logger.Info("Exported transaction dataset",
		zap.String("address", address),
		zap.Int("rows", len(txs)),
		zap.Int("chunks", numChunks),
		zap.String("output_dir", e.config.OutputDir))

	return paths, nil
}

// writeChunk serializes one chunk to its own file.
func (e *CSVExporter) writeChunk(path string, header, features []string, txs []*entity.Transaction) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunk file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	for _, tx := range txs {
		if err := w.Write(row(tx, features)); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("serialize chunk %s: %w", path, err)
	}

	return file.Close()
}

// featureUnion returns the de-duplicated union of every record's
// feature columns, in order of first appearance across the dataset.
func featureUnion(txs []*entity.Transaction) []string {
	seen := make(map[string]bool)
	var union []string
	for _, tx := range txs {
		for _, f := range tx.Features {
			if seen[f] {
				continue
			}
			seen[f] = true
			union = append(union, f)
		}
	}
	return union
}

// row renders one transaction in schema order.
func row(tx *entity.Transaction, features []string) []string {
	cells := []string{
		tx.ContractAddress,
		numeric(tx.BlockNumber),
		numeric(tx.GasUsed),
		numeric(tx.GasPrice),
		numeric(tx.Gas),
		tx.From,
		tx.Input,
		tx.Method,
		listCell(tx.ArgTypes),
		valuesCell(tx.ArgValues),
		listCell(tx.ArgNames),
		tx.Hash,
		numeric(tx.TimeStamp),
		propertiesCell(tx.Properties),
	}

	for _, f := range features {
		v, ok := tx.Property(f)
		if !ok {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, formatValue(v))
	}
	return cells
}

// numeric passes through a parseable numeric string and degrades
// anything else to NULL.
func numeric(s string) string {
	if s == "" {
		return nullCell
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return nullCell
	}
	return s
}

func listCell(values []string) string {
	if values == nil {
		return ""
	}
	return marshalCell(values)
}

func valuesCell(values []interface{}) string {
	if values == nil {
		return ""
	}
	return marshalCell(values)
}

func propertiesCell(properties map[string]interface{}) string {
	if properties == nil {
		return "{}"
	}
	return marshalCell(properties)
}

func marshalCell(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// formatValue renders a single decoded value for a feature column.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return fmt.Sprintf("0x%x", val)
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
