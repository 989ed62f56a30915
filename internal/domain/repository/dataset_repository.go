package repository

import (
	"context"

	"contract-gas-exporter/internal/domain/entity"
)

// DatasetRepository defines the interface for persisting the final
// transaction dataset.
type DatasetRepository interface {
	// ExportTransactions writes the dataset for the given queried
	// address and returns the paths of the files produced. An empty
	// dataset is an error, signalled before anything is written.
	ExportTransactions(ctx context.Context, address string, txs []*entity.Transaction) ([]string, error)
}
