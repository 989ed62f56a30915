package service

import "context"

// ExportPipeline runs the full reconciliation, decoding and export
// flow for the configured contract address.
type ExportPipeline interface {
	// Run executes one pipeline pass and returns the paths of the CSV
	// files written.
	Run(ctx context.Context) ([]string, error)
}
