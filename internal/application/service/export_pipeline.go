package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"contract-gas-exporter/internal/domain/entity"
	"contract-gas-exporter/internal/domain/repository"
	"contract-gas-exporter/internal/domain/service"
	"contract-gas-exporter/internal/infrastructure/blockchain"
	"contract-gas-exporter/internal/infrastructure/config"
	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// ExportPipelineService implements the ExportPipeline interface: it
// reconciles the contract's transaction history, decodes call inputs,
// derives features and exports the dataset as CSV chunks.
type ExportPipelineService struct {
	cfg        *config.Config
	explorer   service.ExplorerClient
	validator  *service.AddressValidator
	reconciler *service.TransactionReconciler
	resolver   *blockchain.AbiResolver
	features   service.FeatureDeriver
	dataset    repository.DatasetRepository
	logger     *logger.Logger
}

// NewExportPipeline creates a new export pipeline service.
func NewExportPipeline(
	cfg *config.Config,
	explorer service.ExplorerClient,
	validator *service.AddressValidator,
	reconciler *service.TransactionReconciler,
	resolver *blockchain.AbiResolver,
	features service.FeatureDeriver,
	dataset repository.DatasetRepository,
	logger *logger.Logger,
) service.ExportPipeline {
	return &ExportPipelineService{
		cfg:        cfg,
		explorer:   explorer,
		validator:  validator,
		reconciler: reconciler,
		resolver:   resolver,
		features:   features,
		dataset:    dataset,
		logger:     logger.WithComponent("export-pipeline"),
	}
}

// Run executes one full pipeline pass for the configured address.
func (s *ExportPipelineService) Run(ctx context.Context) ([]string, error) {
	address := s.cfg.Query.Address
	network := service.Network(s.cfg.Query.Network)

	if address == "" {
		return nil, fmt.Errorf("no query address configured")
	}

	if ok, reason := s.validator.Validate(ctx, address, network); !ok {
		return nil, fmt.Errorf("address validation failed: %s", reason)
	}

	normal, internal, err := s.fetchHistory(ctx, address, network)
	if err != nil {
		return nil, err
	}

	merged := s.reconciler.Merge(normal, internal)
	addresses := s.reconciler.ContractAddresses(merged)

	source, err := s.loadAbiSource()
	if err != nil {
		return nil, err
	}

	entries := s.resolver.Resolve(ctx, address, addresses, source, network)

	s.bindFeatures(merged, entries)

	if s.cfg.Query.Trace {
		s.enrichOrganizations(ctx, merged, network)
	}

	files, err := s.dataset.ExportTransactions(ctx, strings.ToLower(address), merged)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return files, nil
}

// fetchHistory retrieves and filters the normal and internal call
// streams for the queried address.
func (s *ExportPipelineService) fetchHistory(ctx context.Context, address string, network service.Network) ([]*entity.Transaction, []*entity.Transaction, error) {
	rawNormal, err := s.explorer.ListTransactions(ctx, address, network)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch normal transactions: %w", err)
	}
	rawInternal, err := s.explorer.ListInternalTransactions(ctx, address, network)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch internal transactions: %w", err)
	}

	normal := s.reconciler.FilterNormal(rawNormal, address)
	internal := s.reconciler.FilterDelegateCalls(rawInternal)

	s.logger.Info("Fetched transaction history",
		zap.String("address", address),
		zap.Int("normal", len(normal)),
		zap.Int("internal", len(internal)))

	return normal, internal, nil
}

// loadAbiSource parses the optional user-supplied ABI source from the
// inline config value or a file.
func (s *ExportPipelineService) loadAbiSource() (*entity.AbiSource, error) {
	if s.cfg.Query.AbiJSON != "" {
		source, err := blockchain.ParseAbiSource([]byte(s.cfg.Query.AbiJSON))
		if err != nil {
			return nil, fmt.Errorf("parse inline abi source: %w", err)
		}
		return source, nil
	}
	if s.cfg.Query.AbiFile != "" {
		raw, err := os.ReadFile(s.cfg.Query.AbiFile)
		if err != nil {
			return nil, fmt.Errorf("read abi file %s: %w", s.cfg.Query.AbiFile, err)
		}
		source, err := blockchain.ParseAbiSource(raw)
		if err != nil {
			return nil, fmt.Errorf("parse abi file %s: %w", s.cfg.Query.AbiFile, err)
		}
		return source, nil
	}
	return nil, nil
}

// bindFeatures decodes each transaction's input against its resolved
// decoder, flattens the arguments into the property map and attaches
// the derived feature columns. Transactions without a usable decoder
// keep their raw input and contribute no features.
func (s *ExportPipelineService) bindFeatures(txs []*entity.Transaction, entries map[string]*entity.AbiEntry) {
	decoded := 0
	for _, tx := range txs {
		entry, ok := entries[tx.NormalizedContractAddress()]
		if !ok || entry.Decoder == nil {
			continue
		}

		input, err := entry.Decoder.DecodeInput(tx.Input)
		if err != nil {
			s.logger.Debug("Call input decode failed",
				zap.String("hash", tx.Hash),
				zap.String("address", tx.ContractAddress),
				zap.Error(err))
			continue
		}

		tx.Method = input.Method
		tx.ArgTypes = input.Types
		tx.ArgNames = input.Names
		tx.ArgValues = input.Values

		// Left fold, low to high index: a later duplicate argument
		// name overwrites the earlier one.
		for i, name := range input.Names {
			tx.SetProperty(entity.ArgPropertyKey(name), input.Values[i])
		}

		tx.Features = s.features.DeriveFeatures(input, tx)
		decoded++
	}

	s.logger.Info("Decoded call inputs",
		zap.Int("transactions", len(txs)),
		zap.Int("decoded", decoded))
}

// enrichOrganizations attaches a creation timestamp to every
// transaction referencing an organization contract. One explorer call
// per distinct organization, resolved sequentially in order of first
// appearance.
func (s *ExportPipelineService) enrichOrganizations(ctx context.Context, txs []*entity.Transaction, network service.Network) {
	seen := make(map[string]bool)
	var organizations []string
	for _, tx := range txs {
		org, ok := organizationAddress(tx)
		if !ok || seen[org] {
			continue
		}
		seen[org] = true
		organizations = append(organizations, org)
	}

	timestamps := make(map[string]int64, len(organizations))
	for _, org := range organizations {
		ts, err := s.explorer.GetContractCreation(ctx, network, org)
		if err != nil {
			s.logger.Error("Organization creation lookup failed",
				zap.String("organization", org),
				zap.Error(err))
			ts = 0
		}
		timestamps[org] = ts
	}

	for _, tx := range txs {
		org, ok := organizationAddress(tx)
		if !ok {
			continue
		}
		tx.SetProperty(entity.OrganizationCreatedProperty, timestamps[org])
		if !tx.HasFeature(entity.OrganizationCreatedProperty) {
			tx.Features = append(tx.Features, entity.OrganizationCreatedProperty)
		}
	}

	s.logger.Info("Enriched organization timestamps",
		zap.Int("organizations", len(organizations)))
}

// organizationAddress extracts the lower-cased organization address a
// transaction references, if any.
func organizationAddress(tx *entity.Transaction) (string, bool) {
	v, ok := tx.Property(entity.OrganizationProperty)
	if !ok {
		return "", false
	}
	return strings.ToLower(fmt.Sprintf("%v", v)), true
}
