package service

import (
	"strings"

	"contract-gas-exporter/internal/domain/entity"
	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/zap"
)

const (
	// noErrorSentinel marks a successful call in explorer records.
	noErrorSentinel = "0"
	// delegateCallType is the only internal call subtype retained:
	// delegate calls execute in the storage context the analysis
	// targets.
	delegateCallType = "delegatecall"
)

// TransactionReconciler unifies the normal and internal call streams
// into one canonical record per call and derives the set of contract
// addresses they reference.
type TransactionReconciler struct {
	logger *logger.Logger
}

// NewTransactionReconciler creates a new transaction reconciler.
func NewTransactionReconciler(logger *logger.Logger) *TransactionReconciler {
	return &TransactionReconciler{
		logger: logger.WithComponent("reconciler"),
	}
}

// FilterNormal converts raw normal records to canonical transactions,
// keeping only successful calls whose destination is the queried
// address. Records where the address appears only as sender are
// dropped.
func (r *TransactionReconciler) FilterNormal(raw []*entity.RawTransaction, address string) []*entity.Transaction {
	txs := make([]*entity.Transaction, 0, len(raw))
	for _, rec := range raw {
		if rec.IsError != noErrorSentinel {
			continue
		}
		if rec.To == "" || !strings.EqualFold(rec.To, address) {
			continue
		}
		txs = append(txs, entity.NewTransaction(rec))
	}
	return txs
}

// FilterDelegateCalls converts raw internal records to canonical
// transactions, keeping only successful delegate calls.
func (r *TransactionReconciler) FilterDelegateCalls(raw []*entity.RawTransaction) []*entity.Transaction {
	txs := make([]*entity.Transaction, 0, len(raw))
	for _, rec := range raw {
		if rec.IsError != noErrorSentinel {
			continue
		}
		if rec.CallType != delegateCallType {
			continue
		}
		txs = append(txs, entity.NewTransaction(rec))
	}
	return txs
}

// Merge overlays the internal call stream onto the normal stream. For
// each internal record, the first normal record sharing its hash gets
// its ContractAddress overwritten with the internal destination; later
// internal records for an already-claimed hash are ignored. Records
// left without a contract address default to their own destination.
// The relative order of the normal list is preserved.
func (r *TransactionReconciler) Merge(normal, internal []*entity.Transaction) []*entity.Transaction {
	merged := make([]*entity.Transaction, len(normal))
	copy(merged, normal)

	claimed := make(map[string]bool, len(internal))
	for _, in := range internal {
		if claimed[in.Hash] {
			continue
		}
		for _, tx := range merged {
			if tx.Hash == in.Hash {
				tx.ContractAddress = in.To
				claimed[in.Hash] = true
				break
			}
		}
	}

	for _, tx := range merged {
		if tx.ContractAddress == "" {
			tx.ContractAddress = tx.To
		}
	}

	r.logger.Info("Merged transaction streams",
		zap.Int("normal", len(normal)),
		zap.Int("internal", len(internal)),
		zap.Int("overlaid", len(claimed)))

	return merged
}

// ContractAddresses returns the distinct lower-cased contract addresses
// referenced by the merged transactions, in order of first appearance.
// Every input record must already carry a non-empty ContractAddress.
func (r *TransactionReconciler) ContractAddresses(txs []*entity.Transaction) []string {
	seen := make(map[string]bool, len(txs))
	addresses := make([]string, 0, len(txs))
	for _, tx := range txs {
		addr := tx.NormalizedContractAddress()
		if seen[addr] {
			continue
		}
		seen[addr] = true
		addresses = append(addresses, addr)
	}
	return addresses
}
