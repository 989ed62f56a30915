package blockchain

import (
	"context"
	"strings"
	"sync"

	"contract-gas-exporter/internal/domain/entity"
	"contract-gas-exporter/internal/domain/service"
	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// AbiResolver populates one AbiEntry per distinct contract address,
// with at most one resolution attempt each.
type AbiResolver struct {
	explorer service.ExplorerClient
	logger   *logger.Logger
}

// NewAbiResolver creates a new ABI resolver.
func NewAbiResolver(explorer service.ExplorerClient, logger *logger.Logger) *AbiResolver {
	return &AbiResolver{
		explorer: explorer,
		logger:   logger.WithComponent("abi-resolver"),
	}
}

// Resolve builds the ABI entry map for the given address set. A
// user-supplied source is consulted first: a uniform source binds to
// the queried address only, a per-address source to its own addresses.
// Every remaining address is fetched from the explorer concurrently.
// Failures degrade the affected address (empty ABI or nil decoder) and
// never abort the batch; the returned map always holds one entry per
// input address covered by a source plus every fetched address.
func (r *AbiResolver) Resolve(ctx context.Context, queriedAddress string, addresses []string, source *entity.AbiSource, network service.Network) map[string]*entity.AbiEntry {
	entries := make(map[string]*entity.AbiEntry, len(addresses))
	queried := strings.ToLower(queriedAddress)

	if source != nil {
		switch source.Kind {
		case entity.AbiSourceUniform:
			entries[queried] = r.buildEntry(queried, source.Uniform)
		case entity.AbiSourcePerAddress:
			for addr, abiJSON := range source.PerAddress {
				entries[addr] = r.buildEntry(addr, abiJSON)
			}
		}
	}

	var remaining []string
	for _, addr := range addresses {
		if _, ok := entries[addr]; !ok {
			remaining = append(remaining, addr)
		}
	}

	// Concurrent fan-out: per-address writes are disjoint, collected
	// through a channel and joined before the map is read.
	results := make(chan *entity.AbiEntry, len(remaining))
	var wg sync.WaitGroup
	for _, addr := range remaining {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			results <- r.fetchEntry(ctx, addr, network)
		}(addr)
	}
	wg.Wait()
	close(results)

	for entry := range results {
		entries[entry.Address] = entry
	}

	r.logger.Info("Resolved contract ABIs",
		zap.Int("addresses", len(addresses)),
		zap.Int("fetched", len(remaining)),
		zap.Int("entries", len(entries)))

	return entries
}

// fetchEntry resolves one address from the explorer. A fetch failure
// degrades the ABI to the empty definition list.
func (r *AbiResolver) fetchEntry(ctx context.Context, address string, network service.Network) *entity.AbiEntry {
	abiJSON, err := r.explorer.GetABI(ctx, network, address)
	if err != nil {
		r.logger.Error("ABI fetch failed, storing empty ABI",
			zap.String("address", address),
			zap.Error(err))
		abiJSON = entity.EmptyABI
	}
	return r.buildEntry(address, abiJSON)
}

// buildEntry attempts decoder construction inside an isolated failure
// boundary: a construction failure leaves the entry with its ABI text
// but no decoder.
func (r *AbiResolver) buildEntry(address, abiJSON string) *entity.AbiEntry {
	entry := &entity.AbiEntry{
		Address: strings.ToLower(address),
		RawABI:  abiJSON,
	}

	decoder, err := NewCallDecoder(abiJSON)
	if err != nil {
		r.logger.Warn("Decoder construction failed, transactions for this address stay undecoded",
			zap.String("address", entry.Address),
			zap.Error(err))
		return entry
	}

	entry.Decoder = decoder
	return entry
}
