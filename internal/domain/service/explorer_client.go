package service

import (
	"context"

	"contract-gas-exporter/internal/domain/entity"
)

// Network selects which explorer deployment a request targets.
type Network string

const (
	// NetworkMainnet targets the production chain explorer.
	NetworkMainnet Network = "mainnet"
	// NetworkSepolia targets the Sepolia test network explorer.
	NetworkSepolia Network = "sepolia"
)

// ExplorerClient defines the interface for the blockchain explorer API.
type ExplorerClient interface {
	// GetCode returns the deployed bytecode at an address. The "0x"
	// sentinel marks an externally-owned account.
	GetCode(ctx context.Context, address string, network Network) (string, error)

	// ListTransactions retrieves the normal transaction history of an
	// address. An empty history is not an error.
	ListTransactions(ctx context.Context, address string, network Network) ([]*entity.RawTransaction, error)

	// ListInternalTransactions retrieves the internal call history of
	// an address.
	ListInternalTransactions(ctx context.Context, address string, network Network) ([]*entity.RawTransaction, error)

	// GetABI fetches the verified ABI definition list for a contract.
	// A non-OK explorer status is returned as an error.
	GetABI(ctx context.Context, network Network, address string) (string, error)

	// GetContractCreation resolves the creation timestamp of a
	// contract, returning 0 when no creation record exists.
	GetContractCreation(ctx context.Context, network Network, address string) (int64, error)
}
