package service

import (
	"context"
	"fmt"
	"strings"

	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// emptyCodeSentinel is what the explorer returns for an address with no
// deployed bytecode, i.e. an externally-owned account.
const emptyCodeSentinel = "0x"

// AddressValidator checks that a queried address is a deployed
// contract. The result is advisory: callers decide whether to proceed.
type AddressValidator struct {
	explorer ExplorerClient
	logger   *logger.Logger
}

// NewAddressValidator creates a new address validator.
func NewAddressValidator(explorer ExplorerClient, logger *logger.Logger) *AddressValidator {
	return &AddressValidator{
		explorer: explorer,
		logger:   logger.WithComponent("address-validator"),
	}
}

// Validate reports whether the address carries contract code, with a
// human-readable reason. Lookup failures fail validation rather than
// returning an error.
func (v *AddressValidator) Validate(ctx context.Context, address string, network Network) (bool, string) {
	code, err := v.explorer.GetCode(ctx, address, network)
	if err != nil {
		v.logger.Error("Contract code lookup failed",
			zap.String("address", address),
			zap.Error(err))
		return false, fmt.Sprintf("code lookup failed: %v", err)
	}

	if code == "" || strings.ToLower(code) == emptyCodeSentinel {
		return false, fmt.Sprintf("address %s is an externally-owned account", address)
	}

	return true, "contract code present"
}
