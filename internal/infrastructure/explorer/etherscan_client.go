package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"contract-gas-exporter/internal/domain/entity"
	"contract-gas-exporter/internal/domain/service"
	"contract-gas-exporter/internal/infrastructure/config"
	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// EtherscanClient implements the explorer collaborator against an
// Etherscan-compatible HTTP API.
type EtherscanClient struct {
	config     *config.EtherscanConfig
	httpClient *http.Client
	logger     *logger.Logger
}

// NewEtherscanClient creates a new Etherscan API client.
func NewEtherscanClient(cfg *config.EtherscanConfig, logger *logger.Logger) service.ExplorerClient {
	return &EtherscanClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger.WithComponent("etherscan-client"),
	}
}

// apiResponse is the account/contract module envelope. Result is kept
// raw because its shape depends on the action.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// proxyResponse is the JSON-RPC proxy module envelope.
type proxyResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const (
	statusOK            = "1"
	noTransactionsFound = "No transactions found"
)

// GetCode returns the deployed bytecode at an address via the proxy
// eth_getCode endpoint.
func (c *EtherscanClient) GetCode(ctx context.Context, address string, network service.Network) (string, error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getCode")
	params.Set("address", address)
	params.Set("tag", "latest")

	body, err := c.get(ctx, network, params)
	if err != nil {
		return "", err
	}

	var resp proxyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode eth_getCode response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("eth_getCode for %s: %s", address, resp.Error.Message)
	}
	return resp.Result, nil
}

// ListTransactions retrieves the normal transaction history of an
// address, oldest first.
func (c *EtherscanClient) ListTransactions(ctx context.Context, address string, network service.Network) ([]*entity.RawTransaction, error) {
	return c.listTransactions(ctx, "txlist", address, network)
}

// ListInternalTransactions retrieves the internal call history of an
// address, oldest first.
func (c *EtherscanClient) ListInternalTransactions(ctx context.Context, address string, network service.Network) ([]*entity.RawTransaction, error) {
	return c.listTransactions(ctx, "txlistinternal", address, network)
}

func (c *EtherscanClient) listTransactions(ctx context.Context, action, address string, network service.Network) ([]*entity.RawTransaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("sort", "asc")

	resp, err := c.getEnvelope(ctx, network, params)
	if err != nil {
		return nil, err
	}
	if resp.Status != statusOK {
		// An empty history is reported as a non-OK status, not an
		// error condition.
		if resp.Message == noTransactionsFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%s for %s: %s", action, address, resp.Message)
	}

	var txs []*entity.RawTransaction
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", action, err)
	}

	c.logger.Debug("Fetched transaction list",
		zap.String("action", action),
		zap.String("address", address),
		zap.Int("count", len(txs)))

	return txs, nil
}

// GetABI fetches the verified contract ABI. A non-OK status (for
// example an unverified contract) is returned as an error for the
// resolver to degrade.
func (c *EtherscanClient) GetABI(ctx context.Context, network service.Network, address string) (string, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getabi")
	params.Set("address", address)

	resp, err := c.getEnvelope(ctx, network, params)
	if err != nil {
		return "", err
	}
	if resp.Status != statusOK {
		return "", fmt.Errorf("getabi for %s: %s", address, resp.Message)
	}

	var abiJSON string
	if err := json.Unmarshal(resp.Result, &abiJSON); err != nil {
		return "", fmt.Errorf("decode getabi result: %w", err)
	}
	return abiJSON, nil
}

// creationRecord is one entry of the contract-creation lookup result.
type creationRecord struct {
	TimeStamp string `json:"timeStamp"`
}

// GetContractCreation resolves the creation timestamp of a contract.
// Returns 0 when no creation record exists.
func (c *EtherscanClient) GetContractCreation(ctx context.Context, network service.Network, address string) (int64, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getcontractcreation")
	params.Set("contractaddresses", address)

	resp, err := c.getEnvelope(ctx, network, params)
	if err != nil {
		return 0, err
	}

	var records []creationRecord
	if err := json.Unmarshal(resp.Result, &records); err != nil || len(records) == 0 {
		return 0, nil
	}

	ts, err := strconv.ParseInt(records[0].TimeStamp, 10, 64)
	if err != nil {
		return 0, nil
	}
	return ts, nil
}

func (c *EtherscanClient) getEnvelope(ctx context.Context, network service.Network, params url.Values) (*apiResponse, error) {
	body, err := c.get(ctx, network, params)
	if err != nil {
		return nil, err
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode explorer response: %w", err)
	}
	return &resp, nil
}

func (c *EtherscanClient) get(ctx context.Context, network service.Network, params url.Values) ([]byte, error) {
	if c.config.APIKey != "" {
		params.Set("apikey", c.config.APIKey)
	}

	endpoint := c.baseURL(network) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned HTTP %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read explorer response: %w", err)
	}
	return buf, nil
}

func (c *EtherscanClient) baseURL(network service.Network) string {
	if network == service.NetworkSepolia {
		return c.config.SepoliaURL
	}
	return c.config.MainnetURL
}
