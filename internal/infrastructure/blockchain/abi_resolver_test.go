package blockchain

import (
	"context"
	"sync/atomic"
	"testing"

	"contract-gas-exporter/internal/domain/entity"
	"contract-gas-exporter/internal/domain/service"
	"contract-gas-exporter/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error", "production")
	require.NoError(t, err)
	return log
}

// mockExplorer serves canned ABIs per address and counts fetches.
type mockExplorer struct {
	abis    map[string]string
	errs    map[string]error
	fetches int64
}

func (m *mockExplorer) GetABI(ctx context.Context, network service.Network, address string) (string, error) {
	atomic.AddInt64(&m.fetches, 1)
	if err, ok := m.errs[address]; ok {
		return "", err
	}
	return m.abis[address], nil
}

func (m *mockExplorer) GetCode(ctx context.Context, address string, network service.Network) (string, error) {
	return "", nil
}

func (m *mockExplorer) ListTransactions(ctx context.Context, address string, network service.Network) ([]*entity.RawTransaction, error) {
	return nil, nil
}

func (m *mockExplorer) ListInternalTransactions(ctx context.Context, address string, network service.Network) ([]*entity.RawTransaction, error) {
	return nil, nil
}

func (m *mockExplorer) GetContractCreation(ctx context.Context, network service.Network, address string) (int64, error) {
	return 0, nil
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	queried := "0xaaa0000000000000000000000000000000000001"
	other := "0xbbb0000000000000000000000000000000000002"

	t.Run("one entry per distinct address", func(t *testing.T) {
		explorer := &mockExplorer{abis: map[string]string{
			queried: transferABI,
			other:   transferABI,
		}}
		r := NewAbiResolver(explorer, newTestLogger(t))

		entries := r.Resolve(ctx, queried, []string{queried, other}, nil, service.NetworkMainnet)

		require.Len(t, entries, 2)
		assert.NotNil(t, entries[queried].Decoder)
		assert.NotNil(t, entries[other].Decoder)
		assert.EqualValues(t, 2, explorer.fetches)
	})

	t.Run("uniform source covers the queried address without a fetch", func(t *testing.T) {
		explorer := &mockExplorer{}
		r := NewAbiResolver(explorer, newTestLogger(t))
		source := &entity.AbiSource{Kind: entity.AbiSourceUniform, Uniform: transferABI}

		entries := r.Resolve(ctx, queried, []string{queried}, source, service.NetworkMainnet)

		require.Len(t, entries, 1)
		assert.NotNil(t, entries[queried].Decoder)
		assert.EqualValues(t, 0, explorer.fetches)
	})

	t.Run("uniform source binds the queried address only", func(t *testing.T) {
		explorer := &mockExplorer{abis: map[string]string{other: transferABI}}
		r := NewAbiResolver(explorer, newTestLogger(t))
		source := &entity.AbiSource{Kind: entity.AbiSourceUniform, Uniform: transferABI}

		entries := r.Resolve(ctx, queried, []string{queried, other}, source, service.NetworkMainnet)

		require.Len(t, entries, 2)
		assert.EqualValues(t, 1, explorer.fetches)
	})

	t.Run("per-address source binds each pair to its address", func(t *testing.T) {
		explorer := &mockExplorer{}
		r := NewAbiResolver(explorer, newTestLogger(t))
		source := &entity.AbiSource{
			Kind: entity.AbiSourcePerAddress,
			PerAddress: map[string]string{
				queried: transferABI,
				other:   transferABI,
			},
		}

		entries := r.Resolve(ctx, queried, []string{queried, other}, source, service.NetworkMainnet)

		require.Len(t, entries, 2)
		assert.EqualValues(t, 0, explorer.fetches)
	})

	t.Run("decoder failure for one address does not affect another", func(t *testing.T) {
		explorer := &mockExplorer{abis: map[string]string{
			queried: "broken abi text",
			other:   transferABI,
		}}
		r := NewAbiResolver(explorer, newTestLogger(t))

		entries := r.Resolve(ctx, queried, []string{queried, other}, nil, service.NetworkMainnet)

		require.Len(t, entries, 2)
		assert.Nil(t, entries[queried].Decoder)
		assert.Equal(t, "broken abi text", entries[queried].RawABI)
		assert.NotNil(t, entries[other].Decoder)
	})

	t.Run("fetch failure degrades to an empty abi", func(t *testing.T) {
		explorer := &mockExplorer{
			abis: map[string]string{other: transferABI},
			errs: map[string]error{queried: assert.AnError},
		}
		r := NewAbiResolver(explorer, newTestLogger(t))

		entries := r.Resolve(ctx, queried, []string{queried, other}, nil, service.NetworkMainnet)

		require.Len(t, entries, 2)
		assert.Equal(t, entity.EmptyABI, entries[queried].RawABI)
		assert.Nil(t, entries[queried].Decoder)
		assert.NotNil(t, entries[other].Decoder)
	})
}
