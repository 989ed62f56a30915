package service

import (
	"testing"

	"contract-gas-exporter/internal/domain/entity"
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

func tx(hash, to, contractAddress string) *entity.Transaction {
	return &entity.Transaction{Hash: hash, To: to, ContractAddress: contractAddress}
}

func TestMerge(t *testing.T) {
	r := NewTransactionReconciler(newTestLogger(t))

	t.Run("internal destination overrides matched record", func(t *testing.T) {
		normal := []*entity.Transaction{tx("0xabc", "0xbeef", "")}
		internal := []*entity.Transaction{tx("0xabc", "0xdead", "")}

		merged := r.Merge(normal, internal)

		require.Len(t, merged, 1)
		assert.Equal(t, "0xdead", merged[0].ContractAddress)
	})

	t.Run("unmatched records default to own destination", func(t *testing.T) {
		normal := []*entity.Transaction{
			tx("0x1", "0xaaa", ""),
			tx("0x2", "0xbbb", ""),
		}
		internal := []*entity.Transaction{tx("0x1", "0xccc", "")}

		merged := r.Merge(normal, internal)

		require.Len(t, merged, 2)
		assert.Equal(t, "0xccc", merged[0].ContractAddress)
		assert.Equal(t, "0xbbb", merged[1].ContractAddress)
	})

	t.Run("first matching internal record wins on duplicate hashes", func(t *testing.T) {
		normal := []*entity.Transaction{tx("0x1", "0xaaa", "")}
		internal := []*entity.Transaction{
			tx("0x1", "0xfirst", ""),
			tx("0x1", "0xsecond", ""),
		}

		merged := r.Merge(normal, internal)

		require.Len(t, merged, 1)
		assert.Equal(t, "0xfirst", merged[0].ContractAddress)
	})

	t.Run("normal list order is preserved", func(t *testing.T) {
		normal := []*entity.Transaction{
			tx("0x3", "0xc", ""),
			tx("0x1", "0xa", ""),
			tx("0x2", "0xb", ""),
		}
		internal := []*entity.Transaction{tx("0x1", "0xz", "")}

		merged := r.Merge(normal, internal)

		require.Len(t, merged, 3)
		assert.Equal(t, "0x3", merged[0].Hash)
		assert.Equal(t, "0x1", merged[1].Hash)
		assert.Equal(t, "0x2", merged[2].Hash)
	})

	t.Run("empty internal list leaves destinations intact", func(t *testing.T) {
		normal := []*entity.Transaction{tx("0x1", "0xaaa", "")}

		merged := r.Merge(normal, nil)

		require.Len(t, merged, 1)
		assert.Equal(t, "0xaaa", merged[0].ContractAddress)
	})
}

func TestContractAddresses(t *testing.T) {
	r := NewTransactionReconciler(newTestLogger(t))

	t.Run("dedupes case-insensitively in first-appearance order", func(t *testing.T) {
		txs := []*entity.Transaction{
			tx("0x1", "", "0xAAA"),
			tx("0x2", "", "0xbbb"),
			tx("0x3", "", "0xaaa"),
		}

		addresses := r.ContractAddresses(txs)

		assert.Equal(t, []string{"0xaaa", "0xbbb"}, addresses)
	})

	t.Run("is idempotent over its own output", func(t *testing.T) {
		txs := []*entity.Transaction{
			tx("0x1", "", "0xAbC"),
			tx("0x2", "", "0xabc"),
			tx("0x3", "", "0xDEF"),
		}

		first := r.ContractAddresses(txs)

		again := make([]*entity.Transaction, len(first))
		for i, addr := range first {
			again[i] = tx("", "", addr)
		}
		second := r.ContractAddresses(again)

		assert.Equal(t, first, second)
	})
}

func TestFilterNormal(t *testing.T) {
	r := NewTransactionReconciler(newTestLogger(t))
	address := "0xC0FFEE0000000000000000000000000000000000"

	raw := []*entity.RawTransaction{
		{Hash: "0x1", To: "0xc0ffee0000000000000000000000000000000000", IsError: "0"},
		{Hash: "0x2", To: "0xc0ffee0000000000000000000000000000000000", IsError: "1"},
		{Hash: "0x3", To: "0x1111111111111111111111111111111111111111", IsError: "0"},
		{Hash: "0x4", To: "", IsError: "0"},
	}

	txs := r.FilterNormal(raw, address)

	require.Len(t, txs, 1)
	assert.Equal(t, "0x1", txs[0].Hash)
}

func TestFilterDelegateCalls(t *testing.T) {
	r := NewTransactionReconciler(newTestLogger(t))

	raw := []*entity.RawTransaction{
		{Hash: "0x1", CallType: "delegatecall", IsError: "0"},
		{Hash: "0x2", CallType: "call", IsError: "0"},
		{Hash: "0x3", CallType: "create", IsError: "0"},
		{Hash: "0x4", CallType: "delegatecall", IsError: "1"},
	}

	txs := r.FilterDelegateCalls(raw)

	require.Len(t, txs, 1)
	assert.Equal(t, "0x1", txs[0].Hash)
}
