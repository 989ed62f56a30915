package blockchain

import (
	"testing"

	"contract-gas-exporter/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbiSource(t *testing.T) {
	t.Run("definition list without bound address is uniform", func(t *testing.T) {
		source, err := ParseAbiSource([]byte(transferABI))
		require.NoError(t, err)

		assert.Equal(t, entity.AbiSourceUniform, source.Kind)
		assert.JSONEq(t, transferABI, source.Uniform)
	})

	t.Run("single-element list without address field stays uniform", func(t *testing.T) {
		raw := `[{"name": "transfer", "type": "function", "inputs": []}]`

		source, err := ParseAbiSource([]byte(raw))
		require.NoError(t, err)

		assert.Equal(t, entity.AbiSourceUniform, source.Kind)
	})

	t.Run("address-abi pairs become a per-address source", func(t *testing.T) {
		raw := `[
			{"address": "0xAAA0000000000000000000000000000000000001", "abi": ` + transferABI + `},
			{"address": "0xBBB0000000000000000000000000000000000002", "abi": []}
		]`

		source, err := ParseAbiSource([]byte(raw))
		require.NoError(t, err)

		assert.Equal(t, entity.AbiSourcePerAddress, source.Kind)
		require.Len(t, source.PerAddress, 2)
		assert.Contains(t, source.PerAddress, "0xaaa0000000000000000000000000000000000001")
		assert.Contains(t, source.PerAddress, "0xbbb0000000000000000000000000000000000002")
	})

	t.Run("non-list input is an error", func(t *testing.T) {
		_, err := ParseAbiSource([]byte(`{"address": "0x1"}`))
		assert.Error(t, err)
	})
}
