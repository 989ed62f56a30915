package blockchain

import (
	"encoding/json"
	"fmt"
	"strings"

	"contract-gas-exporter/internal/domain/entity"
)

// boundAbi is one element of a per-address ABI source.
type boundAbi struct {
	Address string          `json:"address"`
	Abi     json.RawMessage `json:"abi"`
}

// ParseAbiSource classifies a user-supplied ABI source into its tagged
// variant. A list of {address, abi} pairs becomes a per-address source;
// any other definition list is uniform and applies to the queried
// address only. The shape is inspected exactly once, here.
func ParseAbiSource(raw []byte) (*entity.AbiSource, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("abi source is not a JSON list: %w", err)
	}

	if len(elements) > 0 && isBoundPair(elements[0]) {
		perAddress := make(map[string]string, len(elements))
		for i := range elements {
			var pair boundAbi
			if err := json.Unmarshal(elements[i], &pair); err != nil || pair.Address == "" {
				return nil, fmt.Errorf("abi source element %d is not an {address, abi} pair", i)
			}
			perAddress[strings.ToLower(pair.Address)] = string(pair.Abi)
		}
		return &entity.AbiSource{Kind: entity.AbiSourcePerAddress, PerAddress: perAddress}, nil
	}

	return &entity.AbiSource{Kind: entity.AbiSourceUniform, Uniform: string(raw)}, nil
}

func isBoundPair(element json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(element, &probe); err != nil {
		return false
	}
	_, hasAddress := probe["address"]
	_, hasAbi := probe["abi"]
	return hasAddress && hasAbi
}
