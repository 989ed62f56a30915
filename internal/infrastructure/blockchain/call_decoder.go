package blockchain

import (
	"errors"
	"fmt"
	"strings"

	"contract-gas-exporter/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// selectorLength is the 4-byte function selector prefixing call data.
const selectorLength = 4

// ABICallDecoder decodes raw call data against a parsed contract ABI.
type ABICallDecoder struct {
	abi abi.ABI
}

// NewCallDecoder parses an ABI definition list and builds a decoder
// over its callable methods. An ABI without any function entries is
// rejected, so a degraded empty ABI never yields a usable decoder.
func NewCallDecoder(abiJSON string) (*ABICallDecoder, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	if len(parsed.Methods) == 0 {
		return nil, errors.New("abi defines no callable methods")
	}
	return &ABICallDecoder{abi: parsed}, nil
}

// DecodeInput decodes a hex-encoded call input into its method name and
// index-aligned argument types, names and values.
func (d *ABICallDecoder) DecodeInput(input string) (*entity.DecodedInput, error) {
	data, err := hexutil.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("decode call data hex: %w", err)
	}
	if len(data) < selectorLength {
		return nil, fmt.Errorf("call data too short: %d bytes", len(data))
	}

	method, err := d.abi.MethodById(data[:selectorLength])
	if err != nil {
		return nil, fmt.Errorf("unknown method selector %x: %w", data[:selectorLength], err)
	}

	values, err := method.Inputs.UnpackValues(data[selectorLength:])
	if err != nil {
		return nil, fmt.Errorf("unpack %s arguments: %w", method.Name, err)
	}

	types := make([]string, len(method.Inputs))
	names := make([]string, len(method.Inputs))
	for i, arg := range method.Inputs {
		types[i] = arg.Type.String()
		names[i] = arg.Name
	}

	return &entity.DecodedInput{
		Method: method.Name,
		Types:  types,
		Names:  names,
		Values: values,
	}, nil
}
