package entity

import "strings"

// RawTransaction represents a transaction record as returned by the
// explorer's account endpoints. All numeric fields arrive as decimal
// strings and are kept that way until export.
type RawTransaction struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Input           string `json:"input"`
	Gas             string `json:"gas"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	IsError         string `json:"isError"`
	CallType        string `json:"type"`
}

// Transaction is the canonical merged record, one per call. The decoded
// fields stay zero-valued for transactions whose contract has no usable
// decoder.
type Transaction struct {
	Hash            string
	From            string
	To              string
	ContractAddress string
	Input           string
	Gas             string
	GasUsed         string
	GasPrice        string
	BlockNumber     string
	TimeStamp       string
	CallType        string

	Method     string
	ArgTypes   []string
	ArgNames   []string
	ArgValues  []interface{}
	Properties map[string]interface{}
	Features   []string
}

// NewTransaction builds a canonical record from a raw explorer record.
func NewTransaction(raw *RawTransaction) *Transaction {
	return &Transaction{
		Hash:            raw.Hash,
		From:            raw.From,
		To:              raw.To,
		ContractAddress: raw.ContractAddress,
		Input:           raw.Input,
		Gas:             raw.Gas,
		GasUsed:         raw.GasUsed,
		GasPrice:        raw.GasPrice,
		BlockNumber:     raw.BlockNumber,
		TimeStamp:       raw.TimeStamp,
		CallType:        raw.CallType,
	}
}

// Property returns a named property value and whether it is present.
func (t *Transaction) Property(name string) (interface{}, bool) {
	if t.Properties == nil {
		return nil, false
	}
	v, ok := t.Properties[name]
	return v, ok
}

// SetProperty stores a property value, allocating the map on first use.
func (t *Transaction) SetProperty(name string, value interface{}) {
	if t.Properties == nil {
		t.Properties = make(map[string]interface{})
	}
	t.Properties[name] = value
}

// HasFeature reports whether the record already carries the named
// feature column.
func (t *Transaction) HasFeature(name string) bool {
	for _, f := range t.Features {
		if f == name {
			return true
		}
	}
	return false
}

// NormalizedContractAddress returns the lower-cased effective contract
// address of the record.
func (t *Transaction) NormalizedContractAddress() string {
	return strings.ToLower(t.ContractAddress)
}
