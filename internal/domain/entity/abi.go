package entity

// DecodedInput is the structured form of a transaction's call data
// after decoding against the contract's ABI. Types, Names and Values
// are index-aligned.
type DecodedInput struct {
	Method string
	Types  []string
	Names  []string
	Values []interface{}
}

// CallDecoder decodes raw hex call data into a structured input.
// Implementations are built per ABI; construction may fail, in which
// case the owning AbiEntry carries a nil decoder.
type CallDecoder interface {
	DecodeInput(input string) (*DecodedInput, error)
}

// ArgPropertyKey returns the property-map key a decoded argument is
// flattened under.
func ArgPropertyKey(name string) string {
	return "arg_" + name
}

const (
	// OrganizationProperty is the decoded-argument key that references
	// an organization contract.
	OrganizationProperty = "arg__organization"
	// OrganizationCreatedProperty carries the creation timestamp
	// attached during trace enrichment.
	OrganizationCreatedProperty = "org_created"
)

// AbiEntry holds the resolution outcome for one contract address.
// Created once per address per run and never mutated afterwards. A nil
// Decoder means construction failed or the ABI is empty; transactions
// for that address stay undecoded.
type AbiEntry struct {
	Address string
	RawABI  string
	Decoder CallDecoder
}

// EmptyABI is the degraded ABI stored when a fetch fails or the
// explorer reports a non-OK status.
const EmptyABI = "[]"

// AbiSourceKind tags the shape of a user-supplied ABI source, resolved
// once at startup so the decode path never inspects JSON shapes.
type AbiSourceKind int

const (
	// AbiSourceNone means no user-supplied ABI; every address is
	// fetched from the explorer.
	AbiSourceNone AbiSourceKind = iota
	// AbiSourceUniform is a single definition list without a bound
	// address, applied to the queried address only.
	AbiSourceUniform
	// AbiSourcePerAddress is a list of {address, abi} pairs, each
	// applied to its own address.
	AbiSourcePerAddress
)

// AbiSource is the tagged variant holding a user-supplied ABI source.
type AbiSource struct {
	Kind       AbiSourceKind
	Uniform    string
	PerAddress map[string]string
}
