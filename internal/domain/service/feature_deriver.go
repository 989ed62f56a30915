package service

import "contract-gas-exporter/internal/domain/entity"

// FeatureDeriver turns a decoded call into the analytic feature-column
// names contributed by one transaction. The returned names must be
// resolvable against the transaction's property map at export time.
type FeatureDeriver interface {
	DeriveFeatures(decoded *entity.DecodedInput, tx *entity.Transaction) []string
}
