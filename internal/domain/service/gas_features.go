package service

import "contract-gas-exporter/internal/domain/entity"

// GasFeatureDeriver is the default feature deriver for gas-cost
// analysis: every decoded argument becomes a candidate analytics
// column named after its arg_ property key.
type GasFeatureDeriver struct{}

// NewGasFeatureDeriver creates the default feature deriver.
func NewGasFeatureDeriver() FeatureDeriver {
	return &GasFeatureDeriver{}
}

// DeriveFeatures returns one feature column per decoded argument, in
// argument order, de-duplicated for repeated names.
func (d *GasFeatureDeriver) DeriveFeatures(decoded *entity.DecodedInput, tx *entity.Transaction) []string {
	if decoded == nil {
		return nil
	}
	seen := make(map[string]bool, len(decoded.Names))
	features := make([]string, 0, len(decoded.Names))
	for _, name := range decoded.Names {
		column := entity.ArgPropertyKey(name)
		if seen[column] {
			continue
		}
		seen[column] = true
		features = append(features, column)
	}
	return features
}
