package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Etherscan EtherscanConfig `mapstructure:"etherscan"`
	Query     QueryConfig     `mapstructure:"query"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// EtherscanConfig represents explorer API configuration
type EtherscanConfig struct {
	MainnetURL     string        `mapstructure:"mainnet_url"`
	SepoliaURL     string        `mapstructure:"sepolia_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// QueryConfig selects the contract whose history is exported
type QueryConfig struct {
	Address string `mapstructure:"address"`
	Network string `mapstructure:"network"`
	// AbiJSON is an optional inline ABI source: either a definition
	// list applied to the queried address, or a list of
	// {address, abi} pairs.
	AbiJSON string `mapstructure:"abi_json"`
	// AbiFile points to a file holding the same shapes as AbiJSON.
	AbiFile string `mapstructure:"abi_file"`
	// Trace enables organization creation-timestamp enrichment.
	Trace bool `mapstructure:"trace"`
}

// ExportConfig represents CSV export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	ChunkSize int    `mapstructure:"chunk_size"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/contract-gas-exporter")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")

	// Explorer defaults
	viper.SetDefault("etherscan.mainnet_url", "https://api.etherscan.io/api")
	viper.SetDefault("etherscan.sepolia_url", "https://api-sepolia.etherscan.io/api")
	viper.SetDefault("etherscan.request_timeout", "30s")

	// Query defaults
	viper.SetDefault("query.network", "mainnet")
	viper.SetDefault("query.trace", false)

	// Export defaults
	viper.SetDefault("export.output_dir", ".")
	viper.SetDefault("export.chunk_size", 1000)

	// Bind env for the API key
	viper.BindEnv("etherscan.api_key", "ETHERSCAN_API_KEY")
	viper.BindEnv("query.address", "QUERY_ADDRESS")
}
