package config

import (
	"time"

	"github.com/vietddude/netwatch/internal/core/domain"
	redisclient "github.com/vietddude/netwatch/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"    envconfig:"SERVER"`
	API       APIConfig          `yaml:"api"       envconfig:"API"`
	Network   NetworkConfig      `yaml:"network"   ignored:"true"`
	Forks     []StaticFork       `yaml:"forks"     ignored:"true"`
	Wallet    WalletConfig       `yaml:"wallet"    ignored:"true"`
	Endpoints []domain.Endpoint  `yaml:"endpoints" ignored:"true"`
	Probe     ProbeConfig        `yaml:"probe"     envconfig:"PROBE"`
	Poll      PollConfig         `yaml:"poll"      envconfig:"POLL"`
	Cache     CacheConfig        `yaml:"cache"     envconfig:"CACHE"`
	Redis     redisclient.Config `yaml:"redis"     envconfig:"REDIS"`
	Logging   LoggingConfig      `yaml:"logging"   envconfig:"LOGGING"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"         envconfig:"PORT"`
	CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// APIConfig points at the explorer API that serves network data.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"     envconfig:"BASE_URL"`
	Token       string        `yaml:"token"        envconfig:"TOKEN"`
	Timeout     time.Duration `yaml:"timeout"      envconfig:"TIMEOUT"`
	RateLimit   float64       `yaml:"rate_limit"   envconfig:"RATE_LIMIT"` // requests per second, 0 = unlimited
	EpochWindow int           `yaml:"epoch_window" envconfig:"EPOCH_WINDOW"`
}

// NetworkConfig describes the network being watched.
type NetworkConfig struct {
	Name             string `yaml:"name"              json:"name"`
	ChainID          uint64 `yaml:"chain_id"          json:"chain_id"`
	NetworkID        uint64 `yaml:"network_id"        json:"network_id"`
	LaunchDate       string `yaml:"launch_date"       json:"launch_date"`
	GenesisTimestamp int64  `yaml:"genesis_timestamp" json:"genesis_timestamp"`
	SecondsPerSlot   uint64 `yaml:"seconds_per_slot"  json:"seconds_per_slot"`
	SlotsPerEpoch    uint64 `yaml:"slots_per_epoch"   json:"slots_per_epoch"`
	Consensus        string `yaml:"consensus"         json:"consensus"`
	LTS              string `yaml:"lts"               json:"lts"`
	EOL              string `yaml:"eol"               json:"eol"`
}

// StaticFork is a fork entry used when the explorer reports no fork list.
type StaticFork struct {
	Name             string `yaml:"name"`
	Timestamp        int64  `yaml:"timestamp"` // 0 = at genesis
	Epoch            uint64 `yaml:"epoch"`
	ExecutionVersion string `yaml:"el_version"`
	ConsensusVersion string `yaml:"cl_version"`
	IsGenesis        bool   `yaml:"is_genesis"`
}

// WalletConfig is the network descriptor handed to wallets.
type WalletConfig struct {
	ChainID           string         `yaml:"chain_id"            json:"chainId"`
	ChainName         string         `yaml:"chain_name"          json:"chainName"`
	NativeCurrency    NativeCurrency `yaml:"native_currency"     json:"nativeCurrency"`
	RPCURLs           []string       `yaml:"rpc_urls"            json:"rpcUrls"`
	BlockExplorerURLs []string       `yaml:"block_explorer_urls" json:"blockExplorerUrls"`
}

// NativeCurrency describes the network's gas token.
type NativeCurrency struct {
	Name     string `yaml:"name"     json:"name"`
	Symbol   string `yaml:"symbol"   json:"symbol"`
	Decimals int    `yaml:"decimals" json:"decimals"`
}

// ProbeConfig holds endpoint liveness probe settings.
type ProbeConfig struct {
	Timeout     time.Duration `yaml:"timeout"      envconfig:"TIMEOUT"`
	Origin      string        `yaml:"origin"       envconfig:"ORIGIN"` // empty disables cross-origin checks
	HistorySize int           `yaml:"history_size" envconfig:"HISTORY_SIZE"`
}

// PollConfig holds the orchestrator intervals.
type PollConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL"`
	ProbeInterval   time.Duration `yaml:"probe_interval"   envconfig:"PROBE_INTERVAL"`
	RecencyInterval time.Duration `yaml:"recency_interval" envconfig:"RECENCY_INTERVAL"`
}

// CacheConfig holds the explorer response cache settings.
type CacheConfig struct {
	SizeMB int           `yaml:"size_mb" envconfig:"SIZE_MB"`
	TTL    time.Duration `yaml:"ttl"     envconfig:"TTL"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"  envconfig:"LEVEL"`  // debug, info, warn, error
	Format string `yaml:"format" envconfig:"FORMAT"` // text (default), json
}
