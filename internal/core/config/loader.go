package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/netwatch/internal/core/domain"
)

// EnvPrefix prefixes every environment override, e.g. NETWATCH_API_TOKEN.
const EnvPrefix = "NETWATCH"

// Load reads configuration from a YAML file. An empty path starts from the
// built-in Hoodi defaults. Environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.EpochWindow <= 0 {
		cfg.API.EpochWindow = 10
	}
	if cfg.Network.SecondsPerSlot == 0 {
		cfg.Network.SecondsPerSlot = 12
	}
	if cfg.Network.SlotsPerEpoch == 0 {
		cfg.Network.SlotsPerEpoch = 32
	}
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = 10 * time.Second
	}
	if cfg.Probe.HistorySize <= 0 {
		cfg.Probe.HistorySize = 30
	}
	if cfg.Poll.RefreshInterval == 0 {
		cfg.Poll.RefreshInterval = 5 * time.Minute
	}
	if cfg.Poll.ProbeInterval == 0 {
		cfg.Poll.ProbeInterval = 2 * time.Minute
	}
	if cfg.Poll.RecencyInterval == 0 {
		cfg.Poll.RecencyInterval = 30 * time.Second
	}
	if cfg.Cache.SizeMB <= 0 {
		cfg.Cache.SizeMB = 32
	}
	if cfg.Cache.TTL == 0 || cfg.Cache.TTL >= cfg.Poll.RefreshInterval {
		cfg.Cache.TTL = cfg.Poll.RefreshInterval / 2
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks the fields the service cannot start without.
func (c *AppConfig) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return ValidateEndpoints(c.Endpoints)
}

// ValidateEndpoints rejects duplicate IDs, unknown kinds and malformed URLs.
func ValidateEndpoints(endpoints []domain.Endpoint) error {
	seen := make(map[string]struct{}, len(endpoints))
	for i, ep := range endpoints {
		if ep.ID == "" {
			return fmt.Errorf("endpoints[%d]: id is required", i)
		}
		if _, dup := seen[ep.ID]; dup {
			return fmt.Errorf("endpoints[%d]: duplicate id %q", i, ep.ID)
		}
		seen[ep.ID] = struct{}{}

		switch ep.Kind {
		case domain.EndpointRPC, domain.EndpointCheckpoint:
		default:
			return fmt.Errorf("endpoints[%d]: unknown kind %q", i, ep.Kind)
		}
		if _, err := url.ParseRequestURI(ep.URL); err != nil {
			return fmt.Errorf("endpoints[%d]: invalid url: %w", i, err)
		}
	}
	return nil
}

// FallbackTimeline converts the static fork list into display rows ordered by epoch.
func (c *AppConfig) FallbackTimeline() []domain.DisplayFork {
	out := make([]domain.DisplayFork, 0, len(c.Forks))
	for _, f := range c.Forks {
		row := domain.DisplayFork{
			Name:      f.Name,
			Timestamp: f.Timestamp,
			Epoch:     f.Epoch,
			IsGenesis: f.IsGenesis || f.Epoch == 0,
		}
		if f.ExecutionVersion != "" {
			row.ExecutionVersion = domain.StringPtr(f.ExecutionVersion)
		}
		if f.ConsensusVersion != "" {
			row.ConsensusVersion = domain.StringPtr(f.ConsensusVersion)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Epoch < out[j].Epoch })
	return out
}
