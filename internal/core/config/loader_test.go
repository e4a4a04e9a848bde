package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/netwatch/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_REDIS_URL", "redis://localhost:6380/0")

	cfg, err := Load(writeConfig(t, `
redis:
  url: ${TEST_REDIS_URL}
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Redis.URL != "redis://localhost:6380/0" {
		t.Errorf("Expected URL redis://localhost:6380/0, got %s", cfg.Redis.URL)
	}
}

func TestLoad_BuiltInDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Network.ChainID != 560048 {
		t.Errorf("Expected Hoodi chain id, got %d", cfg.Network.ChainID)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Poll.RefreshInterval != 5*time.Minute || cfg.Poll.ProbeInterval != 2*time.Minute {
		t.Errorf("Unexpected poll intervals %+v", cfg.Poll)
	}
	if cfg.Probe.Timeout != 10*time.Second {
		t.Errorf("Expected 10s probe timeout, got %v", cfg.Probe.Timeout)
	}
	if cfg.Cache.TTL >= cfg.Poll.RefreshInterval {
		t.Errorf("Cache TTL %v must be shorter than refresh interval", cfg.Cache.TTL)
	}
	if len(cfg.Endpoints) == 0 {
		t.Error("Expected default endpoints")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
poll:
  refresh_interval: 1m
endpoints:
  - id: local
    kind: rpc
    url: http://localhost:8545
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Poll.RefreshInterval != time.Minute {
		t.Errorf("Expected 1m refresh, got %v", cfg.Poll.RefreshInterval)
	}
	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].ID != "local" {
		t.Errorf("Expected endpoint list to be replaced, got %+v", cfg.Endpoints)
	}
	// Untouched sections keep their built-in values.
	if cfg.Network.Name != "Hoodi Testnet" {
		t.Errorf("Expected default network name, got %q", cfg.Network.Name)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NETWATCH_API_TOKEN", "secret")
	t.Setenv("NETWATCH_SERVER_PORT", "7070")
	t.Setenv("NETWATCH_PROBE_TIMEOUT", "3s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Token != "secret" {
		t.Errorf("Expected token from env, got %q", cfg.API.Token)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Probe.Timeout != 3*time.Second {
		t.Errorf("Expected 3s, got %v", cfg.Probe.Timeout)
	}
}

func TestLoad_InvalidEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "duplicate id",
			yaml: `
endpoints:
  - {id: a, kind: rpc, url: "http://a"}
  - {id: a, kind: checkpoint, url: "http://b"}
`,
			wantErr: "duplicate id",
		},
		{
			name: "unknown kind",
			yaml: `
endpoints:
  - {id: a, kind: ws, url: "ws://a"}
`,
			wantErr: "unknown kind",
		},
		{
			name: "bad url",
			yaml: `
endpoints:
  - {id: a, kind: rpc, url: "not a url"}
`,
			wantErr: "invalid url",
		},
		{
			name: "unknown log format",
			yaml: `
logging:
  format: xml
`,
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFallbackTimeline(t *testing.T) {
	cfg := &AppConfig{Forks: []StaticFork{
		{Name: "Pectra (Prague/Electra)", Epoch: 2048, ExecutionVersion: "Prague", ConsensusVersion: "Electra"},
		{Name: "Merge / Shapella / Dencun", Epoch: 0, ExecutionVersion: "Cancun", ConsensusVersion: "Deneb"},
	}}

	timeline := cfg.FallbackTimeline()
	if len(timeline) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(timeline))
	}
	if !timeline[0].IsGenesis || timeline[0].Epoch != 0 {
		t.Errorf("Expected genesis first, got %+v", timeline[0])
	}
	if timeline[1].ExecutionVersion == nil || *timeline[1].ExecutionVersion != "Prague" {
		t.Errorf("Expected Prague, got %v", timeline[1].ExecutionVersion)
	}
	if timeline[1].Active != nil {
		t.Error("Static rows carry no active flag")
	}
}

func TestWatch_Reload(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  - {id: a, kind: rpc, url: "http://a"}
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *AppConfig, 1)
	go func() {
		_ = Watch(ctx, path, func(cfg *AppConfig) {
			// A reload can observe the file mid-rewrite.
			if len(cfg.Endpoints) == 0 || cfg.Endpoints[0].ID != "b" {
				return
			}
			select {
			case changed <- cfg:
			default:
			}
		})
	}()

	updated := []byte(`
endpoints:
  - {id: b, kind: checkpoint, url: "http://b"}
`)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case cfg := <-changed:
			want := []domain.Endpoint{{ID: "b", Kind: domain.EndpointCheckpoint, URL: "http://b"}}
			if len(cfg.Endpoints) != 1 || cfg.Endpoints[0] != want[0] {
				t.Errorf("Unexpected endpoints after reload: %+v", cfg.Endpoints)
			}
			return
		case <-tick.C:
			// The watcher may not be registered yet; keep writing until it fires.
			if err := os.WriteFile(path, updated, 0o600); err != nil {
				t.Fatalf("Failed to rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("Timed out waiting for reload")
		}
	}
}

func TestWatch_SurvivesAtomicSave(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  - {id: a, kind: rpc, url: "http://a"}
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan string, 16)
	go func() {
		_ = Watch(ctx, path, func(cfg *AppConfig) {
			if len(cfg.Endpoints) == 0 {
				return
			}
			select {
			case reloaded <- cfg.Endpoints[0].ID:
			default:
			}
		})
	}()

	// Each save is repeated until it is observed; registration is asynchronous.
	waitFor := func(id string, save func() error) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case got := <-reloaded:
				if got == id {
					return
				}
			case <-tick.C:
				if err := save(); err != nil {
					t.Fatalf("Failed to save config: %v", err)
				}
			case <-deadline:
				t.Fatalf("Timed out waiting for reload with endpoint %q", id)
			}
		}
	}

	waitFor("b", func() error {
		tmp := filepath.Join(filepath.Dir(path), ".config.yaml.tmp")
		content := []byte("endpoints:\n  - {id: b, kind: rpc, url: \"http://b\"}\n")
		if err := os.WriteFile(tmp, content, 0o600); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	})

	// A plain write after the replacement must still be picked up.
	waitFor("c", func() error {
		return os.WriteFile(path, []byte("endpoints:\n  - {id: c, kind: rpc, url: \"http://c\"}\n"), 0o600)
	})
}
