package beaconapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/netwatch/internal/infra/cache"
)

const overviewBody = `{
  "status": "OK",
  "data": {
    "network_info": {"network_name": "hoodi", "config_name": "hoodi", "genesis_time": 1742213400},
    "current_state": {"current_slot": 3200, "current_epoch": 100, "slots_per_epoch": 32, "seconds_per_slot": 12, "seconds_per_epoch": 384},
    "checkpoints": {"finalized_epoch": 98, "justified_epoch": 99},
    "forks": [
      {"name": "Electra", "epoch": 2048, "time": 1742999832, "active": true, "type": "consensus"},
      {"name": "Prague", "epoch": 2048, "time": 1742999832, "active": true, "type": "consensus"}
    ],
    "is_synced": true
  }
}`

var fastRetry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffMultiple: 2}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Overview(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/network/overview" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Write([]byte(overviewBody))
	})

	c := NewClient(Options{BaseURL: server.URL + "/api/v1/", Token: "token"})
	snapshot, err := c.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.CurrentState == nil || snapshot.CurrentState.CurrentEpoch != 100 {
		t.Errorf("unexpected current state %+v", snapshot.CurrentState)
	}
	if snapshot.Checkpoints == nil || snapshot.Checkpoints.FinalizedEpoch != 98 {
		t.Errorf("unexpected checkpoints %+v", snapshot.Checkpoints)
	}
	if len(snapshot.Forks) != 2 || snapshot.Forks[0].Active == nil || !*snapshot.Forks[0].Active {
		t.Errorf("unexpected forks %+v", snapshot.Forks)
	}
}

func TestClient_SplitsAndEpochs(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/network/splits":
			w.Write([]byte(`{"status":"OK","data":{"current_epoch":100,"splits":[{"fork_id":"0","head_slot":3200,"last_epoch_participation":[97.5,98.1],"is_canonical":true}]}}`))
		case "/epochs":
			if r.URL.Query().Get("limit") != "2" {
				t.Errorf("expected limit=2, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"status":"OK","data":{"epochs":[{"epoch":100,"proposed_blocks":31,"missed_blocks":1,"sync_participation":0.98},{"epoch":99,"proposed_blocks":32}]}}`))
		default:
			http.NotFound(w, r)
		}
	})

	c := NewClient(Options{BaseURL: server.URL})

	splits, err := c.Splits(context.Background())
	if err != nil {
		t.Fatalf("splits: %v", err)
	}
	if canonical := splits.Canonical(); canonical == nil || len(canonical.LastEpochParticipation) != 2 {
		t.Errorf("unexpected splits %+v", splits)
	}

	epochs, err := c.Epochs(context.Background(), 2)
	if err != nil {
		t.Fatalf("epochs: %v", err)
	}
	if len(epochs) != 2 || epochs[0].ProposedBlocks != 31 || epochs[0].MissedBlocks != 1 {
		t.Errorf("unexpected epochs %+v", epochs)
	}
}

func TestClient_DataUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{}`},
		{name: "status not ok", status: http.StatusOK, body: `{"status":"ERROR: rate limited","data":null}`},
		{name: "missing data", status: http.StatusOK, body: `{"status":"OK"}`},
		{name: "null data", status: http.StatusOK, body: `{"status":"OK","data":null}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewClient(Options{BaseURL: server.URL, Retry: fastRetry}).Overview(context.Background())
			if !errors.Is(err, ErrDataUnavailable) {
				t.Errorf("expected ErrDataUnavailable, got %v", err)
			}
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(Options{BaseURL: url, Timeout: time.Second, Retry: fastRetry}).Splits(context.Background())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestClient_CachesResponses(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(overviewBody))
	})

	c := NewClient(Options{
		BaseURL:  server.URL,
		Cache:    cache.New(4, nil),
		CacheTTL: time.Minute,
	})

	for i := 0; i < 3; i++ {
		snapshot, err := c.Overview(context.Background())
		if err != nil {
			t.Fatalf("overview: %v", err)
		}
		if snapshot.CurrentState.CurrentEpoch != 100 {
			t.Errorf("unexpected epoch %d", snapshot.CurrentState.CurrentEpoch)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected a single upstream request, got %d", got)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(overviewBody))
	})

	if _, err := NewClient(Options{BaseURL: server.URL, Retry: fastRetry}).Overview(context.Background()); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestClient_DoesNotRetryFinalErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`},
		{name: "empty envelope", status: http.StatusOK, body: `{"status":"OK"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewClient(Options{BaseURL: server.URL, Retry: fastRetry}).Overview(context.Background())
			var statusErr *StatusError
			if tt.status != http.StatusOK && (!errors.As(err, &statusErr) || statusErr.StatusCode != tt.status) {
				t.Errorf("expected StatusError %d, got %v", tt.status, err)
			}
			if got := hits.Load(); got != 1 {
				t.Errorf("expected a single attempt, got %d", got)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffMultiple: 2}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	for attempt, w := range want {
		if got := calculateBackoff(attempt, cfg); got != w {
			t.Errorf("attempt %d: expected %v, got %v", attempt, w, got)
		}
	}
}
