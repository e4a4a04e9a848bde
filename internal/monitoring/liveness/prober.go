// Package liveness probes public RPC and checkpoint endpoints.
package liveness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/netwatch/internal/core/domain"
	"github.com/vietddude/netwatch/internal/infra/rpc/provider"
)

// DefaultTimeout bounds every probe attempt.
const DefaultTimeout = 10 * time.Second

// GenesisPath is read from checkpoint endpoints.
const GenesisPath = "/eth/v1/beacon/genesis"

var (
	ErrInvalidChainID = errors.New("invalid eth_chainId result")
	ErrUnknownKind    = errors.New("unknown endpoint kind")
)

// Transport is the network layer the prober depends on.
type Transport interface {
	Call(ctx context.Context, url, method string, params []any) (json.RawMessage, error)
	Get(ctx context.Context, url string) (int, error)
	Reach(ctx context.Context, url string) error
}

// Prober checks endpoints. It holds no state between calls.
type Prober struct {
	transport Transport
	timeout   time.Duration
	log       *slog.Logger
}

// NewProber creates a prober. A non-positive timeout selects DefaultTimeout.
func NewProber(transport Transport, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		transport: transport,
		timeout:   timeout,
		log:       slog.Default().With("component", "liveness"),
	}
}

// ProbeAll probes every endpoint concurrently and returns once all of them settled.
func (p *Prober) ProbeAll(ctx context.Context, endpoints []domain.Endpoint) map[string]domain.ProbeResult {
	results := make([]domain.ProbeResult, len(endpoints))

	var g errgroup.Group
	for i, ep := range endpoints {
		g.Go(func() error {
			results[i] = p.Probe(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]domain.ProbeResult, len(endpoints))
	for i, ep := range endpoints {
		out[ep.ID] = results[i]
	}
	return out
}

// Probe checks a single endpoint. A cross-origin failure switches to an opaque
// reachability check whose round trip becomes the reported latency.
func (p *Prober) Probe(ctx context.Context, ep domain.Endpoint) domain.ProbeResult {
	latency, err := p.attempt(ctx, func(ctx context.Context) error {
		switch ep.Kind {
		case domain.EndpointRPC:
			return p.probeRPC(ctx, ep.URL)
		case domain.EndpointCheckpoint:
			return p.probeCheckpoint(ctx, ep.URL)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownKind, ep.Kind)
		}
	})
	if err == nil {
		return result(domain.ProbeOnline, latency, nil)
	}

	if class, ok := provider.ClassOf(err); ok && class == provider.ClassCORS {
		p.log.Debug("Cross-origin restricted, using opaque check", "endpoint", ep.ID)

		latency, err = p.attempt(ctx, func(ctx context.Context) error {
			return p.transport.Reach(ctx, ep.URL)
		})
		res := result(domain.ProbeOnline, latency, err)
		if err != nil {
			res.Status = domain.ProbeOffline
		}
		res.Fallback = true
		return res
	}

	p.log.Debug("Endpoint offline", "endpoint", ep.ID, "error", err)
	return result(domain.ProbeOffline, latency, err)
}

// attempt runs fn under the probe deadline. On expiry it returns without waiting
// for fn; cancelling the context aborts the in-flight request.
func (p *Prober) attempt(ctx context.Context, fn func(context.Context) error) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return time.Since(start), err
	case <-ctx.Done():
		return time.Since(start), &provider.TransportError{
			Class: provider.ClassTimeout,
			Op:    "probe",
			Err:   ctx.Err(),
		}
	}
}

func (p *Prober) probeRPC(ctx context.Context, url string) error {
	raw, err := p.transport.Call(ctx, url, "eth_chainId", nil)
	if err != nil {
		return err
	}

	var chainID string
	if err := json.Unmarshal(raw, &chainID); err != nil || chainID == "" {
		return ErrInvalidChainID
	}
	if _, err := hexutil.DecodeBig(chainID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChainID, err)
	}
	return nil
}

func (p *Prober) probeCheckpoint(ctx context.Context, url string) error {
	status, err := p.transport.Get(ctx, strings.TrimRight(url, "/")+GenesisPath)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &provider.StatusError{StatusCode: status}
	}
	return nil
}

func result(status domain.ProbeStatus, latency time.Duration, err error) domain.ProbeResult {
	res := domain.ProbeResult{
		Status:    status,
		LatencyMs: latency.Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
