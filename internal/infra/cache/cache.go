// Package cache keeps explorer responses in a local in-process tier backed by an
// optional shared remote tier.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coocood/freecache"
)

// ErrMiss is returned when neither tier holds a live value for the key.
var ErrMiss = errors.New("cache miss")

// Remote is a shared byte store such as Redis.
type Remote interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	Expires int64           `json:"t"`
	Value   json.RawMessage `json:"v"`
}

// Tiered combines a freecache local tier with an optional remote tier.
type Tiered struct {
	local  *freecache.Cache
	remote Remote
	log    *slog.Logger
}

// New creates a cache with sizeMB of local memory. remote may be nil.
func New(sizeMB int, remote Remote) *Tiered {
	return &Tiered{
		local:  freecache.NewCache(sizeMB * 1024 * 1024),
		remote: remote,
		log:    slog.Default().With("component", "cache"),
	}
}

// Set stores value under key in both tiers. Remote failures are logged, not returned.
func (c *Tiered) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	data, err := json.Marshal(entry{Expires: time.Now().Add(ttl).Unix(), Value: raw})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := c.local.Set([]byte(key), data, ttlSeconds(ttl)); err != nil {
		return fmt.Errorf("local cache set: %w", err)
	}
	if c.remote != nil {
		if err := c.remote.SetBytes(ctx, key, data, ttl); err != nil {
			c.log.Warn("Remote cache set failed", "key", key, "error", err)
		}
	}
	return nil
}

// Get decodes the cached value for key into out. A remote hit is copied into the
// local tier for its remaining lifetime.
func (c *Tiered) Get(ctx context.Context, key string, out any) error {
	if data, err := c.local.Get([]byte(key)); err == nil {
		return decode(data, out)
	}
	if c.remote == nil {
		return ErrMiss
	}

	data, err := c.remote.GetBytes(ctx, key)
	if err != nil {
		return ErrMiss
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("decode cache entry: %w", err)
	}
	remaining := time.Until(time.Unix(e.Expires, 0))
	if remaining <= 0 {
		return ErrMiss
	}
	_ = c.local.Set([]byte(key), data, ttlSeconds(remaining))

	return json.Unmarshal(e.Value, out)
}

func decode(data []byte, out any) error {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("decode cache entry: %w", err)
	}
	return json.Unmarshal(e.Value, out)
}

// freecache treats 0 as no expiry.
func ttlSeconds(ttl time.Duration) int {
	s := int(ttl / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
