package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"price-lookup/internal/cache"
)

// DefaultPrimeTTL bounds how long a priming signal stays valid.
const DefaultPrimeTTL = 2 * time.Minute

// Preferences is the station-local persisted state.
type Preferences interface {
	LastDevice(ctx context.Context) (string, error)
	SaveDevice(ctx context.Context, id string) error
	// SetPrimed records that the device was usable just before leaving the scan loop
	SetPrimed(ctx context.Context, ttl time.Duration) error
	// ConsumePrimed reports and clears the priming signal
	ConsumePrimed(ctx context.Context) (bool, error)
}

// CachePreferences keeps preferences in a cache under station:<id>:*.
type CachePreferences struct {
	cache   cache.Cache
	station string
}

func NewCachePreferences(c cache.Cache, stationID string) *CachePreferences {
	if stationID == "" {
		stationID = "default"
	}
	return &CachePreferences{cache: c, station: stationID}
}

func (p *CachePreferences) key(name string) string {
	return fmt.Sprintf("station:%s:%s", p.station, name)
}

func (p *CachePreferences) LastDevice(ctx context.Context) (string, error) {
	val, err := p.cache.Get(ctx, p.key("device"))
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// SaveDevice remembers id with no expiry.
func (p *CachePreferences) SaveDevice(ctx context.Context, id string) error {
	return p.cache.Set(ctx, p.key("device"), []byte(id), 0)
}

func (p *CachePreferences) SetPrimed(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultPrimeTTL
	}
	return p.cache.Set(ctx, p.key("primed"), []byte("1"), ttl)
}

func (p *CachePreferences) ConsumePrimed(ctx context.Context) (bool, error) {
	_, err := p.cache.Take(ctx, p.key("primed"))
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Reset forgets everything stored for the station.
func (p *CachePreferences) Reset(ctx context.Context) error {
	return p.cache.DeleteByPattern(ctx, p.key("*"))
}
